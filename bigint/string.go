package bigint

// String renders x in decimal by repeated division by 10.
func (x *Int) String() string {
	if x.IsZero() {
		return "0"
	}

	// One decimal digit per ~3.32 bits; round up generously.
	buf := make([]byte, 0, x.BitLen()/3+2)
	work := x.Clone()
	for !work.IsZero() {
		d := divModWord(work, 10, work)
		buf = append(buf, byte('0'+d))
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// SetString sets z to the non-negative decimal value of s. Values wider than
// z wrap mod 2^width like every other operation. It returns ErrSyntax for an
// empty string or any non-digit character.
func (z *Int) SetString(s string) (*Int, error) {
	if len(s) == 0 {
		return nil, ErrSyntax
	}

	z.SetZero()
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, ErrSyntax
		}
		z.MulWord(z, 10)
		z.AddUint64(z, uint64(c-'0'))
	}
	return z, nil
}
