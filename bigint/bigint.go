// Package bigint implements fixed-width unsigned integer arithmetic over an
// array of 64-bit words, least-significant word first.
//
// The width is fixed at construction time and every operation is performed
// modulo 2^width: overflow and underflow wrap silently, mirroring hardware
// register semantics rather than mathematical big-integer growth. Callers
// must choose a width large enough for their values; wrapped results are the
// documented contract, not an error.
//
// The API follows the math/big convention: methods write their result into
// the receiver and return it, so z.Add(x, y) computes x+y into z. Operands of
// one expression must share the same width.
package bigint

import (
	"errors"
	"math/bits"
)

const (
	wordBits     = 64
	halfWordBits = 32
	halfWordMask = 1<<halfWordBits - 1
)

// ErrSyntax is returned by SetString for input that is not a decimal number.
var ErrSyntax = errors.New("bigint: invalid decimal syntax")

// Int is a fixed-width unsigned integer. The zero value is not usable;
// construct with New or FromUint64.
type Int struct {
	words []uint64
}

// New returns a zero-valued Int of the given width in bits. Widths round up
// to a whole number of 64-bit words; widths below 64 become 64.
func New(width int) *Int {
	if width < wordBits {
		width = wordBits
	}
	return &Int{words: make([]uint64, (width+wordBits-1)/wordBits)}
}

// FromUint64 returns an Int of the given width holding v.
func FromUint64(width int, v uint64) *Int {
	z := New(width)
	z.words[0] = v
	return z
}

// Width returns the width in bits.
func (x *Int) Width() int { return len(x.words) * wordBits }

// Clone returns an independent copy of x.
func (x *Int) Clone() *Int {
	w := make([]uint64, len(x.words))
	copy(w, x.words)
	return &Int{words: w}
}

// SetZero sets z to 0.
func (z *Int) SetZero() *Int {
	clear(z.words)
	return z
}

// SetUint64 sets z to v.
func (z *Int) SetUint64(v uint64) *Int {
	z.SetZero()
	z.words[0] = v
	return z
}

// Set sets z to x.
func (z *Int) Set(x *Int) *Int {
	copy(z.words, x.words)
	return z
}

// IsZero reports whether x is 0.
func (x *Int) IsZero() bool {
	for _, w := range x.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Uint64 returns the least-significant 64 bits of x.
func (x *Int) Uint64() uint64 { return x.words[0] }

// IsUint64 reports whether x is representable as a uint64.
func (x *Int) IsUint64() bool {
	for _, w := range x.words[1:] {
		if w != 0 {
			return false
		}
	}
	return true
}

// Cmp compares x and y as unsigned values, from the most significant word
// down. It returns -1, 0 or +1.
func (x *Int) Cmp(y *Int) int {
	for i := len(x.words) - 1; i >= 0; i-- {
		switch {
		case x.words[i] < y.words[i]:
			return -1
		case x.words[i] > y.words[i]:
			return 1
		}
	}
	return 0
}

// BitLen returns the number of bits required to represent x; 0 if x is 0.
func (x *Int) BitLen() int {
	for i := len(x.words) - 1; i >= 0; i-- {
		if x.words[i] != 0 {
			return i*wordBits + bits.Len64(x.words[i])
		}
	}
	return 0
}

// Log2 returns the index of the highest set bit of x, and 0 if x is 0 or 1.
func (x *Int) Log2() int {
	if l := x.BitLen(); l > 0 {
		return l - 1
	}
	return 0
}

// Bit returns bit i of x.
func (x *Int) Bit(i int) uint {
	return uint(x.words[i/wordBits]>>(i%wordBits)) & 1
}

// Add sets z = x + y mod 2^width. z may alias x or y.
func (z *Int) Add(x, y *Int) *Int {
	var carry uint64
	for i := range z.words {
		z.words[i], carry = bits.Add64(x.words[i], y.words[i], carry)
	}
	return z
}

// AddUint64 sets z = x + v mod 2^width. z may alias x.
func (z *Int) AddUint64(x *Int, v uint64) *Int {
	carry := v
	for i := range z.words {
		z.words[i], carry = bits.Add64(x.words[i], carry, 0)
	}
	return z
}

// Sub sets z = x - y mod 2^width, wrapping on underflow. z may alias x or y.
func (z *Int) Sub(x, y *Int) *Int {
	var borrow uint64
	for i := range z.words {
		z.words[i], borrow = bits.Sub64(x.words[i], y.words[i], borrow)
	}
	return z
}

// Lsh sets z = x << s mod 2^width. z may alias x.
func (z *Int) Lsh(x *Int, s uint) *Int {
	n := len(z.words)
	wordShift := int(s / wordBits)
	bitShift := s % wordBits

	if wordShift >= n {
		return z.SetZero()
	}

	if bitShift == 0 {
		for i := n - 1; i >= wordShift; i-- {
			z.words[i] = x.words[i-wordShift]
		}
	} else {
		for i := n - 1; i >= wordShift; i-- {
			w := x.words[i-wordShift] << bitShift
			if i-wordShift > 0 {
				w |= x.words[i-wordShift-1] >> (wordBits - bitShift)
			}
			z.words[i] = w
		}
	}
	for i := 0; i < wordShift; i++ {
		z.words[i] = 0
	}
	return z
}

// Rsh sets z = x >> s. z may alias x.
func (z *Int) Rsh(x *Int, s uint) *Int {
	n := len(z.words)
	wordShift := int(s / wordBits)
	bitShift := s % wordBits

	if wordShift >= n {
		return z.SetZero()
	}

	if bitShift == 0 {
		for i := 0; i < n-wordShift; i++ {
			z.words[i] = x.words[i+wordShift]
		}
	} else {
		for i := 0; i < n-wordShift; i++ {
			w := x.words[i+wordShift] >> bitShift
			if i+wordShift < n-1 {
				w |= x.words[i+wordShift+1] << (wordBits - bitShift)
			}
			z.words[i] = w
		}
	}
	for i := n - wordShift; i < n; i++ {
		z.words[i] = 0
	}
	return z
}

// MulWord sets z = x * v mod 2^width for a half-word multiplier (v must fit
// in 32 bits). Schoolbook multiply-accumulate over 32-bit digits, O(width).
// z may alias x.
func (z *Int) MulWord(x *Int, v uint32) *Int {
	var carry uint64
	for i := range z.words {
		w := x.words[i]
		lo := (w&halfWordMask)*uint64(v) + carry
		hi := (w>>halfWordBits)*uint64(v) + (lo >> halfWordBits)
		z.words[i] = (lo & halfWordMask) | (hi << halfWordBits)
		carry = hi >> halfWordBits
	}
	return z
}

// Mul sets z = x * y mod 2^width by shift-and-add: for each set bit i of x it
// accumulates y << i, stopping once the shifted operand has no bits left
// inside the width. z may alias x or y.
func (z *Int) Mul(x, y *Int) *Int {
	if x.IsZero() || y.IsZero() {
		return z.SetZero()
	}
	if y.BitLen() == 1 {
		// y == 1
		return z.Set(x)
	}

	width := len(z.words) * wordBits
	part := y.Clone()
	acc := make([]uint64, len(z.words))

	for i := 0; i < width; i++ {
		if part.IsZero() {
			break
		}
		if x.Bit(i) == 1 {
			var carry uint64
			for j := range acc {
				acc[j], carry = bits.Add64(acc[j], part.words[j], carry)
			}
		}
		part.Lsh(part, 1)
	}

	copy(z.words, acc)
	return z
}

// DivMod computes x / y and x % y. Either quo or rem may be nil when only one
// result is needed; when both are non-nil they must not alias each other.
// Division by zero panics.
//
// Four paths, in order of preference: equal operands, left < right, a
// half-word divisor (schoolbook long division over 32-bit digits), and the
// general case (restoring binary division on bit-length differences, bounded
// by O(bitlength) iterations).
func DivMod(x, y, quo, rem *Int) {
	if y.IsZero() {
		panic("bigint: division by zero")
	}

	switch x.Cmp(y) {
	case -1:
		if quo != nil {
			quo.SetZero()
		}
		if rem != nil {
			rem.Set(x)
		}
		return
	case 0:
		if quo != nil {
			quo.SetUint64(1)
		}
		if rem != nil {
			rem.SetZero()
		}
		return
	}

	// Past this point x > y.

	if y.words[0] <= halfWordMask && y.IsUint64() {
		r := divModWord(x, uint32(y.words[0]), quo)
		if rem != nil {
			rem.SetUint64(uint64(r))
		}
		return
	}

	yLog := y.Log2()
	if !isPowerOfTwo(y) {
		// Use the ceiling so that y << logDiff never exceeds the remainder.
		yLog++
	}

	r := x.Clone()
	part := New(x.Width())
	if quo != nil {
		quo.SetZero()
	}

	for r.Cmp(y) >= 0 {
		logDiff := r.Log2() - yLog
		if logDiff > 0 {
			part.Lsh(y, uint(logDiff))
			r.Sub(r, part)
			if quo != nil {
				part.SetZero()
				part.words[logDiff/wordBits] = 1 << (logDiff % wordBits)
				quo.Add(quo, part)
			}
		} else {
			r.Sub(r, y)
			if quo != nil {
				quo.AddUint64(quo, 1)
			}
		}
	}

	if rem != nil {
		rem.Set(r)
	}
}

func isPowerOfTwo(x *Int) bool {
	seen := false
	for _, w := range x.words {
		if w == 0 {
			continue
		}
		if seen || w&(w-1) != 0 {
			return false
		}
		seen = true
	}
	return seen
}

// divModWord divides x by a half-word divisor using schoolbook long division
// over 32-bit digits, high to low, and returns the remainder. quo may be nil
// or alias x.
func divModWord(x *Int, v uint32, quo *Int) uint32 {
	var carry uint64
	for i := len(x.words)*2 - 1; i >= 0; i-- {
		i2 := i / 2
		carry <<= halfWordBits
		if i&1 == 1 {
			carry |= x.words[i2] >> halfWordBits
			if quo != nil {
				quo.words[i2] = (quo.words[i2] & halfWordMask) | (carry/uint64(v))<<halfWordBits
			}
		} else {
			carry |= x.words[i2] & halfWordMask
			if quo != nil {
				quo.words[i2] = (quo.words[i2] &^ uint64(halfWordMask)) | carry/uint64(v)
			}
		}
		carry %= uint64(v)
	}
	return uint32(carry)
}

// Div sets z = x / y. z may alias x.
func (z *Int) Div(x, y *Int) *Int {
	DivMod(x, y, z, nil)
	return z
}

// Mod sets z = x % y. z may alias x.
func (z *Int) Mod(x, y *Int) *Int {
	DivMod(x, y, nil, z)
	return z
}

// Sqrt sets z = floor(sqrt(x)) by binary search. The squaring is carried out
// at double width so the search is exact for any x.
func (z *Int) Sqrt(x *Int) *Int {
	if x.BitLen() <= 1 {
		// sqrt(0) == 0, sqrt(1) == 1
		return z.Set(x)
	}

	wide := func(v *Int) *Int {
		out := New(v.Width() * 2)
		copy(out.words, v.words)
		return out
	}

	toTest := wide(x)
	start := New(toTest.Width()).SetUint64(1)
	end := New(toTest.Width()).Rsh(toTest, 1)
	ans := New(toTest.Width())
	mid := New(toTest.Width())
	sqr := New(toTest.Width())
	one := New(toTest.Width()).SetUint64(1)

	for start.Cmp(end) <= 0 {
		mid.Add(start, end)
		mid.Rsh(mid, 1)

		sqr.Mul(mid, mid)
		switch sqr.Cmp(toTest) {
		case 0:
			copy(z.words, mid.words)
			return z
		case -1:
			start.AddUint64(mid, 1)
			ans.Set(mid)
		case 1:
			end.Sub(mid, one)
		}
	}

	copy(z.words, ans.words)
	return z
}
