// Package snapshot persists prime lists. Primes are delta-encoded as uvarint
// gaps, optionally block-compressed with LZ4 or ZSTD, and guarded by a CRC32
// checksum, so a list can be sieved once and reloaded cheaply.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload encoding.
type Compression uint8

const (
	// None stores the delta payload as is.
	None Compression = 0
	// LZ4 block-compresses the payload, fast with a modest ratio.
	LZ4 Compression = 1
	// ZSTD block-compresses the payload, slower with a better ratio.
	ZSTD Compression = 2
)

var (
	// ErrBadMagic marks a stream that is not a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrVersion marks a snapshot written by an unknown format version.
	ErrVersion = errors.New("snapshot: unsupported version")
	// ErrChecksum marks a payload that fails CRC verification.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrCorrupt marks a structurally invalid snapshot.
	ErrCorrupt = errors.New("snapshot: corrupt payload")
)

var magic = [4]byte{'E', 'R', 'S', 'N'}

const formatVersion = uint16(1)

// Header layout, little-endian:
//
//	magic            [4]byte
//	version          uint16
//	compression      uint8
//	reserved         uint8
//	count            uint64  primes in the payload
//	uncompressedSize uint64
//	compressedSize   uint64  0 means the payload is stored raw
//	checksum         uint32  CRC32 (IEEE) of the uncompressed payload
const headerSize = 4 + 2 + 1 + 1 + 8 + 8 + 8 + 4

// maxCompressRatio bounds how far a stored payload may claim to expand.
// Delta payloads compress a few times over at best, so a thousandfold
// claim is corruption, not data.
const maxCompressRatio = 1 << 10

var crcTable = crc32.MakeTable(crc32.IEEE)

// Write encodes primes to w. The list must be in increasing order, as
// produced by the sieves.
func Write(w io.Writer, primes []uint64, c Compression) error {
	payload := encodeDeltas(primes)

	stored := payload
	compressedSize := uint64(0)
	if c != None && len(payload) > 0 {
		compressed, err := compress(payload, c)
		if err != nil {
			return err
		}
		// Keep the raw payload when compression does not pay for itself.
		if compressed != nil && len(compressed) < len(payload) {
			stored = compressed
			compressedSize = uint64(len(compressed))
		}
	}

	hdr := make([]byte, headerSize)
	copy(hdr, magic[:])
	binary.LittleEndian.PutUint16(hdr[4:], formatVersion)
	hdr[6] = byte(c)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(primes)))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(payload)))
	binary.LittleEndian.PutUint64(hdr[24:], compressedSize)
	binary.LittleEndian.PutUint32(hdr[32:], crc32.Checksum(payload, crcTable))

	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("snapshot: write payload: %w", err)
	}
	return nil
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) ([]uint64, error) {
	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if [4]byte(hdr[:4]) != magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[4:]); v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}

	c := Compression(hdr[6])
	count := binary.LittleEndian.Uint64(hdr[8:])
	uncompressedSize := binary.LittleEndian.Uint64(hdr[16:])
	compressedSize := binary.LittleEndian.Uint64(hdr[24:])
	sum := binary.LittleEndian.Uint32(hdr[32:])

	// The size fields drive allocations below, so they are checked against
	// each other first: every gap takes between 1 and MaxVarintLen64 bytes,
	// and the writer stores a compressed payload only when it is smaller
	// than the raw one.
	if count > uncompressedSize || uncompressedSize > count*uint64(binary.MaxVarintLen64) {
		return nil, ErrCorrupt
	}
	if compressedSize != 0 && compressedSize >= uncompressedSize {
		return nil, ErrCorrupt
	}
	if compressedSize != 0 && uncompressedSize/maxCompressRatio > compressedSize {
		return nil, ErrCorrupt
	}

	storedSize := uncompressedSize
	if compressedSize != 0 {
		storedSize = compressedSize
	}

	// The claimed size is never trusted for allocation: the limited ReadAll
	// grows with the bytes the stream actually delivers, so a short stream
	// behind an oversized header fails cheaply.
	stored, err := io.ReadAll(io.LimitReader(r, int64(storedSize)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}
	if uint64(len(stored)) != storedSize {
		return nil, fmt.Errorf("snapshot: read payload: %w", io.ErrUnexpectedEOF)
	}

	payload := stored
	if compressedSize != 0 {
		var err error
		payload, err = decompress(stored, uncompressedSize, c)
		if err != nil {
			return nil, err
		}
	}

	if crc32.Checksum(payload, crcTable) != sum {
		return nil, ErrChecksum
	}

	return decodeDeltas(payload, count)
}

// Save writes a snapshot to path via a temp file and rename, so readers never
// observe a partial snapshot.
func Save(path string, primes []uint64, c Compression) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", tmp, err)
	}

	if err := Write(f, primes, c); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("snapshot: sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot: close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot: rename %s: %w", tmp, err)
	}
	return nil
}

// Load reads a snapshot from path.
func Load(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// encodeDeltas encodes the first prime absolutely and every later one as the
// uvarint gap to its predecessor. Prime gaps are tiny, so most entries take a
// single byte before compression.
func encodeDeltas(primes []uint64) []byte {
	buf := make([]byte, 0, len(primes)+16)
	var tmp [binary.MaxVarintLen64]byte
	prev := uint64(0)
	for _, p := range primes {
		n := binary.PutUvarint(tmp[:], p-prev)
		buf = append(buf, tmp[:n]...)
		prev = p
	}
	return buf
}

func decodeDeltas(payload []byte, count uint64) ([]uint64, error) {
	// Every gap takes at least one byte, so count bounds the reservation by
	// the payload the stream actually carried.
	if count > uint64(len(payload)) {
		return nil, ErrCorrupt
	}
	primes := make([]uint64, 0, count)
	prev := uint64(0)
	for i := uint64(0); i < count; i++ {
		gap, n := binary.Uvarint(payload)
		if n <= 0 {
			return nil, ErrCorrupt
		}
		prev += gap
		primes = append(primes, prev)
		payload = payload[n:]
	}
	if len(payload) != 0 {
		return nil, ErrCorrupt
	}
	return primes, nil
}

func compress(payload []byte, c Compression) ([]byte, error) {
	switch c {
	case LZ4:
		bound := lz4.CompressBlockBound(len(payload))
		dst := make([]byte, bound)
		n, err := lz4.CompressBlock(payload, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		if n == 0 {
			// Incompressible
			return nil, nil
		}
		return dst[:n], nil

	case ZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(payload, nil), nil

	default:
		return nil, fmt.Errorf("snapshot: unknown compression %d", c)
	}
}

func decompress(stored []byte, uncompressedSize uint64, c Compression) ([]byte, error) {
	switch c {
	case LZ4:
		dst := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, fmt.Errorf("snapshot: lz4 decompress: %w", err)
		}
		if uint64(n) != uncompressedSize {
			return nil, ErrCorrupt
		}
		return dst, nil

	case ZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd decoder: %w", err)
		}
		defer dec.Close()

		payload, err := dec.DecodeAll(stored, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd decompress: %w", err)
		}
		if uint64(len(payload)) != uncompressedSize {
			return nil, ErrCorrupt
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("snapshot: unknown compression %d", c)
	}
}
