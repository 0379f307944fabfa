package snapshot

import (
	"bytes"
	"encoding/binary"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm6502q/Eratosthenes/testutil"
)

var samplePrimes = testutil.TrialDivision(10000)

func TestRoundTrip(t *testing.T) {
	for _, c := range []Compression{None, LZ4, ZSTD} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, samplePrimes, c))

		got, err := Read(&buf)
		require.NoError(t, err)
		require.Equal(t, samplePrimes, got, "compression %d", c)
	}
}

func TestRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, ZSTD))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompressionShrinksPayload(t *testing.T) {
	var raw, packed bytes.Buffer
	require.NoError(t, Write(&raw, samplePrimes, None))
	require.NoError(t, Write(&packed, samplePrimes, ZSTD))
	assert.Less(t, packed.Len(), raw.Len())
}

func TestLargeGaps(t *testing.T) {
	// Deltas spanning the full uvarint width.
	primes := []uint64{2, 3, 1 << 40, 1<<40 + 1, 1<<63 - 25, ^uint64(0) - 58}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, primes, LZ4))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, primes, got)
}

func TestRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePrimes, None))

	data := buf.Bytes()
	data[0] = 'X'

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePrimes, None))

	data := buf.Bytes()
	data[4] = 0xFF

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrVersion)
}

func TestDetectsPayloadCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePrimes, None))

	data := buf.Bytes()
	data[len(data)-1] ^= 0x55

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrChecksum)
}

func forgeHeader(c Compression, count, uncompressedSize, compressedSize uint64) []byte {
	hdr := make([]byte, headerSize)
	copy(hdr, magic[:])
	binary.LittleEndian.PutUint16(hdr[4:], formatVersion)
	hdr[6] = byte(c)
	binary.LittleEndian.PutUint64(hdr[8:], count)
	binary.LittleEndian.PutUint64(hdr[16:], uncompressedSize)
	binary.LittleEndian.PutUint64(hdr[24:], compressedSize)
	return hdr
}

func TestRejectsInconsistentSizes(t *testing.T) {
	tests := []struct {
		name         string
		count        uint64
		uncompressed uint64
		compressed   uint64
	}{
		{"count exceeds payload bytes", 100, 10, 0},
		{"payload beyond max varint width", 2, 100, 0},
		{"empty list with payload", 0, 8, 0},
		{"compressed not smaller than raw", 10, 20, 20},
		{"implausible compression ratio", 1 << 18, 1 << 20, 4},
	}

	for _, tt := range tests {
		hdr := forgeHeader(ZSTD, tt.count, tt.uncompressed, tt.compressed)
		_, err := Read(bytes.NewReader(hdr))
		assert.ErrorIs(t, err, ErrCorrupt, tt.name)
	}
}

func TestOversizedSizeClaimFailsWithoutAllocating(t *testing.T) {
	// A header may claim terabytes of payload; the reader must fail on the
	// short stream instead of allocating the claimed size up front.
	hdr := forgeHeader(None, 1<<41, 1<<42, 0)

	_, err := Read(bytes.NewReader(hdr))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePrimes, ZSTD))

	data := buf.Bytes()
	_, err := Read(bytes.NewReader(data[:len(data)/2]))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primes.snap")

	require.NoError(t, Save(path, samplePrimes, ZSTD))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, samplePrimes, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.snap"))
	assert.Error(t, err)
}
