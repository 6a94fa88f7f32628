package resp

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripCases() []Value {
	return []Value{
		NewSimpleString("OK"),
		NewError("Invalid Command"),
		NewInteger(42),
		NewInteger(-7),
		NewBulkString("Cloud Computing"),
		NewBulkString(""),
		NewArray(),
		BulkStrings("GET", "CS"),
		BulkStrings("SET", "CS", "Cloud Computing"),
		NewArray(BulkStrings("DEL", "a"), NewInteger(1)),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range roundTripCases() {
		encoded := Encode(v)
		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), n)
		assert.Equal(t, v, decoded)
	}
}

func TestPartialReadResilience(t *testing.T) {
	for _, v := range roundTripCases() {
		encoded := Encode(v)
		for i := 0; i < len(encoded); i++ {
			_, _, err := Decode(encoded[:i])
			assert.ErrorIs(t, err, ErrIncomplete, "prefix of length %d should be incomplete for %+v", i, v)
		}
		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), n)
		assert.Equal(t, v, decoded)
	}
}

func TestDecodeUnknownLeadingByteIsIncomplete(t *testing.T) {
	_, _, err := Decode([]byte("?garbage\r\n"))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeNegativeBulkLengthIsFraming(t *testing.T) {
	_, _, err := Decode([]byte("$-1\r\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncomplete)
}

func TestDecodeDoesNotConsumeOnIncomplete(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nGET")
	_, n, err := Decode(buf)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, 0, n)
}

func TestFrameReaderAccumulatesPartialChunks(t *testing.T) {
	full := Encode(BulkStrings("SET", "k", "v"))
	pr, pw := io.Pipe()
	go func() {
		for _, b := range full {
			pw.Write([]byte{b})
		}
		pw.Close()
	}()

	fr := NewFrameReader(pr)
	v, err := fr.ReadValue()
	require.NoError(t, err)
	assert.Equal(t, BulkStrings("SET", "k", "v"), v)
}
