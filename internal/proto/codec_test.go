package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrasumente233/kvkv/internal/resp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Value{
		NewHandshake(3),
		NewHandshake(Sentinel),
		NewResp(resp.BulkStrings("SET", "k", "v")),
		NewVote(true),
		NewVote(false),
		NewDecision(true),
		NewReplicate(map[string]string{"a": "1"}),
	}
	for _, v := range cases {
		data, err := Encode(v)
		require.NoError(t, err)

		decoded, n, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, v, decoded)
	}
}

func TestDecodeConcatenatedFrames(t *testing.T) {
	a, _ := Encode(NewHandshake(1))
	b, _ := Encode(NewVote(true))
	buf := append(append([]byte{}, a...), b...)

	v1, n1, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, NewHandshake(1), v1)

	v2, n2, err := Decode(buf[n1:])
	require.NoError(t, err)
	assert.Equal(t, NewVote(true), v2)
	assert.Equal(t, len(buf), n1+n2)
}

func TestDecodeEmptyBufferIsIncomplete(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeTruncatedFrameIsIncomplete(t *testing.T) {
	full, err := Encode(NewHandshake(5))
	require.NoError(t, err)
	for i := 0; i < len(full); i++ {
		_, _, err := Decode(full[:i])
		assert.ErrorIs(t, err, ErrIncomplete, "prefix %d should be incomplete", i)
	}
}
