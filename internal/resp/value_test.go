package resp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWrite(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"set", BulkStrings("SET", "k", "v"), true},
		{"del", BulkStrings("DEL", "k"), true},
		{"get", BulkStrings("GET", "k"), false},
		{"lowercase set", BulkStrings("set", "k", "v"), false},
		{"non-array", NewSimpleString("PING"), false},
		{"empty array", NewArray(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsWrite(c.v))
		})
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	v := NewArray(NewBulkString("hello"), NewInteger(3), NewSimpleString("OK"))
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, v, decoded)
}
