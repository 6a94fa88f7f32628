package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapStoreGetPutDel(t *testing.T) {
	s := NewMapStore()

	_, ok := s.Get("Changsha")
	assert.False(t, ok)

	s.Put("Changsha", "Rainy")
	v, ok := s.Get("Changsha")
	assert.True(t, ok)
	assert.Equal(t, "Rainy", v)

	s.Put("Changsha", "Sunny")
	v, ok = s.Get("Changsha")
	assert.True(t, ok)
	assert.Equal(t, "Sunny", v)

	assert.True(t, s.Del("Changsha"))
	_, ok = s.Get("Changsha")
	assert.False(t, ok)

	assert.False(t, s.Del("Changsha"))
}
