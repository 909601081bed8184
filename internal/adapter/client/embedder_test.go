package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunk(texts, 2))
	assert.Equal(t, [][]string{texts}, chunk(texts, 100))
	assert.Empty(t, chunk(nil, 3))
}
