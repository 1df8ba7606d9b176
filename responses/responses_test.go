package responses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchPages(t *testing.T) {
	s := &Search{Page: 1, Limit: 20, Total: 41}
	assert.Equal(t, 3, s.Pages())
	assert.True(t, s.HasNext())

	s.Page = 3
	assert.False(t, s.HasNext())

	assert.Equal(t, 0, (&Search{}).Pages())
}

func TestError(t *testing.T) {
	err := NewErrorf(400, 1, "bad %s", "query")
	assert.Equal(t, `status:400, code:1, message:"bad query"`, err.Error())
}
