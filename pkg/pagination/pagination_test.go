package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders", nil)
	p := FromRequest(r)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_Explicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders?page=3&per_page=50", nil)
	p := FromRequest(r)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_OutOfRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/orders?page=-1&per_page=500", nil)
	p := FromRequest(r)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestNewResult(t *testing.T) {
	res := NewResult([]string{"a", "b"}, 42, Params{Page: 2, PerPage: 20})
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)

	empty := NewResult[string](nil, 0, Params{Page: 1, PerPage: 20})
	assert.NotNil(t, empty.Data)
	assert.False(t, empty.HasNext)
}
