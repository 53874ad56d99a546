package utils

import (
	"testing"

	"github.com/spge/groundcheck/internal/constants"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams(t *testing.T) {
	p := NewPaginationParams("3", "10")
	assert.Equal(t, PaginationParams{Page: 3, Limit: 10, Offset: 20}, p)

	p = NewPaginationParams("", "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, constants.DefaultPageSize, p.Limit)

	p = NewPaginationParams("-2", "5000")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, constants.DefaultPageSize, p.Limit)
	assert.Zero(t, p.Offset)
}

func TestPaginationParams_Response(t *testing.T) {
	p := NewPaginationParams("2", "20")
	assert.Equal(t, PaginationResponse{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, p.Response(41))
	assert.Equal(t, 0, p.Response(0).TotalPages)
}
