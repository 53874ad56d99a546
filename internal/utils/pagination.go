package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/constants"
)

// PaginationParams is a validated page request. Limit <= 0 means unpaged.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// GetPaginationParams reads ?page and ?limit. Out-of-range values fall back
// to the first page and the default page size.
func GetPaginationParams(c *gin.Context) PaginationParams {
	return NewPaginationParams(c.Query("page"), c.Query("limit"))
}

func NewPaginationParams(pageQuery, limitQuery string) PaginationParams {
	page, err := strconv.Atoi(pageQuery)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitQuery)
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	return PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Response describes the page p within total rows.
func (p PaginationParams) Response(total int64) PaginationResponse {
	resp := PaginationResponse{Page: p.Page, Limit: p.Limit, Total: total}
	if p.Limit > 0 {
		resp.TotalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return resp
}
