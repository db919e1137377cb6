// Package pagination carries the page/limit query contract used by
// the list endpoints, currently the analysis report archive.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// DefaultLimit caps a page when the client sends no limit. Archive
// rows carry full report JSON, so pages stay small.
const DefaultLimit = 10

// MaxLimit is the hard per-page ceiling.
const MaxLimit = 50

// Params are the sanitized paging inputs of one request.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// GetParams reads page and limit from the query string and clamps
// them into range.
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Meta describes where a page sits in the full result set. Field
// names are camelCase like the rest of the wire format.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Response wraps one page of rows with its position metadata.
type Response struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// NewResponse builds the paged envelope for one page of rows.
func NewResponse(data interface{}, params *Params, total int64) *Response {
	pages := int(total) / params.Limit
	if int(total)%params.Limit != 0 {
		pages++
	}

	return &Response{
		Data: data,
		Meta: Meta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: pages,
			HasNext:    params.Page < pages,
			HasPrev:    params.Page > 1,
		},
	}
}
