package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps a list with offset pagination metadata. Only the
// country listing paginates; city and venue lists are small enough to
// return whole.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is offset-based paging state.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders emits RFC 8288 Link headers (first/prev/next/last) built
// from the current request path.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel=%q`, base, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	last := p.Total - p.Limit
	if last < 0 {
		last = 0
	}
	links = append(links, link(last, "last"))

	c.Set("Link", strings.Join(links, ", "))
}
