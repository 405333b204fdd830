package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const MaxPageSize = 100

type Params struct {
	Page     int
	PageSize int
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

// FromQuery reads ?page= and ?page_size=, clamping bad values.
func FromQuery(c *gin.Context, defaultSize int) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Params{Page: page, PageSize: size}
}
