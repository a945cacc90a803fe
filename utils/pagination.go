package utils

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Paging is resolved from ?page= and ?page_size= (or ?limit=)
type Paging struct {
	Page   int
	Limit  int
	Offset int
}

// ResolvePaging clamps the query values to [1, maxLimit]
func ResolvePaging(c *fiber.Ctx, defaultLimit, maxLimit int) Paging {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limitRaw := c.Query("page_size")
	if limitRaw == "" {
		limitRaw = c.Query("limit")
	}
	limit, err := strconv.Atoi(limitRaw)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Paging{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func (p Paging) Meta(total int64) fiber.Map {
	return fiber.Map{
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
		"total_pages": int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
