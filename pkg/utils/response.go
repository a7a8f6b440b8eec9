package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	var errMsg interface{}
	if err != nil {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   errMsg,
	})
}

// ParsePagination turns limit/page query values into a limit/offset pair.
// Defaults to 50 per page, capped at 500, first page on bad input.
func ParsePagination(limitStr, pageStr string) (limit, offset int64) {
	limit = 50
	if v, err := strconv.ParseInt(limitStr, 10, 64); err == nil && v > 0 {
		limit = v
	}
	if limit > 500 {
		limit = 500
	}
	page := int64(1)
	if v, err := strconv.ParseInt(pageStr, 10, 64); err == nil && v >= 1 {
		page = v
	}
	return limit, limit * (page - 1)
}

// CalculateGrowth returns the percentage change between two period totals.
func CalculateGrowth(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func Ptr[T any](v T) *T {
	return &v
}
