package handler

import (
	"fmt"
	"strconv"

	"inventory-automation/app/domain"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

func paramID(c *fiber.Ctx, name string) (int64, error) {
	idStr := c.Params(name)
	if idStr == "" {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrBadRequest, name)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrBadRequest, name, idStr)
	}

	return id, nil
}

func queryLimit(c *fiber.Ctx) (int64, error) {
	limit := c.QueryInt("limit", defaultTopLimit)
	if limit <= 0 || limit > maxTopLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrBadRequest, maxTopLimit)
	}
	return int64(limit), nil
}
