package handler

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"

	"github.com/gofiber/fiber/v2"
)

type VelocityHandler struct {
	velocityUsecase domain.SalesVelocityUsecase
}

func NewVelocityHandler(velocityUsecase domain.SalesVelocityUsecase) *VelocityHandler {
	return &VelocityHandler{
		velocityUsecase: velocityUsecase,
	}
}

func (h *VelocityHandler) GetByProductID(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[velocityHandler] GetByProductID", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	detail, err := h.velocityUsecase.GetVelocity(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[velocityHandler] GetByProductID", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(detail))
}

func (h *VelocityHandler) Recalculate(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[velocityHandler] Recalculate", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	velocity, err := h.velocityUsecase.UpdateVelocity(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[velocityHandler] Recalculate", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(velocity))
}

func (h *VelocityHandler) GetTop(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		slog.ErrorContext(c.Context(), "[velocityHandler] GetTop", "queryLimit", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	velocities, err := h.velocityUsecase.GetTopVelocities(c.Context(), limit)
	if err != nil {
		slog.ErrorContext(c.Context(), "[velocityHandler] GetTop", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(velocities))
}
