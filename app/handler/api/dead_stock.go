package handler

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"
	"inventory-automation/pkg/ctxutil"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type DeadStockHandler struct {
	deadStockUsecase domain.DeadStockUsecase
	validator        *validator.Validate
}

func NewDeadStockHandler(deadStockUsecase domain.DeadStockUsecase, validator *validator.Validate) *DeadStockHandler {
	return &DeadStockHandler{
		deadStockUsecase: deadStockUsecase,
		validator:        validator,
	}
}

// Detect runs a read-only detection pass, scoped to one product when the
// product_id query parameter is set.
func (h *DeadStockHandler) Detect(c *fiber.Ctx) error {
	var productID *int64
	if c.Query("product_id") != "" {
		id := int64(c.QueryInt("product_id"))
		if id <= 0 {
			slog.ErrorContext(c.Context(), "[deadStockHandler] Detect", "productID", c.Query("product_id"))
			return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
		}
		productID = &id
	}

	candidates, err := h.deadStockUsecase.DetectDeadStock(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] Detect", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(candidates))
}

func (h *DeadStockHandler) ApplyAction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] ApplyAction", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	var req domain.DeadStockActionRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] ApplyAction", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] ApplyAction", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	alert, err := h.deadStockUsecase.ApplyAction(c.Context(), id, req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] ApplyAction", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	userID, _ := ctxutil.GetUserIDCtx(c.Context())
	slog.InfoContext(c.Context(), "[deadStockHandler] ApplyAction", "alertID", id, "action", req.Action, "userID", userID)

	return c.Status(fiber.StatusOK).JSON(response.Success(alert))
}

func (h *DeadStockHandler) Delist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] Delist", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	alert, err := h.deadStockUsecase.DelistProduct(c.Context(), id)
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] Delist", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	userID, _ := ctxutil.GetUserIDCtx(c.Context())
	slog.InfoContext(c.Context(), "[deadStockHandler] Delist", "alertID", id, "productID", alert.ProductID, "userID", userID)

	return c.Status(fiber.StatusOK).JSON(response.Success(alert))
}

func (h *DeadStockHandler) Archive(c *fiber.Ctx) error {
	archived, err := h.deadStockUsecase.ArchiveReviewed(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] Archive", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(fiber.Map{"archived": archived}))
}

func (h *DeadStockHandler) GetAlerts(c *fiber.Ctx) error {
	filter := domain.DeadStockFilter{}
	if err := c.QueryParser(&filter); err != nil {
		slog.WarnContext(c.Context(), "[deadStockHandler] GetAlerts", "queryParser", err)
	}

	alerts, err := h.deadStockUsecase.GetAlerts(c.Context(), filter)
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] GetAlerts", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(alerts))
}

func (h *DeadStockHandler) GetClearanceCandidates(c *fiber.Ctx) error {
	alerts, err := h.deadStockUsecase.GetClearanceCandidates(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] GetClearanceCandidates", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(alerts))
}

func (h *DeadStockHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.deadStockUsecase.GetStats(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[deadStockHandler] GetStats", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(stats))
}
