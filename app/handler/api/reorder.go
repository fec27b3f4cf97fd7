package handler

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"
	"inventory-automation/pkg/ctxutil"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ReorderHandler struct {
	reorderUsecase domain.AutoReorderUsecase
	validator      *validator.Validate
}

func NewReorderHandler(reorderUsecase domain.AutoReorderUsecase, validator *validator.Validate) *ReorderHandler {
	return &ReorderHandler{
		reorderUsecase: reorderUsecase,
		validator:      validator,
	}
}

func (h *ReorderHandler) Check(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] Check", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	should, err := h.reorderUsecase.ShouldReorder(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] Check", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(fiber.Map{
		"product_id":     productID,
		"should_reorder": should,
	}))
}

// Trigger accepts an empty body, which reorders with the MANUAL reason.
func (h *ReorderHandler) Trigger(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] Trigger", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	var req domain.TriggerReorderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			slog.ErrorContext(c.Context(), "[reorderHandler] Trigger", "bodyParser", err)
			return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
		}
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] Trigger", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	task, err := h.reorderUsecase.TriggerReorder(c.Context(), productID, req.Reason)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] Trigger", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(task))
}

func (h *ReorderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] UpdateStatus", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	var req domain.ReorderStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] UpdateStatus", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] UpdateStatus", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	task, err := h.reorderUsecase.UpdateReorderStatus(c.Context(), id, req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] UpdateStatus", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	userID, _ := ctxutil.GetUserIDCtx(c.Context())
	slog.InfoContext(c.Context(), "[reorderHandler] UpdateStatus", "taskID", id, "status", task.Status, "userID", userID)

	return c.Status(fiber.StatusOK).JSON(response.Success(task))
}

func (h *ReorderHandler) GetList(c *fiber.Ctx) error {
	filter := domain.ReorderTaskFilter{}
	if err := c.QueryParser(&filter); err != nil {
		slog.WarnContext(c.Context(), "[reorderHandler] GetList", "queryParser", err)
	}

	tasks, err := h.reorderUsecase.GetReorderTasks(c.Context(), filter)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] GetList", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(tasks))
}

func (h *ReorderHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.reorderUsecase.GetReorderStats(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[reorderHandler] GetStats", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(stats))
}
