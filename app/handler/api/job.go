package handler

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	queue     domain.JobQueue
	validator *validator.Validate
}

func NewJobHandler(queue domain.JobQueue, validator *validator.Validate) *JobHandler {
	return &JobHandler{
		queue:     queue,
		validator: validator,
	}
}

func (h *JobHandler) Enqueue(c *fiber.Ctx) error {
	var req domain.EnqueueJobRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[jobHandler] Enqueue", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[jobHandler] Enqueue", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	jobID, err := h.queue.Enqueue(req.Type)
	if err != nil {
		slog.ErrorContext(c.Context(), "[jobHandler] Enqueue", "queue", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	slog.InfoContext(c.Context(), "[jobHandler] Enqueue", "jobID", jobID, "type", req.Type)

	return c.Status(fiber.StatusAccepted).JSON(response.Success(fiber.Map{"job_id": jobID}))
}

func (h *JobHandler) GetStatus(c *fiber.Ctx) error {
	job, err := h.queue.GetStatus(c.Params("id"))
	if err != nil {
		slog.WarnContext(c.Context(), "[jobHandler] GetStatus", "queue", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(job))
}

func (h *JobHandler) GetAll(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(response.Success(h.queue.GetAll()))
}

func (h *JobHandler) ClearCompleted(c *fiber.Ctx) error {
	removed := h.queue.ClearCompleted()
	slog.InfoContext(c.Context(), "[jobHandler] ClearCompleted", "removed", removed)

	return c.Status(fiber.StatusOK).JSON(response.Success(fiber.Map{"removed": removed}))
}
