package handler

import (
	"log/slog"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"

	"github.com/gofiber/fiber/v2"
)

type RecommendationHandler struct {
	recommendationUsecase domain.StockRecommendationUsecase
}

func NewRecommendationHandler(recommendationUsecase domain.StockRecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationUsecase: recommendationUsecase,
	}
}

func (h *RecommendationHandler) Generate(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] Generate", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	rec, err := h.recommendationUsecase.GenerateRecommendation(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] Generate", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(rec))
}

func (h *RecommendationHandler) Apply(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] Apply", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	rec, err := h.recommendationUsecase.ApplyRecommendation(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] Apply", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	slog.InfoContext(c.Context(), "[recommendationHandler] Apply", "productID", productID)

	return c.Status(fiber.StatusOK).JSON(response.Success(rec))
}

func (h *RecommendationHandler) GetByProductID(c *fiber.Ctx) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] GetByProductID", "paramID", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	rec, err := h.recommendationUsecase.GetRecommendation(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] GetByProductID", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(rec))
}

func (h *RecommendationHandler) GetList(c *fiber.Ctx) error {
	filter := domain.RecommendationFilter{}
	if err := c.QueryParser(&filter); err != nil {
		slog.WarnContext(c.Context(), "[recommendationHandler] GetList", "queryParser", err)
	}

	recs, err := h.recommendationUsecase.ListRecommendations(c.Context(), filter)
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] GetList", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(recs))
}

func (h *RecommendationHandler) GetTop(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] GetTop", "queryLimit", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	recs, err := h.recommendationUsecase.GetTopRecommendations(c.Context(), limit)
	if err != nil {
		slog.ErrorContext(c.Context(), "[recommendationHandler] GetTop", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(recs))
}
