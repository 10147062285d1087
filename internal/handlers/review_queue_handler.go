package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/services"
	"github.com/jajuok/agripro-sub000/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ReviewQueueHandler struct {
	reviewService *services.ReviewQueueService
}

func NewReviewQueueHandler(reviewService *services.ReviewQueueService) *ReviewQueueHandler {
	return &ReviewQueueHandler{reviewService: reviewService}
}

func (h *ReviewQueueHandler) Register(app *fiber.App) {
	protectedGr := app.Group(routePrefix)

	reviewGroup := protectedGr.Group("/reviews")
	reviewGroup.Get("/pending", h.ListPending)      // GET /reviews/pending
	reviewGroup.Get("/overdue", h.ListOverdue)      // GET /reviews/overdue
	reviewGroup.Post("/:id/assign", h.Assign)       // POST /reviews/:id/assign
}

func (h *ReviewQueueHandler) ListPending(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	items, err := h.reviewService.ListPending(c.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list pending reviews", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve pending reviews"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"reviews": items,
		"count":   len(items),
	}))
}

func (h *ReviewQueueHandler) ListOverdue(c fiber.Ctx) error {
	items, err := h.reviewService.ListOverdue(c.Context())
	if err != nil {
		slog.Error("Failed to list overdue reviews", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve overdue reviews"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"reviews": items,
		"count":   len(items),
	}))
}

func (h *ReviewQueueHandler) Assign(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid review item ID format"))
	}

	var req models.AssignReviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if req.ReviewerID == "" {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_ERROR", "Reviewer ID is required"))
	}

	item, err := h.reviewService.Assign(c.Context(), id, req.ReviewerID)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to assign review", "item_id", id, "reviewer_id", req.ReviewerID, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to assign review"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(item))
}
