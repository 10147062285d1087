package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/services"
	"github.com/jajuok/agripro-sub000/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type WaitlistHandler struct {
	waitlistService *services.WaitlistService
}

func NewWaitlistHandler(waitlistService *services.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

func (h *WaitlistHandler) Register(app *fiber.App) {
	protectedGr := app.Group(routePrefix)

	waitlistGroup := protectedGr.Group("/waitlist")
	waitlistGroup.Get("/by-scheme/:scheme_id", h.ListByScheme)          // GET /waitlist/by-scheme/:scheme_id
	waitlistGroup.Get("/by-assessment/:assessment_id", h.GetByAssessment) // GET /waitlist/by-assessment/:assessment_id
	waitlistGroup.Post("/by-scheme/:scheme_id/offer-next", h.OfferNext) // POST /waitlist/by-scheme/:scheme_id/offer-next
}

func (h *WaitlistHandler) ListByScheme(c fiber.Ctx) error {
	schemeID, err := uuid.Parse(c.Params("scheme_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	var status *models.WaitlistStatus
	if q := c.Query("status"); q != "" {
		s := models.WaitlistStatus(q)
		status = &s
	}

	entries, err := h.waitlistService.ListByScheme(c.Context(), schemeID, status)
	if err != nil {
		httpStatus, code := statusForError(err)
		if httpStatus == http.StatusInternalServerError {
			slog.Error("Failed to list waitlist", "scheme_id", schemeID, "error", err)
			return c.Status(httpStatus).JSON(
				utils.CreateErrorResponse(code, "Failed to retrieve waitlist"))
		}
		return c.Status(httpStatus).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"entries":   entries,
		"count":     len(entries),
		"scheme_id": schemeID,
	}))
}

func (h *WaitlistHandler) GetByAssessment(c fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("assessment_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid assessment ID format"))
	}

	entry, err := h.waitlistService.GetByAssessmentID(c.Context(), assessmentID)
	if err != nil {
		httpStatus, code := statusForError(err)
		if httpStatus == http.StatusInternalServerError {
			slog.Error("Failed to get waitlist entry", "assessment_id", assessmentID, "error", err)
			return c.Status(httpStatus).JSON(
				utils.CreateErrorResponse(code, "Failed to retrieve waitlist entry"))
		}
		return c.Status(httpStatus).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(entry))
}

func (h *WaitlistHandler) OfferNext(c fiber.Ctx) error {
	schemeID, err := uuid.Parse(c.Params("scheme_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	entry, err := h.waitlistService.OfferNext(c.Context(), schemeID)
	if err != nil {
		httpStatus, code := statusForError(err)
		if httpStatus == http.StatusInternalServerError {
			slog.Error("Failed to offer waitlist slot", "scheme_id", schemeID, "error", err)
			return c.Status(httpStatus).JSON(
				utils.CreateErrorResponse(code, "Failed to offer waitlist slot"))
		}
		return c.Status(httpStatus).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(entry))
}
