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

type AssessmentHandler struct {
	eligibilityService *services.EligibilityService
}

func NewAssessmentHandler(eligibilityService *services.EligibilityService) *AssessmentHandler {
	return &AssessmentHandler{eligibilityService: eligibilityService}
}

func (h *AssessmentHandler) Register(app *fiber.App) {
	protectedGr := app.Group(routePrefix)

	assessmentGroup := protectedGr.Group("/assessments")
	assessmentGroup.Post("/", h.Assess)                          // POST /assessments
	assessmentGroup.Get("/:id", h.GetByID)                       // GET /assessments/:id
	assessmentGroup.Post("/:id/decision", h.ManualDecision)      // POST /assessments/:id/decision
	assessmentGroup.Get("/by-scheme/:scheme_id", h.ListByScheme) // GET /assessments/by-scheme/:scheme_id
	assessmentGroup.Get("/by-farmer/:farmer_id", h.ListByFarmer) // GET /assessments/by-farmer/:farmer_id
}

func (h *AssessmentHandler) Assess(c fiber.Ctx) error {
	var req models.AssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	resp, err := h.eligibilityService.Assess(c.Context(), &req)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Assessment failed",
				"farmer_id", req.FarmerID, "scheme_id", req.SchemeID, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to run assessment"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(resp))
}

func (h *AssessmentHandler) GetByID(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid assessment ID format"))
	}

	resp, err := h.eligibilityService.GetAssessment(c.Context(), id)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to get assessment", "assessment_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to retrieve assessment"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(resp))
}

func (h *AssessmentHandler) ManualDecision(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid assessment ID format"))
	}

	var req models.ManualDecisionRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	assessment, err := h.eligibilityService.ManualDecision(c.Context(), id, &req)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Manual decision failed",
				"assessment_id", id, "reviewer_id", req.ReviewerID, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to record decision"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(assessment))
}

func (h *AssessmentHandler) ListByScheme(c fiber.Ctx) error {
	schemeID, err := uuid.Parse(c.Params("scheme_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	assessments, err := h.eligibilityService.ListByScheme(c.Context(), schemeID, limit, offset)
	if err != nil {
		slog.Error("Failed to list assessments", "scheme_id", schemeID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve assessments"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"assessments": assessments,
		"count":       len(assessments),
		"scheme_id":   schemeID,
	}))
}

func (h *AssessmentHandler) ListByFarmer(c fiber.Ctx) error {
	farmerID := c.Params("farmer_id")
	if farmerID == "" {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_PARAM", "Farmer ID is required"))
	}

	assessments, err := h.eligibilityService.ListByFarmer(c.Context(), farmerID)
	if err != nil {
		slog.Error("Failed to list assessments for farmer", "farmer_id", farmerID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve assessments"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"assessments": assessments,
		"count":       len(assessments),
		"farmer_id":   farmerID,
	}))
}
