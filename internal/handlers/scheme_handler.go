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

type SchemeHandler struct {
	schemeService *services.SchemeService
}

func NewSchemeHandler(schemeService *services.SchemeService) *SchemeHandler {
	return &SchemeHandler{schemeService: schemeService}
}

func (h *SchemeHandler) Register(app *fiber.App) {
	protectedGr := app.Group(routePrefix)

	schemeGroup := protectedGr.Group("/schemes")
	schemeGroup.Post("/", h.Create)                   // POST /schemes
	schemeGroup.Get("/", h.GetAll)                    // GET /schemes
	schemeGroup.Get("/:id", h.GetByID)                // GET /schemes/:id
	schemeGroup.Patch("/:id/status", h.UpdateStatus)  // PATCH /schemes/:id/status
	schemeGroup.Delete("/:id", h.Delete)              // DELETE /schemes/:id
	schemeGroup.Get("/:id/rules", h.GetRules)         // GET /schemes/:id/rules
}

func (h *SchemeHandler) Create(c fiber.Ctx) error {
	var req models.CreateSchemeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	scheme, err := h.schemeService.CreateScheme(c.Context(), &req)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to create scheme", "name", req.Name, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to create scheme"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(scheme))
}

func (h *SchemeHandler) GetAll(c fiber.Ctx) error {
	schemes, err := h.schemeService.ListSchemes(c.Context())
	if err != nil {
		slog.Error("Failed to list schemes", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve schemes"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"schemes": schemes,
		"count":   len(schemes),
	}))
}

func (h *SchemeHandler) GetByID(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	scheme, err := h.schemeService.GetScheme(c.Context(), id)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to get scheme", "scheme_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to retrieve scheme"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(scheme))
}

func (h *SchemeHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	var req models.UpdateSchemeStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	scheme, err := h.schemeService.UpdateSchemeStatus(c.Context(), id, req.Status)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to update scheme status", "scheme_id", id, "target", req.Status, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to update scheme status"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(scheme))
}

func (h *SchemeHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	if err := h.schemeService.DeleteScheme(c.Context(), id); err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to delete scheme", "scheme_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to delete scheme"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"deleted_scheme_id": id,
	}))
}

func (h *SchemeHandler) GetRules(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid scheme ID format"))
	}

	groups, rules, err := h.schemeService.GetSchemeRules(c.Context(), id)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to get scheme rules", "scheme_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to retrieve scheme rules"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"rule_groups":     groups,
		"ungrouped_rules": rules,
	}))
}
