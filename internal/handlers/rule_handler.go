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

type RuleHandler struct {
	schemeService *services.SchemeService
}

func NewRuleHandler(schemeService *services.SchemeService) *RuleHandler {
	return &RuleHandler{schemeService: schemeService}
}

func (h *RuleHandler) Register(app *fiber.App) {
	protectedGr := app.Group(routePrefix)

	ruleGroup := protectedGr.Group("/rules")
	ruleGroup.Post("/", h.Create)                  // POST /rules
	ruleGroup.Get("/:id", h.GetByID)               // GET /rules/:id
	ruleGroup.Post("/:id/replace", h.Replace)      // POST /rules/:id/replace
	ruleGroup.Delete("/:id", h.Deactivate)         // DELETE /rules/:id (deactivates)
	ruleGroup.Post("/groups", h.CreateGroup)       // POST /rules/groups
}

func (h *RuleHandler) Create(c fiber.Ctx) error {
	var req models.CreateRuleRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	rule, err := h.schemeService.CreateRule(c.Context(), &req)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to create rule", "scheme_id", req.SchemeID, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to create rule"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(rule))
}

func (h *RuleHandler) GetByID(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid rule ID format"))
	}

	rule, err := h.schemeService.GetRule(c.Context(), id)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to get rule", "rule_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to retrieve rule"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(rule))
}

// Replace retires a rule and creates its successor. Stored rules are never
// edited in place.
func (h *RuleHandler) Replace(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid rule ID format"))
	}

	var req models.CreateRuleRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	rule, err := h.schemeService.ReplaceRule(c.Context(), id, &req)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to replace rule", "rule_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to replace rule"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(rule))
}

func (h *RuleHandler) Deactivate(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid rule ID format"))
	}

	if err := h.schemeService.DeactivateRule(c.Context(), id); err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to deactivate rule", "rule_id", id, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to deactivate rule"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"deactivated_rule_id": id,
	}))
}

func (h *RuleHandler) CreateGroup(c fiber.Ctx) error {
	var req models.CreateRuleGroupRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	group, err := h.schemeService.CreateRuleGroup(c.Context(), &req)
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to create rule group", "scheme_id", req.SchemeID, "error", err)
			return c.Status(status).JSON(
				utils.CreateErrorResponse(code, "Failed to create rule group"))
		}
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(group))
}
