package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pantemp/internal/models"
	"pantemp/internal/temperature"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusHeating  = "heating"
	statusEntry    = "target_entry"
	statusCanceled = "canceled"
	statusUnitSet  = "unit_set"
	statusInputSet = "input_set"

	errGetState        = "failed to load session state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondWithView wraps a status string and the session view.
func respondWithView(c *gin.Context, status string, view models.SessionView) {
	c.JSON(http.StatusOK, gin.H{"status": status, "session": view})
}

// validationKind maps a validation failure to its stable wire name.
func validationKind(err error) (string, bool) {
	var ve *temperature.ValidationError
	if !errors.As(err, &ve) {
		return "", false
	}
	switch {
	case errors.Is(ve.Kind, temperature.ErrEmptyInput):
		return "EMPTY_INPUT", true
	case errors.Is(ve.Kind, temperature.ErrNotANumber):
		return "NOT_A_NUMBER", true
	case errors.Is(ve.Kind, temperature.ErrBelowMinimum):
		return "BELOW_MINIMUM", true
	case errors.Is(ve.Kind, temperature.ErrAboveMaximum):
		return "ABOVE_MAXIMUM", true
	default:
		return "", false
	}
}

// Request DTO for starting a session.
type startRequest struct {
	Target string `json:"target"` // free-text numeric field; presets populate the same field
}

// StartRequest is an exported model for Swagger docs of the start payload.
type StartRequest struct {
	// Target temperature as entered, validated against the active unit's range
	Target string `json:"target" example:"350"`
}

// Request DTO for switching units.
type unitRequest struct {
	Unit string `json:"unit" binding:"required"` // F | C
}

// UnitRequest is an exported model for Swagger docs of the unit payload.
type UnitRequest struct {
	// Display unit. Allowed: F, C
	Unit string `json:"unit" example:"C"`
}

// Request DTO for recording unsubmitted input.
type inputRequest struct {
	Value string `json:"value"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start heating toward a target
// @Description  Validates the raw target against the active unit's range and starts the tick loop
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body   StartRequest  true  "Target payload"
// @Success      200   {object}  map[string]interface{}  "status, session"
// @Failure      400   {object}  map[string]string       "error, kind"
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/session/start [post]
func (h *Handler) startSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	view, err := h.services.Session.Start(ctx, req.Target)
	if err != nil {
		if kind, ok := validationKind(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind, "session": view})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to start session", "session_start_failed", err)
		return
	}
	respondWithView(c, statusHeating, view)
}

// @Summary      Change target
// @Description  Stops the tick loop and returns to target entry, pre-filled with the prior target
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session/target [post]
func (h *Handler) changeTarget(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.services.Session.ChangeTarget(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to change target", "session_change_target_failed", err)
		return
	}
	respondWithView(c, statusEntry, view)
}

// @Summary      Cancel session
// @Description  Stops the tick loop, resets to the unit's ambient temperature, clears the persisted target
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session/cancel [post]
func (h *Handler) cancelSession(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.services.Session.Cancel(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to cancel session", "session_cancel_failed", err)
		return
	}
	respondWithView(c, statusCanceled, view)
}

// @Summary      Switch display unit
// @Description  Atomically converts current, target, and pending input; no-op when unchanged
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body   UnitRequest  true  "Unit payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/session/unit [post]
func (h *Handler) switchUnit(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	unit, err := models.ParseUnit(req.Unit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	view, err := h.services.Session.SwitchUnit(ctx, unit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to switch unit", "session_switch_unit_failed", err, "unit", req.Unit)
		return
	}
	respondWithView(c, statusUnitSet, view)
}

// @Summary      Record unsubmitted target input
// @Description  Keeps the pending entry server-side so unit switches convert it
// @Tags         session
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/session/input [post]
func (h *Handler) setInput(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	view, err := h.services.Session.SetInput(ctx, req.Value)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to record input", "session_set_input_failed", err)
		return
	}
	respondWithView(c, statusInputSet, view)
}

// @Summary      Get limits and presets for the active unit
// @Description  Advisory low/medium/high targets; they pass the same validation as manual input
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "unit, limits, presets"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session/presets [get]
func (h *Handler) getPresets(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.services.Monitoring.State(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "session_get_presets_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unit":    view.Unit,
		"limits":  view.Limits,
		"presets": view.Presets,
	})
}

// @Summary      Get session state
// @Description  Derived view: progress, overheat flag, remaining-time estimate, limits, presets
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session/state [get]
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.services.Monitoring.State(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "session_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
