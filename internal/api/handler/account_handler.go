package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neuradash/account-system/internal/core/domain"
	"github.com/neuradash/account-system/internal/core/ports"
)

const defaultActivityLimit = 20

// AccountHandler exposes the account record lifecycle over HTTP.
type AccountHandler struct {
	service ports.AccountService
	gateway ports.Gateway
}

func NewAccountHandler(service ports.AccountService, gateway ports.Gateway) *AccountHandler {
	return &AccountHandler{service: service, gateway: gateway}
}

// Get returns the enriched account record.
//
// @Summary      Get account
// @Tags         account
// @Produce      json
// @Param        refresh  query  bool  false  "Bypass the cache"
// @Success      200  {object}  domain.EnrichedRecord
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/account [get]
func (h *AccountHandler) Get(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	refresh, _ := strconv.ParseBool(c.QueryParam("refresh"))
	rec := h.service.GetUserData(c.Request().Context(), refresh)
	if rec == nil {
		return domain.ErrNoUser
	}
	return c.JSON(http.StatusOK, rec)
}

// Update merges a partial patch into the account record.
//
// @Summary      Update account
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "Fields to merge"
// @Success      200   {object}  domain.EnrichedRecord
// @Failure      400   {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/account [put]
func (h *AccountHandler) Update(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(patch) == 0 {
		return domain.ErrInvalidPatch
	}

	ctx := c.Request().Context()
	if !h.service.SaveUserData(ctx, patch) {
		return domain.ErrInvalidPatch
	}
	return c.JSON(http.StatusOK, h.service.GetUserData(ctx, false))
}

// Delete logs the account out and clears its stored data.
//
// @Summary      Clear account data
// @Tags         account
// @Param        settings  query  bool  false  "Also clear settings"
// @Success      204  "cleared"
// @Security     BearerAuth
// @Router       /v1/account [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	clearSettings, _ := strconv.ParseBool(c.QueryParam("settings"))
	h.service.ClearUserData(c.Request().Context(), clearSettings)
	return c.NoContent(http.StatusNoContent)
}

// UpdatePlan charges the payment gateway and switches the account's plan.
//
// @Summary      Change plan
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      updatePlanRequest  true  "Target plan"
// @Success      200   {object}  domain.EnrichedRecord
// @Failure      402   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/account/plan [post]
func (h *AccountHandler) UpdatePlan(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req updatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	resp, err := h.gateway.Do(ctx, ports.EndpointCharge, map[string]any{
		"planId":        req.PlanID,
		"paymentMethod": req.PaymentMethod,
	})
	if err != nil {
		return err
	}

	if !h.service.UpdateUserPlan(ctx, req.PlanID, resp.Subscription) {
		return domain.ErrNoUser
	}
	h.service.TrackActivity(ctx, "plan_changed", map[string]any{"planId": req.PlanID})

	return c.JSON(http.StatusOK, h.service.GetUserData(ctx, false))
}

// UpdateSettings shallow-merges the request body into the settings bag.
//
// @Summary      Update settings
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "Settings to merge"
// @Success      200   {object}  settingsResponse
// @Security     BearerAuth
// @Router       /v1/account/settings [put]
func (h *AccountHandler) UpdateSettings(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(patch) == 0 {
		return domain.ErrInvalidPatch
	}

	ctx := c.Request().Context()
	if !h.service.UpdateSettings(ctx, patch) {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not persist settings")
	}
	return c.JSON(http.StatusOK, settingsResponse{Settings: h.service.Settings(ctx)})
}

// Activity returns the recent activity log, newest first.
//
// @Summary      Recent activity
// @Tags         account
// @Produce      json
// @Param        limit  query  int  false  "Maximum entries"
// @Success      200  {object}  activityResponse
// @Security     BearerAuth
// @Router       /v1/account/activity [get]
func (h *AccountHandler) Activity(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	limit := defaultActivityLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries := h.service.RecentActivity(c.Request().Context(), limit)
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	return c.JSON(http.StatusOK, activityResponse{Entries: entries})
}

// TrackActivity records one activity entry.
//
// @Summary      Track activity
// @Tags         account
// @Accept       json
// @Success      202  "accepted"
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/account/activity [post]
func (h *AccountHandler) TrackActivity(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req trackActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.service.TrackActivity(c.Request().Context(), req.Action, req.Meta)
	return c.NoContent(http.StatusAccepted)
}

// Export returns a portable snapshot of everything stored for the account.
// Gated on the apiAccess feature by the router.
//
// @Summary      Export account data
// @Tags         account
// @Produce      json
// @Success      200  {object}  exportResponse
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/account/export [get]
func (h *AccountHandler) Export(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	ctx := c.Request().Context()
	rec := h.service.GetUserData(ctx, true)
	if rec == nil {
		return domain.ErrNoUser
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="account-export.json"`)
	return c.JSON(http.StatusOK, exportResponse{
		User:       rec,
		Settings:   h.service.Settings(ctx),
		Activity:   h.service.RecentActivity(ctx, defaultActivityLimit),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
