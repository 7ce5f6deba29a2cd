package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neuradash/account-system/internal/core/domain"
)

// PlanHandler serves the static plan catalog.
type PlanHandler struct{}

func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

type planListResponse struct {
	Plans []domain.PlanEntry `json:"plans"`
}

// List returns every purchasable plan in upgrade order.
//
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Success      200  {object}  planListResponse
// @Router       /v1/plans [get]
func (h *PlanHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, planListResponse{Plans: domain.ListPurchasablePlans()})
}

type planCompareResponse struct {
	Plans []domain.PlanComparison `json:"plans"`
}

// Compare returns the full comparison matrix, free tier included, with
// limits formatted for display.
//
// @Summary      Compare plans
// @Tags         plans
// @Produce      json
// @Success      200  {object}  planCompareResponse
// @Router       /v1/plans/compare [get]
func (h *PlanHandler) Compare(c echo.Context) error {
	return c.JSON(http.StatusOK, planCompareResponse{Plans: domain.ComparePlans()})
}
