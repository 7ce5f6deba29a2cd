package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neuradash/account-system/internal/core/domain"
)

func TestPlanHandler_List(t *testing.T) {
	e := newTestEcho()
	h := NewPlanHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp planListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Plans) != 3 {
		t.Fatalf("expected 3 purchasable plans, got %d", len(resp.Plans))
	}
	if resp.Plans[0].ID != domain.PlanBasic || resp.Plans[2].ID != domain.PlanEnterprise {
		t.Errorf("plans out of upgrade order: %+v", resp.Plans)
	}
	for _, p := range resp.Plans {
		if p.ID == domain.PlanFree {
			t.Error("free tier is not purchasable")
		}
	}
}

func TestPlanHandler_Compare(t *testing.T) {
	e := newTestEcho()
	h := NewPlanHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/plans/compare", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Compare(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp planCompareResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Plans) != 4 {
		t.Fatalf("comparison must include all tiers, got %d", len(resp.Plans))
	}
	if resp.Plans[0].ID != domain.PlanFree {
		t.Errorf("comparison must start at the free tier, got %q", resp.Plans[0].ID)
	}
	last := resp.Plans[len(resp.Plans)-1]
	if last.APILimitLabel != "Unlimited" {
		t.Errorf("unlimited limits must render as %q, got %q", "Unlimited", last.APILimitLabel)
	}
}
