package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/neuradash/account-system/internal/core/domain"
	"github.com/neuradash/account-system/internal/core/ports"
)

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("email", "ada@example.com")
	return c
}

func TestAccountHandler_Get(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.record = &domain.EnrichedRecord{UserRecord: domain.UserRecord{ID: "u1", Name: "Ada"}}
	h := NewAccountHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/account", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["name"] != "Ada" {
		t.Errorf("unexpected body: %v", resp)
	}
}

func TestAccountHandler_Get_NoUser(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(newStubAccount(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/account", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Get(c); !errors.Is(err, domain.ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestAccountHandler_Get_MissingClaims(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(newStubAccount(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/account", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no identity injected

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAccountHandler_Update(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.record = &domain.EnrichedRecord{}
	h := NewAccountHandler(svc, nil)

	req, rec := jsonRequest(http.MethodPut, "/v1/account", `{"name":"Ada Lovelace"}`)
	c := authedContext(e, req, rec)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.saved) != 1 || svc.saved[0]["name"] != "Ada Lovelace" {
		t.Errorf("patch not forwarded: %v", svc.saved)
	}
}

func TestAccountHandler_Update_EmptyPatch(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(newStubAccount(), nil)

	req, rec := jsonRequest(http.MethodPut, "/v1/account", `{}`)
	c := authedContext(e, req, rec)

	if err := h.Update(c); !errors.Is(err, domain.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch, got %v", err)
	}
}

func TestAccountHandler_Update_RejectedSave(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.saveOK = false
	h := NewAccountHandler(svc, nil)

	req, rec := jsonRequest(http.MethodPut, "/v1/account", `{"email":"bad"}`)
	c := authedContext(e, req, rec)

	if err := h.Update(c); !errors.Is(err, domain.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch, got %v", err)
	}
}

func TestAccountHandler_Delete(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.record = &domain.EnrichedRecord{}
	h := NewAccountHandler(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/account", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !svc.cleared {
		t.Error("clear not invoked")
	}
}

func TestAccountHandler_UpdatePlan(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.record = &domain.EnrichedRecord{}
	charged := false
	gw := &stubGateway{
		doFn: func(_ context.Context, endpoint string, payload map[string]any) (*ports.GatewayResponse, error) {
			if endpoint != ports.EndpointCharge {
				t.Fatalf("unexpected endpoint %q", endpoint)
			}
			charged = true
			return &ports.GatewayResponse{
				Success:      true,
				Subscription: &domain.Subscription{PlanID: payload["planId"].(string)},
			}, nil
		},
	}
	h := NewAccountHandler(svc, gw)

	req, rec := jsonRequest(http.MethodPost, "/v1/account/plan",
		`{"planId":"pro","paymentMethod":"card_4242"}`)
	c := authedContext(e, req, rec)

	if err := h.UpdatePlan(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !charged {
		t.Error("gateway charge not invoked")
	}
	if svc.record.PlanID != "pro" {
		t.Errorf("plan not updated: %q", svc.record.PlanID)
	}
	if len(svc.tracked) != 1 || svc.tracked[0] != "plan_changed" {
		t.Errorf("plan change must be tracked, got %v", svc.tracked)
	}
}

func TestAccountHandler_UpdatePlan_Declined(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.record = &domain.EnrichedRecord{}
	gw := &stubGateway{
		doFn: func(context.Context, string, map[string]any) (*ports.GatewayResponse, error) {
			return nil, domain.ErrPaymentDeclined
		},
	}
	h := NewAccountHandler(svc, gw)

	req, rec := jsonRequest(http.MethodPost, "/v1/account/plan", `{"planId":"pro"}`)
	c := authedContext(e, req, rec)

	if err := h.UpdatePlan(c); !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	if svc.record.PlanID != "" {
		t.Error("declined charge must not change the plan")
	}
}

func TestAccountHandler_Settings(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	h := NewAccountHandler(svc, nil)

	req, rec := jsonRequest(http.MethodPut, "/v1/account/settings", `{"theme":"dark"}`)
	c := authedContext(e, req, rec)

	if err := h.UpdateSettings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.settings["theme"] != "dark" {
		t.Errorf("settings not merged: %v", svc.settings)
	}
}

func TestAccountHandler_TrackActivity(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	h := NewAccountHandler(svc, nil)

	req, rec := jsonRequest(http.MethodPost, "/v1/account/activity",
		`{"action":"model_trained","meta":{"model":"v2"}}`)
	c := authedContext(e, req, rec)

	if err := h.TrackActivity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(svc.tracked) != 1 || svc.tracked[0] != "model_trained" {
		t.Errorf("activity not forwarded: %v", svc.tracked)
	}
}

func TestAccountHandler_TrackActivity_MissingAction(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(newStubAccount(), nil)

	req, rec := jsonRequest(http.MethodPost, "/v1/account/activity", `{"meta":{}}`)
	c := authedContext(e, req, rec)

	err := h.TrackActivity(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAccountHandler_Export(t *testing.T) {
	e := newTestEcho()
	svc := newStubAccount()
	svc.record = &domain.EnrichedRecord{UserRecord: domain.UserRecord{ID: "u1"}}
	svc.settings["theme"] = "dark"
	h := NewAccountHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/account/export", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd == "" {
		t.Error("export must set a content disposition")
	}

	var resp exportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User == nil || resp.User.ID != "u1" {
		t.Errorf("export missing user: %+v", resp.User)
	}
	if resp.Settings["theme"] != "dark" {
		t.Errorf("export missing settings: %v", resp.Settings)
	}
	if resp.ExportedAt == "" {
		t.Error("export missing timestamp")
	}
}
