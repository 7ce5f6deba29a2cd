package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/neuradash/account-system/internal/core/ports"
)

// AuthHandler drives the signup and login flows: a gateway round-trip for
// credentials, then a local account save and a signed token.
type AuthHandler struct {
	service    ports.AccountService
	gateway    ports.Gateway
	jwtSecret  string
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthHandler(service ports.AccountService, gateway ports.Gateway, jwtSecret string, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		service:    service,
		gateway:    gateway,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Signup creates a new account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "New account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payload := map[string]any{"name": req.Name, "email": req.Email, "password": req.Password}
	resp, err := h.gateway.Do(c.Request().Context(), ports.EndpointSignup, payload)
	if err != nil {
		return err
	}

	return h.establishSession(c, http.StatusCreated, resp.User, req.RememberMe, "signup")
}

// Login authenticates an existing account.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payload := map[string]any{"email": req.Email, "password": req.Password}
	resp, err := h.gateway.Do(c.Request().Context(), ports.EndpointLogin, payload)
	if err != nil {
		return err
	}

	return h.establishSession(c, http.StatusOK, resp.User, req.RememberMe, "login")
}

// establishSession persists the gateway's user payload with session stamps,
// issues a token, and returns the enriched record.
func (h *AuthHandler) establishSession(c echo.Context, status int, user map[string]any, rememberMe bool, action string) error {
	ctx := c.Request().Context()
	now := h.now().UTC()

	patch := make(map[string]any, len(user)+2)
	for k, v := range user {
		patch[k] = v
	}
	patch["loginTime"] = now.Format(time.RFC3339)
	if rememberMe {
		// Remember-me sessions carry no expiry at all.
		patch["sessionExpiry"] = nil
	} else {
		patch["sessionExpiry"] = now.Add(h.sessionTTL).Format(time.RFC3339)
	}

	if !h.service.SaveUserData(ctx, patch) {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not persist account")
	}

	rec := h.service.GetUserData(ctx, false)
	token, err := h.signToken(rec.ID, rec.Email, rememberMe, now)
	if err != nil {
		return err
	}

	h.service.TrackActivity(ctx, action, nil)

	return c.JSON(status, authResponse{Token: token, User: rec})
}

func (h *AuthHandler) signToken(userID, email string, rememberMe bool, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
	}
	if !rememberMe {
		claims["exp"] = now.Add(h.sessionTTL).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
