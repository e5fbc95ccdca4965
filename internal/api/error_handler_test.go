package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if jerr := json.Unmarshal(rec.Body.Bytes(), &resp); jerr != nil {
		t.Fatalf("invalid json: %v", jerr)
	}
	return rec.Code, resp
}

func TestErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", domain.ErrCustomerNotFound, http.StatusNotFound, "customer not found"},
		{"wrapped not found", fmt.Errorf("get: %w", domain.ErrCustomerNotFound), http.StatusNotFound, "customer not found"},
		{"validation", domain.NewValidationError("name", "customer name is required"), http.StatusBadRequest, "customer name is required"},
		{"missing token", domain.ErrTokenMissing, http.StatusUnauthorized, "missing authentication token"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "token has expired"},
		{"invalid token", domain.ErrTokenInvalid, http.StatusUnauthorized, "invalid token"},
		{"revoked token", domain.ErrTokenRevoked, http.StatusUnauthorized, "token has been revoked"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{"wrapped logout", fmt.Errorf("logout: %w", domain.ErrTokenRevoked), http.StatusUnauthorized, "token has been revoked"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"persistence", fmt.Errorf("create customer: %w", domain.ErrPersistence), http.StatusInternalServerError, "internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := renderError(t, tc.err)
			if code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
			if resp.Status != "error" || resp.Code != tc.code || resp.Message != tc.msg {
				t.Fatalf("unexpected envelope: %+v", resp)
			}
		})
	}
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Fatalf("committed response should not be rewritten, got %q", rec.Body.String())
	}
}
