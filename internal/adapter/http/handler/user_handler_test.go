package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/metrics"
	"github.com/iho/finledger/internal/usecase"
)

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "duplicate email", err: domain.ErrUserAlreadyExists, wantStatus: http.StatusConflict},
		{name: "weak password", err: domain.ErrPasswordTooWeak, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.CreateUserInput
			h := NewUserHandler(&userServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
					captured = input
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.User{ID: "user-1", Name: input.Name, Email: input.Email, HashedPassword: "hash"}, nil
				},
			}, &tokenIssuerStub{}, nil)

			rec := httptest.NewRecorder()
			h.Create(rec, newRequest(http.MethodPost, "/api/v1/users",
				`{"name":"Jane","email":"jane@example.com","password":"Secret123"}`, "", nil))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "Secret123", captured.Password)

			if tt.err == nil {
				body := decodeBody(t, rec)
				assert.Equal(t, "user-1", body["id"])
				assert.NotContains(t, rec.Body.String(), "hash")
				assert.NotContains(t, rec.Body.String(), "Secret123")
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	users := &userServiceStub{
		authenticateFn: func(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
			if input.Email == "jane@example.com" && input.Password == "Secret123" {
				return &domain.User{ID: "user-1", Email: input.Email}, nil
			}
			return nil, domain.ErrUnauthorized
		},
	}

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := NewUserHandler(users, &tokenIssuerStub{token: "signed", expiresAt: expires}, m)

	t.Run("valid credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(http.MethodPost, "/api/v1/sessions",
			`{"email":"jane@example.com","password":"Secret123"}`, "", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "signed", body["token"])
		assert.Equal(t, "2030-01-01T00:00:00Z", body["expires_at"])
		assert.Equal(t, "user-1", body["user"].(map[string]any)["id"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(http.MethodPost, "/api/v1/sessions",
			`{"email":"jane@example.com","password":"nope"}`, "", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthAttempts.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthAttempts.WithLabelValues("failure")))
}

func TestUserHandler_Profile(t *testing.T) {
	h := NewUserHandler(&userServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id == "user-1" {
				return &domain.User{ID: id, Name: "Jane", Email: "jane@example.com"}, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}, &tokenIssuerStub{}, nil)

	rec := httptest.NewRecorder()
	h.Profile(rec, newRequest(http.MethodGet, "/api/v1/profile", "", "user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane", decodeBody(t, rec)["name"])

	rec = httptest.NewRecorder()
	h.Profile(rec, newRequest(http.MethodGet, "/api/v1/profile", "", "deleted", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Profile(rec, newRequest(http.MethodGet, "/api/v1/profile", "", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
