package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/finledger/internal/adapter/http/middleware"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

type statementServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateStatementInput) (*domain.Statement, error)
	getFn     func(ctx context.Context, statementID, userID string) (*domain.Statement, error)
	balanceFn func(ctx context.Context, input usecase.GetBalanceInput) (*usecase.BalanceResult, error)
}

func (s *statementServiceStub) CreateStatement(ctx context.Context, input usecase.CreateStatementInput) (*domain.Statement, error) {
	return s.createFn(ctx, input)
}

func (s *statementServiceStub) GetStatementOperation(ctx context.Context, statementID, userID string) (*domain.Statement, error) {
	return s.getFn(ctx, statementID, userID)
}

func (s *statementServiceStub) GetBalance(ctx context.Context, input usecase.GetBalanceInput) (*usecase.BalanceResult, error) {
	return s.balanceFn(ctx, input)
}

type transferServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Statement, error)
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Statement, error) {
	return s.createFn(ctx, input)
}

type userServiceStub struct {
	createFn       func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	getFn          func(ctx context.Context, id string) (*domain.User, error)
}

func (s *userServiceStub) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, input)
}

func (s *userServiceStub) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
	return s.authenticateFn(ctx, input)
}

func (s *userServiceStub) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

type tokenIssuerStub struct {
	token     string
	expiresAt time.Time
	err       error
}

func (s *tokenIssuerStub) Generate(user *domain.User) (string, time.Time, error) {
	return s.token, s.expiresAt, s.err
}

type ledgerServiceStub struct {
	consistent bool
	err        error
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) (bool, error) {
	return s.consistent, s.err
}

// newRequest builds a request as the router would hand it to a handler:
// the user is authenticated and chi URL params are set.
func newRequest(method, target, body, userID string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := req.Context()
	if userID != "" {
		ctx = middleware.WithUser(ctx, &domain.User{ID: userID})
	}

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON object: %v: %s", err, rec.Body.String())
	}
	return body
}
