package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

func TestTransferHandler_Create(t *testing.T) {
	users := &userServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id == "recipient" {
				return &domain.User{ID: id}, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}

	tests := []struct {
		name        string
		recipientID string
		body        string
		serviceErr  error
		wantStatus  int
		wantCalled  bool
	}{
		{
			name:        "success",
			recipientID: "recipient",
			body:        `{"amount": 20, "description": "dinner"}`,
			wantStatus:  http.StatusCreated,
			wantCalled:  true,
		},
		{
			name:        "transfer to self",
			recipientID: "payer",
			body:        `{"amount": 20, "description": "dinner"}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "unknown recipient",
			recipientID: "ghost",
			body:        `{"amount": 20, "description": "dinner"}`,
			wantStatus:  http.StatusNotFound,
		},
		{
			name:        "invalid amount",
			recipientID: "recipient",
			body:        `{"amount": 0.001, "description": "dinner"}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "failed leg",
			recipientID: "recipient",
			body:        `{"amount": 20, "description": "dinner"}`,
			serviceErr:  &domain.TransferError{Leg: domain.LegDebit, Err: errors.New("disk full")},
			wantStatus:  http.StatusInternalServerError,
			wantCalled:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var captured usecase.CreateTransferInput

			h := NewTransferHandler(&transferServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Statement, error) {
					called = true
					captured = input
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &domain.Statement{
						ID:          "st-in",
						UserID:      input.UserID,
						Amount:      input.Amount,
						Description: input.Description,
						Operation:   domain.TransferIn{SenderID: input.SenderID, TransferID: "tr-1"},
					}, nil
				},
			}, users)

			rec := httptest.NewRecorder()
			req := newRequest(http.MethodPost, "/api/v1/statements/transfers/"+tt.recipientID, tt.body, "payer",
				map[string]string{"user_id": tt.recipientID})
			h.Create(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCalled, called)
			if !called {
				return
			}

			assert.Equal(t, "recipient", captured.UserID)
			assert.Equal(t, "payer", captured.SenderID)

			if tt.serviceErr == nil {
				body := decodeBody(t, rec)
				assert.Equal(t, "transfer", body["type"])
				assert.Equal(t, "payer", body["sender_id"])
				assert.Equal(t, "recipient", body["user_id"])
			}
		})
	}
}

func TestTransferHandler_RequiresAuthentication(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{}, &userServiceStub{})

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/v1/statements/transfers/recipient", `{}`, "",
		map[string]string{"user_id": "recipient"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
