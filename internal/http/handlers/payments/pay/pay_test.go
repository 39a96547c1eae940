package pay

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iq-fit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Purchase(ctx context.Context, p models.Purchase) (*models.Payment, error) {
	args := m.Called(ctx, p)
	if res := args.Get(0); res != nil {
		return res.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPayHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	owner := models.Viewer{ID: 5, Role: models.RoleUser}
	admin := models.Viewer{ID: 1, Role: models.RoleAdmin}

	tests := []struct {
		name           string
		caller         models.Viewer
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "owner pays plan price",
			caller: owner,
			body:   `{"userId":5,"planId":2,"amount":12.99,"paymentMethod":"CARD"}`,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, models.Purchase{UserID: 5, PlanID: 2, Amount: 12.99, PaymentMethod: "CARD"}).
					Return(&models.Payment{ID: 1, Amount: 12.99, Status: "PAID"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"PAID"`,
		},
		{
			name:   "admin pays for someone",
			caller: admin,
			body:   `{"userId":5,"planId":2,"paymentMethod":"CASH"}`,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, models.Purchase{UserID: 5, PlanID: 2, PaymentMethod: "CASH"}).
					Return(&models.Payment{ID: 2}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "user pays for someone else",
			caller:         models.Viewer{ID: 6, Role: models.RoleUser},
			body:           `{"userId":5,"planId":2,"paymentMethod":"CARD"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `forbidden`,
		},
		{
			name:   "wrong amount",
			caller: owner,
			body:   `{"userId":5,"planId":2,"amount":1,"paymentMethod":"CARD"}`,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, mock.Anything).Return(nil, models.ErrAmountMismatch)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `amount does not match plan price`,
		},
		{
			name:   "unknown plan",
			caller: owner,
			body:   `{"userId":5,"planId":99,"paymentMethod":"CARD"}`,
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing payment method",
			caller:         owner,
			body:           `{"userId":5,"planId":2}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field PaymentMethod is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/payments/pay", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithCaller(req.Context(), tt.caller))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
