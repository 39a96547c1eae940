package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) DeleteContent(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "deleted",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("DeleteContent", mock.Anything, int64(3)).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "unknown id",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("DeleteContent", mock.Anything, int64(3)).Return(models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "negative id",
			id:             "-3",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/content/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
