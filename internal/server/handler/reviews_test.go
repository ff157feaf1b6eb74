package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/review"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, req review.Request) (*review.Response, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*review.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) GetAllReviews(ctx context.Context) ([]review.Response, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]review.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) GetReviewByID(ctx context.Context, id int64) (*review.Response, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*review.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newRouter(svc review.ReviewService) http.Handler {
	h := NewReviewHandler(svc)
	r := chi.NewRouter()
	r.Post("/api/reviews", h.Create)
	r.Get("/api/reviews", h.List)
	r.Get("/api/reviews/{id}", h.Get)
	r.Delete("/api/reviews/{id}", h.Delete)
	return r
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    &review.ValidationError{Fields: map[string]string{"code": "Code cannot be empty"}},
			status: http.StatusBadRequest,
			body:   `{"error":"validation failed","fields":{"code":"Code cannot be empty"}}`,
		},
		{
			name:   "provider",
			err:    &review.ProviderError{Err: errors.New("status 529")},
			status: http.StatusInternalServerError,
			body:   `{"error":"failed to generate review","requestId":"req-1"}`,
		},
		{
			name:   "storage",
			err:    errors.New("executing insert query: disk I/O error"),
			status: http.StatusInternalServerError,
			body:   `{"error":"internal server error","requestId":"req-1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReviewService)
			svc.On("CreateReview", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"code":"x"}`))
			newRouter(svc).ServeHTTP(rec, req.WithContext(loggy.WithRequestID(req.Context(), "req-1")))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestGetNotFound(t *testing.T) {
	svc := new(MockReviewService)
	svc.On("GetReviewByID", mock.Anything, int64(42)).
		Return(nil, errors.Join(review.ErrReviewNotFound, errors.New("with ID: 42")))

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reviews/42", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestListStorageError(t *testing.T) {
	svc := new(MockReviewService)
	svc.On("GetAllReviews", mock.Anything).Return(nil, errors.New("connection refused"))

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCreateForwardsNullableFields(t *testing.T) {
	svc := new(MockReviewService)
	svc.On("CreateReview", mock.Anything, mock.MatchedBy(func(req review.Request) bool {
		return req.Code == "x" && req.Language == nil && req.Description != nil && *req.Description == ""
	})).Return(&review.Response{ID: 1, Code: "x"}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"code":"x","description":""}`))
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}
