package review

import (
	"context"

	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/metrics"
)

// ReviewService is the set of review use-cases consumed by the HTTP API and
// the CLI
type ReviewService interface {
	CreateReview(ctx context.Context, req Request) (*Response, error)
	GetAllReviews(ctx context.Context) ([]Response, error)
	GetReviewByID(ctx context.Context, id int64) (*Response, error)
	DeleteReview(ctx context.Context, id int64) error
}

var _ ReviewService = (*Service)(nil)

// Service runs the review use-cases: create, list, get and delete
type Service struct {
	repo     Repository
	reviewer CodeReviewer
}

// NewService creates a new review service
func NewService(repo Repository, reviewer CodeReviewer) *Service {
	return &Service{
		repo:     repo,
		reviewer: reviewer,
	}
}

// CreateReview validates the request, asks the provider for a review and
// stores the result. Nothing is stored when the provider call fails.
func (s *Service) CreateReview(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	text, err := s.reviewer.ReviewCode(ctx, req.Code, req.LanguageOrEmpty(), req.DescriptionOrEmpty())
	if err != nil {
		return nil, err
	}

	review := NewReview(req, text)
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	loggy.FromContext(ctx).Info("Review created",
		"review_id", review.ID,
		"language", req.LanguageOrEmpty(),
		"code_chars", len(req.Code))

	resp := ToResponse(review)
	return &resp, nil
}

// GetAllReviews returns every review, newest first
func (s *Service) GetAllReviews(ctx context.Context) ([]Response, error) {
	reviews, err := s.repo.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	return ToResponses(reviews), nil
}

// GetReviewByID returns a single review or ErrReviewNotFound
func (s *Service) GetReviewByID(ctx context.Context, id int64) (*Response, error) {
	review, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToResponse(review)
	return &resp, nil
}

// DeleteReview removes a review or returns ErrReviewNotFound
func (s *Service) DeleteReview(ctx context.Context, id int64) error {
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return err
	}

	loggy.FromContext(ctx).Info("Review deleted", "review_id", id)
	return nil
}
