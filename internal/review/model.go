package review

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Request field limits, counted in characters
const (
	MaxCodeLength        = 50000
	MaxLanguageLength    = 50
	MaxDescriptionLength = 500
)

// Review represents a stored code review
type Review struct {
	ID          int64     `db:"id"`
	Code        string    `db:"code"`
	Language    *string   `db:"language"`
	Description *string   `db:"description"`
	Review      *string   `db:"review"`
	CreatedAt   time.Time `db:"created_at"`
}

// Request is the inbound payload for creating a review
type Request struct {
	Code        string  `json:"code" validate:"notblank,max=50000"`
	Language    *string `json:"language" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// Response is the outbound projection of a Review
type Response struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Language    *string   `json:"language"`
	Description *string   `json:"description"`
	Review      *string   `json:"review"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToResponse projects a Review field for field
func ToResponse(r *Review) Response {
	return Response{
		ID:          r.ID,
		Code:        r.Code,
		Language:    r.Language,
		Description: r.Description,
		Review:      r.Review,
		CreatedAt:   r.CreatedAt,
	}
}

// ToResponses projects a list of reviews preserving order
func ToResponses(reviews []*Review) []Response {
	out := make([]Response, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ToResponse(r))
	}
	return out
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

var fieldMessages = map[string]string{
	"code.notblank":   "Code cannot be empty",
	"code.max":        fmt.Sprintf("Code cannot exceed %d characters", MaxCodeLength),
	"language.max":    fmt.Sprintf("Language cannot exceed %d characters", MaxLanguageLength),
	"description.max": fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength),
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// Validate checks the request against the field limits and returns a
// *ValidationError keyed by JSON field name
func (r *Request) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

// NewReview builds an unsaved Review from a request and the provider's review text
func NewReview(req Request, text string) *Review {
	return &Review{
		Code:        req.Code,
		Language:    req.Language,
		Description: req.Description,
		Review:      &text,
	}
}

// LanguageOrEmpty returns the language or "" when absent
func (r *Request) LanguageOrEmpty() string {
	return deref(r.Language)
}

// DescriptionOrEmpty returns the description or "" when absent
func (r *Request) DescriptionOrEmpty() string {
	return deref(r.Description)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
