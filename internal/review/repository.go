package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

// Repository defines operations for managing reviews in the database
type Repository interface {
	// CreateReview inserts a review and fills in its ID and CreatedAt
	CreateReview(ctx context.Context, review *Review) error

	// ListReviews returns all reviews, newest first
	ListReviews(ctx context.Context) ([]*Review, error)

	// GetReview retrieves a review by ID
	GetReview(ctx context.Context, id int64) (*Review, error)

	// DeleteReview deletes a review by ID
	DeleteReview(ctx context.Context, id int64) error
}

var reviewColumns = []string{"id", "code", "language", "description", "review", "created_at"}

// SQLRepository implements the Repository interface using a SQL database
type SQLRepository struct {
	db           *sqlx.DB
	sb           squirrel.StatementBuilderType
	queryTimeout time.Duration
	logger       *loggy.Logger
}

// NewSQLRepository creates a new SQL repository. The placeholder format is
// picked from the driver name. A zero queryTimeout disables the per-query deadline.
func NewSQLRepository(db *sqlx.DB, queryTimeout time.Duration, logger *loggy.Logger) *SQLRepository {
	format := squirrel.PlaceholderFormat(squirrel.Question)
	if db.DriverName() == "postgres" {
		format = squirrel.Dollar
	}

	return &SQLRepository{
		db:           db,
		sb:           squirrel.StatementBuilder.PlaceholderFormat(format),
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// CreateReview creates a new review
func (r *SQLRepository) CreateReview(ctx context.Context, review *Review) error {
	query, args, err := r.sb.Insert("reviews").
		Columns("code", "language", "description", "review").
		Values(review.Code, review.Language, review.Description, review.Review).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building create review query: %w", err)
	}

	err = r.withTx(ctx, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return err
		}

		// created_at is read back from the table so the driver parses it by column type
		selectQuery, selectArgs, err := r.selectByID(id).ToSql()
		if err != nil {
			return fmt.Errorf("building select review query: %w", err)
		}
		return tx.GetContext(ctx, review, selectQuery, selectArgs...)
	})
	if err != nil {
		return fmt.Errorf("executing create review query: %w", err)
	}

	r.logger.Debug("Review stored", "review_id", review.ID)
	return nil
}

// ListReviews retrieves all reviews ordered by creation time, newest first
func (r *SQLRepository) ListReviews(ctx context.Context) ([]*Review, error) {
	query, args, err := r.sb.Select(reviewColumns...).
		From("reviews").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list reviews query: %w", err)
	}

	reviews := []*Review{}
	err = r.withTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &reviews, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("executing list reviews query: %w", err)
	}

	return reviews, nil
}

// GetReview retrieves a review by ID
func (r *SQLRepository) GetReview(ctx context.Context, id int64) (*Review, error) {
	query, args, err := r.selectByID(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get review query: %w", err)
	}

	var review Review
	err = r.withTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &review, query, args...)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("executing get review query: %w", err)
	}

	return &review, nil
}

// DeleteReview deletes a review by ID. Deleting a missing review returns ErrReviewNotFound.
func (r *SQLRepository) DeleteReview(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete review query: %w", err)
	}

	err = r.withTx(ctx, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}
		if affected == 0 {
			return notFound(id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return err
		}
		return fmt.Errorf("executing delete review query: %w", err)
	}

	r.logger.Debug("Review deleted", "review_id", id)
	return nil
}

func (r *SQLRepository) selectByID(id int64) squirrel.SelectBuilder {
	return r.sb.Select(reviewColumns...).
		From("reviews").
		Where(squirrel.Eq{"id": id})
}

// withTx runs fn in its own transaction, committing on success and rolling back otherwise
func (r *SQLRepository) withTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
