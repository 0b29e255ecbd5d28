// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

type ListParams struct {
	TargetID     string
	Rating       int
	Sort         SortKey
	VerifiedOnly bool
	Limit        int
}

type Source interface {
	FetchReviews(ctx context.Context, params ListParams) ([]Review, error)
}

type Submission struct {
	TargetID string
	UserID   string
	UserName string
	Rating   int
	Title    string
	Body     string
	Images   []string
}

type Submitter interface {
	SubmitReview(ctx context.Context, sub Submission) (Review, error)
}

type Repository interface {
	Source
	Submitter
	HelpfulWriter
	UpdateStatus(ctx context.Context, id int64, status Status) error
	ListByStatus(ctx context.Context, status Status, limit int) ([]Review, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const reviewColumns = `
	id, target_id, user_id, user_name, rating, COALESCE(title, '') AS title,
	body, images, verified_purchase, helpful_count, created_at, status`

var orderClauses = [...]string{
	SortNewest:     "created_at DESC, id",
	SortOldest:     "created_at, id",
	SortHelpful:    "helpful_count DESC, id",
	SortRatingHigh: "rating DESC, id",
	SortRatingLow:  "rating, id",
}

func orderBy(key SortKey) string {
	if key < SortNewest || key > SortRatingLow {
		key = SortNewest
	}
	return orderClauses[key]
}

// FetchReviews pushes filter and sort down to the database. Callers still run
// View over the result.
func (r *repository) FetchReviews(
	ctx context.Context,
	params ListParams,
) ([]Review, error) {
	query := `SELECT` + reviewColumns + `
		FROM reviews
		WHERE target_id = $1
		  AND status = 'approved'
		  AND ($2::int = 0 OR rating = $2::int)
		  AND (NOT $3::bool OR verified_purchase)
		ORDER BY ` + orderBy(params.Sort) + `
		LIMIT $4`

	var records []Record
	err := r.db.SelectContext(ctx, &records, query,
		params.TargetID,
		NormalizeRating(params.Rating),
		params.VerifiedOnly,
		params.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}

	return FromRecords(records), nil
}

func (r *repository) ListByStatus(
	ctx context.Context,
	status Status,
	limit int,
) ([]Review, error) {
	query := `SELECT` + reviewColumns + `
		FROM reviews
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2`

	var records []Record
	if err := r.db.SelectContext(ctx, &records, query, status, limit); err != nil {
		return nil, fmt.Errorf("list reviews by status: %w", err)
	}

	return FromRecords(records), nil
}

func (r *repository) SubmitReview(
	ctx context.Context,
	sub Submission,
) (Review, error) {
	query := `
		INSERT INTO reviews (target_id, user_id, user_name, rating, title,
		                     body, images, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, 'pending')
		RETURNING` + reviewColumns

	var rec Record
	err := r.db.GetContext(ctx, &rec, query,
		sub.TargetID,
		sub.UserID,
		sub.UserName,
		sub.Rating,
		sub.Title,
		sub.Body,
		Images(sub.Images),
	)
	if err != nil {
		return Review{}, fmt.Errorf("submit review: %w", err)
	}

	created, err := FromRecord(rec)
	if err != nil {
		return Review{}, fmt.Errorf("submit review: %w", err)
	}

	return created, nil
}

// PostHelpful increments the stored helpful count.
func (r *repository) PostHelpful(
	ctx context.Context,
	_ string,
	reviewID int64,
) error {
	query := `
		UPDATE reviews
		SET helpful_count = helpful_count + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "increment helpful", query, reviewID)
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id int64,
	status Status,
) error {
	query := `
		UPDATE reviews
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update review status", query, id, status)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
