// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

type Repository interface {
	Source
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) FetchCatalog(ctx context.Context) ([]Resource, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	return FromRecords(records), nil
}

func (r *repository) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, title, description, category, type, url,
		       status, priority, plan_required, position
		FROM resources
		ORDER BY position, id`

	var records []Record
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return records, nil
}

func (r *repository) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO resources (id, title, description, category, type, url,
		                       status, priority, plan_required, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		        (SELECT COALESCE(MAX(position), 0) + 1 FROM resources))
		RETURNING position`

	err := r.db.GetContext(ctx, &rec.Position, query,
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Category,
		rec.Type,
		rec.URL,
		rec.Status,
		rec.Priority,
		rec.PlanRequired,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create resource: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create resource: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete resource: %w", core.ErrNotFound)
	}

	return nil
}
