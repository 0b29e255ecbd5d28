// AngelaMos | 2026
// repository_test.go

package review

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var recordColumns = []string{
	"id", "target_id", "user_id", "user_name", "rating", "title",
	"body", "images", "verified_purchase", "helpful_count", "created_at", "status",
}

func TestRepository_FetchReviews(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY helpful_count DESC, id`).
		WithArgs("sku-1", 0, true, 20).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(1, "sku-1", "u1", "Ana", 5, "Great", "Works", []byte(`["https://img/1.png"]`), true, 3, at, "approved").
			AddRow(2, "sku-1", "u2", "Bo", 9, "", "Broken row", nil, true, 0, at, "approved"))

	reviews, err := repo.FetchReviews(t.Context(), ListParams{
		TargetID:     "sku-1",
		Rating:       7,
		Sort:         SortHelpful,
		VerifiedOnly: true,
		Limit:        20,
	})
	require.NoError(t, err)

	require.Len(t, reviews, 1)
	assert.Equal(t, int64(1), reviews[0].ID)
	assert.Equal(t, []string{"https://img/1.png"}, reviews[0].Images)
	assert.Equal(t, StatusApproved, reviews[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SubmitReview(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs("sku-1", "u3", "Cy", 4, "", "Solid", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(17, "sku-1", "u3", "Cy", 4, "", "Solid", []byte(`[]`), false, 0, at, "pending"))

	created, err := repo.SubmitReview(t.Context(), Submission{
		TargetID: "sku-1",
		UserID:   "u3",
		UserName: "Cy",
		Rating:   4,
		Body:     "Solid",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(17), created.ID)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, at, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PostHelpful(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`SET helpful_count = helpful_count \+ 1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET helpful_count = helpful_count \+ 1`).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.PostHelpful(t.Context(), "u1", 1))
	assert.ErrorIs(t, repo.PostHelpful(t.Context(), "u1", 404), core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE reviews`).
		WithArgs(int64(5), "rejected").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(t.Context(), 5, StatusRejected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImages_Scan(t *testing.T) {
	var im Images
	require.NoError(t, im.Scan(`["a","b"]`))
	assert.Equal(t, Images{"a", "b"}, im)

	require.NoError(t, im.Scan(nil))
	assert.Nil(t, im)

	assert.Error(t, im.Scan(42))

	v, err := Images(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
