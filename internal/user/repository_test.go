// AngelaMos | 2026
// repository_test.go

package user

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

var userColumnNames = []string{
	"id", "email", "password_hash", "name", "role", "plan", "token_version",
	"created_at", "updated_at", "deleted_at",
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow("u-1", "ana@example.com", "hash", "Ana", "admin", "business", 2, now, now, nil))

	u, err := repo.GetByID(t.Context(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "business", u.Plan)
	assert.Equal(t, 2, u.TokenVersion)
	assert.True(t, u.IsElevated())

	mock.ExpectQuery(`FROM users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err = repo.GetByID(t.Context(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u-1", "ana@example.com", "hash", "Ana", "viewer", "basic").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(t.Context(), &User{
		ID:           "u-1",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		Name:         "Ana",
		Role:         "viewer",
		Plan:         "basic",
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateAccess(t *testing.T) {
	repo, mock := newMockRepo(t)
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE users\s+SET role = \$2, plan = \$3`).
		WithArgs("u-1", "viewer", "enterprise").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	u := &User{ID: "u-1", Role: "viewer", Plan: "enterprise"}
	require.NoError(t, repo.UpdateAccess(t.Context(), u))
	assert.Equal(t, updated, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IncrementTokenVersionMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`SET token_version = token_version \+ 1`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementTokenVersion(t.Context(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE deleted_at IS NULL AND \(email ILIKE \$1 OR name ILIKE \$1\) AND plan = \$2`).
		WithArgs(`%ana\_b%`, "pro").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`ORDER BY created_at DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(`%ana\_b%`, "pro", 20, 0).
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow("u-1", "ana_b@example.com", "hash", "Ana", "viewer", "pro", 0, now, now, nil))

	users, total, err := repo.List(t.Context(), ListUsersParams{Search: "ana_b", Plan: "pro"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u-1", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
