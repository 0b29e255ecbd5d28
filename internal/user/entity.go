// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	Plan         string     `db:"plan"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

// Viewer is the entitlement view of the stored role and plan. Unknown values
// collapse to the least privileged role and plan.
func (u *User) Viewer() entitlement.Viewer {
	return entitlement.NewViewer(u.Role, u.Plan)
}

func (u *User) IsElevated() bool {
	return u.Viewer().Role.Elevated()
}
