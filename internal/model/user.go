package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the owner identity every tracked entity is scoped to.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Email    *string   `gorm:"type:text" json:"email,omitempty"`
	Password string    `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
}

// BeforeCreate assigns an id before the insert runs.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func init() {
	MigrateAble = append(MigrateAble, &User{})
}
