package usecase

import (
	"time"

	"github.com/stone-realestate/leadops/internal/entity"
)

// Session is created at login and removed at logout. Everything that talks
// to the backend on behalf of a user receives it explicitly.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	User      entity.Identity `json:"user"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s Session) Actor() string {
	return s.User.Actor()
}
