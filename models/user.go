package models

import (
	"strings"
	"time"
)

// User is kept for data-model completeness; no route exposes it. Password
// holds a bcrypt hash.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewUser struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (in *NewUser) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
}
