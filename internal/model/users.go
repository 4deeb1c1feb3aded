package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	APIKey   string    `json:"api_key"`
}

type UserDB struct {
	ID        uuid.UUID
	Username  string
	Password  string
	Role      Role
	APIKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u UserDB) ToUser() User {
	return User{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		APIKey:   u.APIKey,
	}
}
