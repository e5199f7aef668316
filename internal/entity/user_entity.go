package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRoleDoctor  = "doctor"
	UserRolePatient = "patient"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
