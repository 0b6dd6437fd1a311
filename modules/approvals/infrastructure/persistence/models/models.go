package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID        uuid.UUID
	Name      string
	TaxID     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Request struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	UserID         uuid.UUID
	CategoryID     uuid.UUID
	Title          string
	Description    *string
	Status         string
	RejectedReason *string
	SubmittedAt    *time.Time
	DecidedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Comment struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	RequestID uuid.UUID
	UserID    uuid.UUID
	Body      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
