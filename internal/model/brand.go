package model

import (
	"time"

	"github.com/google/uuid"
)

// Brand is an optional manufacturer reference on products. Deleting a brand
// nulls the reference on its products.
type Brand struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"size:100;uniqueIndex;not null"`
	Slug           string    `gorm:"size:100;uniqueIndex;not null"`
	Image          *string
	TargetAudience string `gorm:"size:20;not null;default:'GENERAL'"`
	CreatedAt      time.Time
}
