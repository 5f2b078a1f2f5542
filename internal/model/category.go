package model

import (
	"time"

	"github.com/google/uuid"
)

// Target audiences shared by categories, brands and products.
const (
	AudienceStudent      = "STUDENT"
	AudienceProfessional = "PROFESSIONAL"
	AudienceGeneral      = "GENERAL"
)

// Category groups products. Slug is generated once from Name and then frozen.
type Category struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"size:100;uniqueIndex;not null"`
	Slug           string    `gorm:"size:100;uniqueIndex;not null"`
	Description    string    `gorm:"type:text;not null;default:''"`
	TargetAudience string    `gorm:"size:20;not null;default:'GENERAL'"`
	CreatedAt      time.Time
}

// TableName pins the table name used by the SQL migrations.
func (Category) TableName() string { return "categories" }
