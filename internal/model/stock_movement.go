package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovementSale        = "sale"
	MovementSaleDeleted = "sale_deleted"
	MovementAdjustment  = "adjustment"
)

// StockMovement records every change of a product's stock count. It is written
// in the same transaction as the change itself.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"not null"` // sale | sale_deleted | adjustment
	Quantity    int        `gorm:"not null"` // positive = in, negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string     `gorm:"not null;default:''"`
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
