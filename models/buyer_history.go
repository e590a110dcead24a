package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BuyerHistory is an append-only audit entry. Diff holds a JSON object
// mapping each changed field to its {old, new} pair; creation events use
// the synthetic keys "created" and "imported". Rows are never updated.
type BuyerHistory struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	BuyerID   string         `json:"buyerId" gorm:"type:uuid;not null;index"`
	Buyer     Buyer          `json:"-" gorm:"foreignKey:BuyerID;references:ID;constraint:OnDelete:CASCADE"`
	ChangedBy string         `json:"changedBy" gorm:"type:uuid;not null"`
	Diff      datatypes.JSON `json:"diff" gorm:"not null"`
	ChangedAt time.Time      `json:"changedAt" gorm:"autoCreateTime;index"`
}

func (h *BuyerHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
