package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Buyer struct {
	ID           string                      `json:"id" gorm:"type:uuid;primaryKey"`
	FullName     string                      `json:"fullName" gorm:"size:80;not null"`
	Email        string                      `json:"email" gorm:"size:255"`
	Phone        string                      `json:"phone" gorm:"size:15;not null;index"`
	City         string                      `json:"city" gorm:"size:32;not null;index"` // Chandigarh, Mohali, Zirakpur, Panchkula, Other
	PropertyType string                      `json:"propertyType" gorm:"size:32;not null;index"` // Apartment, Villa, Plot, Office, Retail
	BHK          string                      `json:"bhk" gorm:"size:8"` // 1, 2, 3, 4, Studio; only for Apartment/Villa
	Purpose      string                      `json:"purpose" gorm:"size:8;not null"` // Buy, Rent
	BudgetMin    *int                        `json:"budgetMin"`
	BudgetMax    *int                        `json:"budgetMax"`
	Timeline     string                      `json:"timeline" gorm:"size:16;not null;index"` // 0-3m, 3-6m, >6m, Exploring
	Source       string                      `json:"source" gorm:"size:16;not null"` // Website, Referral, Walk-in, Call, Other
	Status       string                      `json:"status" gorm:"size:16;not null;default:'New';index"` // New ... Dropped
	Notes        string                      `json:"notes" gorm:"type:text"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	OwnerID      string                      `json:"ownerId" gorm:"type:uuid;not null;index"`
	Owner        User                        `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt" gorm:"index"`
}

func (b *Buyer) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
