package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign is a time-boxed season. Fragments are earned between StartDate and
// EndDate and can be redeemed until RedeemEndDate.
type Campaign struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	StartDate        time.Time `gorm:"not null;index" json:"start_date"`
	EndDate          time.Time `gorm:"not null" json:"end_date"`
	RedeemEndDate    time.Time `gorm:"not null;index" json:"redeem_end_date"`
	InitiatorAddress string    `gorm:"size:42;not null" json:"initiator_address"`
	Timestamps
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
