package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WeeklyFragmentClaim records a granted weekly task. The composite unique index
// is what makes a weekly claim at-most-once.
type WeeklyFragmentClaim struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	Address    string    `gorm:"size:42;not null;uniqueIndex:idx_weekly_claim_period,priority:1" json:"address"`
	CampaignID string    `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_claim_period,priority:2" json:"campaign_id"`
	Week       int       `gorm:"not null;uniqueIndex:idx_weekly_claim_period,priority:3" json:"week"`
	Year       int       `gorm:"not null;uniqueIndex:idx_weekly_claim_period,priority:4" json:"year"`
	Type       TaskType  `gorm:"size:32;not null;uniqueIndex:idx_weekly_claim_period,priority:5" json:"type"`
	Fragments  int       `gorm:"not null" json:"fragments"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (w *WeeklyFragmentClaim) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Visit tracks daily-visit progress for one address in one campaign.
type Visit struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	Address    string     `gorm:"size:42;not null;uniqueIndex:idx_visit_owner,priority:1" json:"address"`
	CampaignID string     `gorm:"type:uuid;not null;uniqueIndex:idx_visit_owner,priority:2" json:"campaign_id"`
	LastVisit  *time.Time `json:"last_visit"`
	AllVisits  int        `gorm:"not null;default:0" json:"all_visits"`
	Fragments  int        `gorm:"not null;default:0" json:"fragments"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// LastVisitAt returns the last visit, or the Unix epoch when the address never visited.
func (v *Visit) LastVisitAt() time.Time {
	if v == nil || v.LastVisit == nil {
		return time.Unix(0, 0).UTC()
	}
	return v.LastVisit.UTC()
}

// DailySwap accumulates one UTC day of swap volume. Date is formatted YYYY-MM-DD.
type DailySwap struct {
	ID                 string          `gorm:"primaryKey;type:uuid" json:"id"`
	Address            string          `gorm:"size:42;not null;uniqueIndex:idx_daily_swap_day,priority:1" json:"address"`
	CampaignID         string          `gorm:"type:uuid;not null;uniqueIndex:idx_daily_swap_day,priority:2" json:"campaign_id"`
	Date               string          `gorm:"size:10;not null;uniqueIndex:idx_daily_swap_day,priority:3" json:"date"`
	Fragments          int             `gorm:"not null;default:0" json:"fragments"`
	TotalTradeUSDValue decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"total_trade_usd_value"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (d *DailySwap) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
