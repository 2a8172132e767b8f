package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expeditions-service/config"
	"expeditions-service/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisitCooldown is the rolling wait between two daily-visit claims.
const VisitCooldown = 24 * time.Hour

type DailyVisitFragments struct {
	AllVisits int       `json:"all_visits"`
	LastVisit time.Time `json:"last_visit"`
	NextVisit time.Time `json:"next_visit"`
	Fragments int       `json:"fragments"`
}

type DailySwapResult struct {
	ClaimedFragments   int             `json:"claimed_fragments"`
	TotalTradeUSDValue decimal.Decimal `json:"total_trade_usd_value"`
}

type DailyFragmentsService struct {
	DB    *gorm.DB
	Rules config.Fragments
	Now   func() time.Time

	log *zap.Logger
}

func NewDailyFragmentsService(db *gorm.DB, rules config.Fragments, log *zap.Logger) *DailyFragmentsService {
	return &DailyFragmentsService{
		DB:    db,
		Rules: rules,
		Now:   time.Now,
		log:   log,
	}
}

// findVisit returns nil without error when the address never visited.
func (s *DailyFragmentsService) findVisit(ctx context.Context, address, campaignID string) (*models.Visit, error) {
	var visit models.Visit
	err := s.DB.WithContext(ctx).
		Where("address = ? AND campaign_id = ?", address, campaignID).
		First(&visit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load visit: %w", err)
	}
	return &visit, nil
}

func (s *DailyFragmentsService) GetDailyVisitFragments(ctx context.Context, address, campaignID string) (DailyVisitFragments, error) {
	visit, err := s.findVisit(ctx, address, campaignID)
	if err != nil {
		return DailyVisitFragments{}, err
	}

	out := DailyVisitFragments{
		LastVisit: visit.LastVisitAt(),
		NextVisit: time.Unix(0, 0).UTC(),
	}
	if visit != nil {
		out.AllVisits = visit.AllVisits
		out.Fragments = visit.Fragments
		if visit.LastVisit != nil {
			out.NextVisit = visit.LastVisitAt().Add(VisitCooldown)
		}
	}
	return out, nil
}

// ClaimDailyVisitFragments records a visit at most once per rolling 24 hours.
// Writes are conditional on the visit count that was read, so a concurrent
// claim loses with ErrDailyVisitAlreadyRecorded.
func (s *DailyFragmentsService) ClaimDailyVisitFragments(ctx context.Context, address, campaignID string) (ClaimResult, error) {
	now := s.Now().UTC()

	visit, err := s.findVisit(ctx, address, campaignID)
	if err != nil {
		return ClaimResult{}, err
	}
	if now.Sub(visit.LastVisitAt()) < VisitCooldown {
		return ClaimResult{}, ErrDailyVisitAlreadyRecorded
	}

	var accrual Accrual
	if visit == nil {
		accrual = Accrue(0, 0, s.Rules.DailyVisitMultiplicand)
		res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Visit{
			Address:    address,
			CampaignID: campaignID,
			LastVisit:  &now,
			AllVisits:  1,
			Fragments:  accrual.Total,
		})
		if res.Error != nil {
			return ClaimResult{}, fmt.Errorf("insert visit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ClaimResult{}, ErrDailyVisitAlreadyRecorded
		}
	} else {
		accrual = Accrue(visit.Fragments, visit.AllVisits, s.Rules.DailyVisitMultiplicand)
		res := s.DB.WithContext(ctx).
			Model(&models.Visit{}).
			Where("id = ? AND all_visits = ?", visit.ID, visit.AllVisits).
			Updates(map[string]any{
				"all_visits": visit.AllVisits + 1,
				"fragments":  accrual.Total,
				"last_visit": now,
			})
		if res.Error != nil {
			return ClaimResult{}, fmt.Errorf("update visit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ClaimResult{}, ErrDailyVisitAlreadyRecorded
		}
	}

	s.log.Info("daily visit claimed",
		zap.String("address", address),
		zap.String("campaign_id", campaignID),
		zap.Int("fragments", accrual.Claimed),
	)
	return ClaimResult{Type: models.TaskDailyVisit, ClaimedFragments: accrual.Claimed}, nil
}

// RegisterDailySwap adds trade volume to today's record and awards fragments
// the first time the day's volume reaches the threshold. ClaimedFragments is
// what this call awarded, zero when nothing was awarded.
func (s *DailyFragmentsService) RegisterDailySwap(ctx context.Context, address, campaignID string, tradeUSDValue decimal.Decimal) (DailySwapResult, error) {
	if tradeUSDValue.IsNegative() {
		return DailySwapResult{}, ErrInvalidTradeValue
	}
	today := StartOfDay(s.Now()).Format(dateLayout)

	var day models.DailySwap
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DailySwap{
			Address:            address,
			CampaignID:         campaignID,
			Date:               today,
			TotalTradeUSDValue: decimal.Zero,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DailySwap{}).
			Where("address = ? AND campaign_id = ? AND date = ?", address, campaignID, today).
			Update("total_trade_usd_value", gorm.Expr("total_trade_usd_value + ?", tradeUSDValue)).Error; err != nil {
			return err
		}
		return tx.Where("address = ? AND campaign_id = ? AND date = ?", address, campaignID, today).
			First(&day).Error
	})
	if err != nil {
		return DailySwapResult{}, fmt.Errorf("record daily swap: %w", err)
	}

	out := DailySwapResult{TotalTradeUSDValue: day.TotalTradeUSDValue}
	if day.Fragments > 0 || day.TotalTradeUSDValue.LessThan(s.Rules.DailySwapsMinUSD) {
		return out, nil
	}

	var completions int64
	if err := s.DB.WithContext(ctx).
		Model(&models.DailySwap{}).
		Where("address = ? AND campaign_id = ? AND date < ? AND fragments > 0", address, campaignID, today).
		Count(&completions).Error; err != nil {
		return DailySwapResult{}, fmt.Errorf("count swap days: %w", err)
	}

	// Each day stands alone; only the count of earlier qualifying days grows the award.
	accrual := Accrue(0, int(completions), s.Rules.DailySwapsMultiplicand)
	res := s.DB.WithContext(ctx).
		Model(&models.DailySwap{}).
		Where("id = ? AND fragments = 0", day.ID).
		Update("fragments", accrual.Claimed)
	if res.Error != nil {
		return DailySwapResult{}, fmt.Errorf("award swap fragments: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		out.ClaimedFragments = accrual.Claimed
		s.log.Info("daily swap fragments awarded",
			zap.String("address", address),
			zap.String("campaign_id", campaignID),
			zap.String("date", today),
			zap.Int("fragments", accrual.Claimed),
		)
	}
	return out, nil
}

// GetTotalClaimedFragments sums visit fragments and every day's swap fragments.
func (s *DailyFragmentsService) GetTotalClaimedFragments(ctx context.Context, address, campaignID string) (int, error) {
	visit, err := s.findVisit(ctx, address, campaignID)
	if err != nil {
		return 0, err
	}

	var swaps int64
	if err := s.DB.WithContext(ctx).
		Model(&models.DailySwap{}).
		Where("address = ? AND campaign_id = ?", address, campaignID).
		Select("COALESCE(SUM(fragments), 0)").
		Scan(&swaps).Error; err != nil {
		return 0, fmt.Errorf("sum swap fragments: %w", err)
	}

	total := int(swaps)
	if visit != nil {
		total += visit.Fragments
	}
	return total, nil
}
