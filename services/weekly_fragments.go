package services

import (
	"context"
	"fmt"
	"time"

	"expeditions-service/config"
	"expeditions-service/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WeeklyFragments is the current-week view of a weekly liquidity task.
type WeeklyFragments struct {
	TotalAmountUSD     decimal.Decimal `json:"total_amount_usd"`
	ClaimableFragments int             `json:"claimable_fragments"`
	ClaimedFragments   int             `json:"claimed_fragments"`
}

type ClaimResult struct {
	Type             models.TaskType `json:"type"`
	ClaimedFragments int             `json:"claimed_fragments"`
}

type WeeklyFragmentsService struct {
	DB        *gorm.DB
	Liquidity LiquiditySource
	Rules     config.Fragments
	Now       func() time.Time

	log *zap.Logger
}

func NewWeeklyFragmentsService(db *gorm.DB, liquidity LiquiditySource, rules config.Fragments, log *zap.Logger) *WeeklyFragmentsService {
	return &WeeklyFragmentsService{
		DB:        db,
		Liquidity: liquidity,
		Rules:     rules,
		Now:       time.Now,
		log:       log,
	}
}

type weeklyView struct {
	WeeklyFragments
	claimedThisWeek bool
}

func (s *WeeklyFragmentsService) GetWeeklyFragments(ctx context.Context, address, campaignID string, task models.TaskType) (WeeklyFragments, error) {
	view, err := s.weeklyFragments(ctx, address, campaignID, task, WeekContaining(s.Now()))
	if err != nil {
		return WeeklyFragments{}, err
	}
	return view.WeeklyFragments, nil
}

func (s *WeeklyFragmentsService) weeklyFragments(ctx context.Context, address, campaignID string, task models.TaskType, week WeekWindow) (weeklyView, error) {
	if !task.IsWeekly() {
		return weeklyView{}, fmt.Errorf("%w: %s", ErrUnknownTaskType, task)
	}

	var claims []models.WeeklyFragmentClaim
	if err := s.DB.WithContext(ctx).
		Where("address = ? AND campaign_id = ? AND type = ?", address, campaignID, task).
		Find(&claims).Error; err != nil {
		return weeklyView{}, fmt.Errorf("load weekly claims: %w", err)
	}

	var view weeklyView
	history := make([]WeekRef, 0, len(claims))
	for _, c := range claims {
		history = append(history, WeekRef{Week: c.Week, Year: c.Year})
		if c.Week == week.WeekNumber && c.Year == week.Year {
			view.ClaimedFragments = c.Fragments
			view.claimedThisWeek = true
		}
	}

	total, err := s.usdValue(ctx, address, task, week)
	if err != nil {
		return weeklyView{}, err
	}
	view.TotalAmountUSD = total

	if !view.claimedThisWeek && total.GreaterThanOrEqual(s.Rules.AddLiquidityMinUSD) {
		view.ClaimableFragments = s.Rules.PerWeek + StreakBonus(history, week, s.Rules.PastWeekAdditional)
	}
	return view, nil
}

func (s *WeeklyFragmentsService) usdValue(ctx context.Context, address string, task models.TaskType, week WeekWindow) (decimal.Decimal, error) {
	start, end := week.StartDate.Unix(), week.EndDate.Unix()

	switch task {
	case models.TaskLiquidityProvision:
		deposits, err := s.Liquidity.DepositsBetween(ctx, address, s.Rules.AddLiquidityMinUSD, start, end)
		if err != nil {
			return decimal.Zero, fmt.Errorf("liquidity deposits: %w", err)
		}
		return SumDepositsUSD(deposits), nil
	case models.TaskLiquidityStaking:
		deposits, err := s.Liquidity.StakingDepositsBetween(ctx, address, start, end)
		if err != nil {
			return decimal.Zero, fmt.Errorf("staking deposits: %w", err)
		}
		return SumStakingUSD(deposits), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTaskType, task)
	}
}

// ClaimWeeklyFragments grants the current week's fragments once. The unique
// index on the claim table decides concurrent claims.
func (s *WeeklyFragmentsService) ClaimWeeklyFragments(ctx context.Context, address, campaignID string, task models.TaskType) (ClaimResult, error) {
	week := WeekContaining(s.Now())

	view, err := s.weeklyFragments(ctx, address, campaignID, task, week)
	if err != nil {
		return ClaimResult{}, err
	}
	if view.claimedThisWeek {
		return ClaimResult{}, ErrAlreadyClaimed
	}
	if view.ClaimableFragments == 0 {
		return ClaimResult{}, ErrNoClaimableFragments
	}

	claim := models.WeeklyFragmentClaim{
		Address:    address,
		CampaignID: campaignID,
		Week:       week.WeekNumber,
		Year:       week.Year,
		Type:       task,
		Fragments:  view.ClaimableFragments,
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
	if res.Error != nil {
		return ClaimResult{}, fmt.Errorf("insert weekly claim: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ClaimResult{}, ErrAlreadyClaimed
	}

	s.log.Info("weekly fragments claimed",
		zap.String("address", address),
		zap.String("campaign_id", campaignID),
		zap.String("type", string(task)),
		zap.Int("week", week.WeekNumber),
		zap.Int("year", week.Year),
		zap.Int("fragments", claim.Fragments),
	)
	return ClaimResult{Type: task, ClaimedFragments: claim.Fragments}, nil
}

// GetTotalClaimedFragments sums every weekly claim of the address in the campaign.
func (s *WeeklyFragmentsService) GetTotalClaimedFragments(ctx context.Context, address, campaignID string) (int, error) {
	var total int64
	if err := s.DB.WithContext(ctx).
		Model(&models.WeeklyFragmentClaim{}).
		Where("address = ? AND campaign_id = ?", address, campaignID).
		Select("COALESCE(SUM(fragments), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum weekly claims: %w", err)
	}
	return int(total), nil
}
