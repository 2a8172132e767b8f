package services

import (
	"context"
	"fmt"
	"time"

	"expeditions-service/models"

	"github.com/shopspring/decimal"
)

// TaskService resolves the active campaign and routes a claim to the engine
// that owns the task type.
type TaskService struct {
	Campaigns *CampaignService
	Weekly    *WeeklyFragmentsService
	Daily     *DailyFragmentsService
	Now       func() time.Time
}

func NewTaskService(campaigns *CampaignService, weekly *WeeklyFragmentsService, daily *DailyFragmentsService) *TaskService {
	return &TaskService{
		Campaigns: campaigns,
		Weekly:    weekly,
		Daily:     daily,
		Now:       time.Now,
	}
}

// claimableCampaign returns the active campaign if tasks can still be completed in it.
func (s *TaskService) claimableCampaign(ctx context.Context) (*models.Campaign, error) {
	campaign, err := s.Campaigns.ActiveCampaign(ctx)
	if err != nil {
		return nil, err
	}
	if s.Now().After(campaign.EndDate) {
		return nil, ErrCampaignEnded
	}
	return campaign, nil
}

func (s *TaskService) Claim(ctx context.Context, address string, task models.TaskType) (ClaimResult, error) {
	campaign, err := s.claimableCampaign(ctx)
	if err != nil {
		return ClaimResult{}, err
	}

	switch task {
	case models.TaskDailyVisit:
		return s.Daily.ClaimDailyVisitFragments(ctx, address, campaign.ID)
	case models.TaskLiquidityProvision, models.TaskLiquidityStaking:
		return s.Weekly.ClaimWeeklyFragments(ctx, address, campaign.ID, task)
	case models.TaskDailySwaps:
		return ClaimResult{}, fmt.Errorf("%w: %s is awarded when swaps are registered", ErrUnknownTaskType, task)
	default:
		return ClaimResult{}, fmt.Errorf("%w: %q", ErrUnknownTaskType, task)
	}
}

func (s *TaskService) RegisterDailySwap(ctx context.Context, address string, tradeUSDValue decimal.Decimal) (DailySwapResult, error) {
	campaign, err := s.claimableCampaign(ctx)
	if err != nil {
		return DailySwapResult{}, err
	}
	return s.Daily.RegisterDailySwap(ctx, address, campaign.ID, tradeUSDValue)
}

// TotalClaimedFragments is the lifetime fragment balance of address in a campaign.
func (s *TaskService) TotalClaimedFragments(ctx context.Context, address, campaignID string) (int, error) {
	weekly, err := s.Weekly.GetTotalClaimedFragments(ctx, address, campaignID)
	if err != nil {
		return 0, err
	}
	daily, err := s.Daily.GetTotalClaimedFragments(ctx, address, campaignID)
	if err != nil {
		return 0, err
	}
	return weekly + daily, nil
}
