package services

import (
	"context"
	"time"

	"expeditions-service/models"

	"golang.org/x/sync/errgroup"
)

type DailyVisitTask struct {
	DailyVisitFragments
	Type models.TaskType `json:"type"`
}

type WeeklyTask struct {
	WeeklyFragments
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Type      models.TaskType `json:"type"`
}

type ProgressTasks struct {
	DailyVisit         DailyVisitTask `json:"daily_visit"`
	LiquidityProvision WeeklyTask     `json:"liquidity_provision"`
	LiquidityStaking   WeeklyTask     `json:"liquidity_staking"`
}

// CampaignProgress is everything a client needs to render an address's
// standing in the active campaign.
type CampaignProgress struct {
	CampaignID       string          `json:"campaign_id"`
	ClaimedFragments int             `json:"claimed_fragments"`
	Tasks            ProgressTasks   `json:"tasks"`
	Rewards          []models.Reward `json:"rewards"`
}

type ProgressService struct {
	Tasks   *TaskService
	Rewards *RewardService
}

func NewProgressService(tasks *TaskService, rewards *RewardService) *ProgressService {
	return &ProgressService{Tasks: tasks, Rewards: rewards}
}

// GetCampaignProgress fails with ErrNoActiveCampaign when no campaign covers
// the current week. Viewing stays possible after the campaign's end date.
func (s *ProgressService) GetCampaignProgress(ctx context.Context, address string) (*CampaignProgress, error) {
	campaign, err := s.Tasks.Campaigns.ActiveCampaign(ctx)
	if err != nil {
		return nil, err
	}
	week := WeekContaining(s.Tasks.Weekly.Now())

	progress := &CampaignProgress{CampaignID: campaign.ID}
	progress.Tasks.LiquidityProvision = WeeklyTask{StartDate: week.StartDate, EndDate: week.EndDate, Type: models.TaskLiquidityProvision}
	progress.Tasks.LiquidityStaking = WeeklyTask{StartDate: week.StartDate, EndDate: week.EndDate, Type: models.TaskLiquidityStaking}
	progress.Tasks.DailyVisit.Type = models.TaskDailyVisit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.Tasks.TotalClaimedFragments(gctx, address, campaign.ID)
		progress.ClaimedFragments = total
		return err
	})
	g.Go(func() error {
		visit, err := s.Tasks.Daily.GetDailyVisitFragments(gctx, address, campaign.ID)
		progress.Tasks.DailyVisit.DailyVisitFragments = visit
		return err
	})
	g.Go(func() error {
		view, err := s.Tasks.Weekly.weeklyFragments(gctx, address, campaign.ID, models.TaskLiquidityProvision, week)
		progress.Tasks.LiquidityProvision.WeeklyFragments = view.WeeklyFragments
		return err
	})
	g.Go(func() error {
		view, err := s.Tasks.Weekly.weeklyFragments(gctx, address, campaign.ID, models.TaskLiquidityStaking, week)
		progress.Tasks.LiquidityStaking.WeeklyFragments = view.WeeklyFragments
		return err
	})
	g.Go(func() error {
		rewards, err := s.Rewards.ActiveRewards(gctx, campaign.ID)
		progress.Rewards = rewards
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return progress, nil
}
