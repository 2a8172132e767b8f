package services_test

import (
	"context"
	"testing"
	"time"

	"expeditions-service/models"
	"expeditions-service/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_ClaimDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	f.addCampaign(t, "2025-01-06", 8, 2)
	f.liquidity.deposits = []services.LiquidityDeposit{usd("60")}
	f.liquidity.staking = []services.StakingDeposit{{
		Amount: decimal.NewFromInt(1), PairTotalSupply: decimal.NewFromInt(1), PairReserveUSD: decimal.NewFromInt(60),
	}}

	for _, task := range []models.TaskType{models.TaskDailyVisit, models.TaskLiquidityProvision, models.TaskLiquidityStaking} {
		t.Run(string(task), func(t *testing.T) {
			res, err := f.tasks.Claim(ctx, alice, task)
			require.NoError(t, err)
			assert.Equal(t, task, res.Type)
			assert.Positive(t, res.ClaimedFragments)
		})
	}

	t.Run("swaps are not claimable", func(t *testing.T) {
		_, err := f.tasks.Claim(ctx, alice, models.TaskDailySwaps)
		assert.ErrorIs(t, err, services.ErrUnknownTaskType)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := f.tasks.Claim(ctx, alice, models.TaskType("VISIT_TWICE"))
		assert.ErrorIs(t, err, services.ErrUnknownTaskType)
	})
}

func TestTaskService_NoActiveCampaign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)

	_, err := f.tasks.Claim(ctx, alice, models.TaskDailyVisit)
	assert.ErrorIs(t, err, services.ErrNoActiveCampaign)

	_, err = f.tasks.RegisterDailySwap(ctx, alice, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, services.ErrNoActiveCampaign)
}

func TestTaskService_CampaignEnded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day("2025-01-08"))
	f.addCampaign(t, "2025-01-06", 2, 2) // ends 2025-01-19, redeemable until 2025-02-02

	_, err := f.tasks.Claim(ctx, alice, models.TaskDailyVisit)
	require.NoError(t, err)

	f.clock.Set(time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC))
	_, err = f.campaigns.ActiveCampaign(ctx)
	require.NoError(t, err, "campaign stays active through its redeem window")

	_, err = f.tasks.Claim(ctx, alice, models.TaskDailyVisit)
	assert.ErrorIs(t, err, services.ErrCampaignEnded)

	_, err = f.tasks.RegisterDailySwap(ctx, alice, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, services.ErrCampaignEnded)
}

func TestTaskService_TotalsAndStandings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)
	f.liquidity.deposits = []services.LiquidityDeposit{usd("60")}

	_, err := f.tasks.Claim(ctx, alice, models.TaskLiquidityProvision)
	require.NoError(t, err)
	_, err = f.tasks.Claim(ctx, alice, models.TaskDailyVisit)
	require.NoError(t, err)
	_, err = f.tasks.RegisterDailySwap(ctx, alice, decimal.NewFromInt(50))
	require.NoError(t, err)
	_, err = f.tasks.Claim(ctx, bob, models.TaskDailyVisit)
	require.NoError(t, err)
	_, err = f.tasks.RegisterDailySwap(ctx, bob, decimal.NewFromInt(5))
	require.NoError(t, err)

	total, err := f.tasks.TotalClaimedFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 50+10+20, total)

	standings, err := f.tasks.Standings(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []services.Standing{
		{Address: alice, Fragments: 80},
		{Address: bob, Fragments: 10},
	}, standings)
}
