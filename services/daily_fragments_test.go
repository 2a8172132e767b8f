package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"expeditions-service/models"
	"expeditions-service/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyVisit_NeverVisited(t *testing.T) {
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	got, err := f.daily.GetDailyVisitFragments(context.Background(), alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), got.LastVisit)
	assert.Equal(t, time.Unix(0, 0).UTC(), got.NextVisit)
	assert.Zero(t, got.AllVisits)
	assert.Zero(t, got.Fragments)
}

func TestDailyVisit_Cooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	res, err := f.daily.ClaimDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskDailyVisit, res.Type)
	assert.Equal(t, 10, res.ClaimedFragments)

	got, err := f.daily.GetDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AllVisits)
	assert.Equal(t, 10, got.Fragments)
	assert.True(t, got.LastVisit.Equal(midWeek))
	assert.True(t, got.NextVisit.Equal(midWeek.Add(24*time.Hour)))

	// Crossing midnight is not enough, the cooldown is a rolling 24 hours.
	f.clock.Advance(23*time.Hour + 59*time.Minute)
	_, err = f.daily.ClaimDailyVisitFragments(ctx, alice, c.ID)
	assert.ErrorIs(t, err, services.ErrDailyVisitAlreadyRecorded)

	f.clock.Set(midWeek.Add(24*time.Hour + time.Millisecond))
	res, err = f.daily.ClaimDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, res.ClaimedFragments)

	got, err = f.daily.GetDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AllVisits)
	assert.Equal(t, 30, got.Fragments)
}

func TestDailyVisit_ConcurrentFirstClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.daily.ClaimDailyVisitFragments(ctx, alice, c.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrDailyVisitAlreadyRecorded)
	}
	assert.Equal(t, 1, succeeded)

	got, err := f.daily.GetDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AllVisits)
	assert.Equal(t, 10, got.Fragments)
}

func TestDailySwap_AwardOncePerDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	res, err := f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Zero(t, res.ClaimedFragments)
	assert.True(t, res.TotalTradeUSDValue.Equal(decimal.NewFromInt(30)))

	res, err = f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.Equal(t, f.rules.DailySwapsMultiplicand, res.ClaimedFragments)
	assert.True(t, res.TotalTradeUSDValue.Equal(decimal.NewFromInt(50)))

	f.clock.Advance(time.Hour)
	res, err = f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Zero(t, res.ClaimedFragments)
	assert.True(t, res.TotalTradeUSDValue.Equal(decimal.NewFromInt(1050)))

	// Next UTC day: one prior qualifying day doubles the award.
	f.clock.Set(services.StartOfDay(midWeek).AddDate(0, 0, 1))
	res, err = f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.Equal(t, 2*f.rules.DailySwapsMultiplicand, res.ClaimedFragments)
	assert.True(t, res.TotalTradeUSDValue.Equal(decimal.NewFromInt(60)))

	var days []models.DailySwap
	require.NoError(t, f.db.Where("address = ?", alice).Order("date").Find(&days).Error)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-01-15", days[0].Date)
	assert.Equal(t, 20, days[0].Fragments)
	assert.Equal(t, "2025-01-16", days[1].Date)
	assert.Equal(t, 40, days[1].Fragments)
}

func TestDailySwap_NonQualifyingDayDoesNotCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	_, err := f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	res, err := f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, f.rules.DailySwapsMultiplicand, res.ClaimedFragments)
}

func TestDailySwap_ConcurrentVolumeAwardsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	const workers = 6
	awarded := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(20))
			assert.NoError(t, err)
			awarded <- res.ClaimedFragments
		}()
	}
	wg.Wait()
	close(awarded)

	sum := 0
	for a := range awarded {
		sum += a
	}
	assert.Equal(t, f.rules.DailySwapsMultiplicand, sum)

	var today models.DailySwap
	require.NoError(t, f.db.Where("address = ? AND date = ?", alice, "2025-01-15").First(&today).Error)
	assert.True(t, today.TotalTradeUSDValue.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, f.rules.DailySwapsMultiplicand, today.Fragments)
}

func TestDailySwap_RejectsNegativeVolume(t *testing.T) {
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	_, err := f.daily.RegisterDailySwap(context.Background(), alice, c.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, services.ErrInvalidTradeValue)
}

func TestDailyFragments_Total(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, midWeek)
	c := f.addCampaign(t, "2025-01-06", 8, 2)

	total, err := f.daily.GetTotalClaimedFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = f.daily.ClaimDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	_, err = f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(75))
	require.NoError(t, err)
	f.clock.Advance(25 * time.Hour)
	_, err = f.daily.ClaimDailyVisitFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	_, err = f.daily.RegisterDailySwap(ctx, alice, c.ID, decimal.NewFromInt(75))
	require.NoError(t, err)

	total, err = f.daily.GetTotalClaimedFragments(ctx, alice, c.ID)
	require.NoError(t, err)
	// visits 10+20, swaps 20+40
	assert.Equal(t, 90, total)
}
