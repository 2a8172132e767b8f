package services_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"expeditions-service/config"
	"expeditions-service/models"
	"expeditions-service/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	alice = "0x00000000000000000000000000000000000a11ce"
	bob   = "0x0000000000000000000000000000000000000b0b"
)

// testDB creates a migrated SQLite database in a temp dir.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expeditions.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeLiquidity struct {
	mu       sync.Mutex
	deposits []services.LiquidityDeposit
	staking  []services.StakingDeposit
	err      error

	gotMinUSD decimal.Decimal
	gotStart  int64
	gotEnd    int64
}

func (f *fakeLiquidity) DepositsBetween(_ context.Context, _ string, minUSD decimal.Decimal, start, end int64) ([]services.LiquidityDeposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotMinUSD, f.gotStart, f.gotEnd = minUSD, start, end
	return f.deposits, f.err
}

func (f *fakeLiquidity) StakingDepositsBetween(_ context.Context, _ string, start, end int64) ([]services.StakingDeposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotStart, f.gotEnd = start, end
	return f.staking, f.err
}

func usd(v string) services.LiquidityDeposit {
	return services.LiquidityDeposit{AmountUSD: decimal.RequireFromString(v)}
}

type fixture struct {
	db        *gorm.DB
	clock     *clock
	liquidity *fakeLiquidity
	rules     config.Fragments

	campaigns *services.CampaignService
	weekly    *services.WeeklyFragmentsService
	daily     *services.DailyFragmentsService
	tasks     *services.TaskService
}

// newFixture wires every engine against one database and a clock frozen at now.
func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db := testDB(t)
	clk := newClock(now)
	liq := &fakeLiquidity{}
	rules := config.DefaultFragments
	log := zap.NewNop()

	campaigns := services.NewCampaignService(db, nil, log)
	campaigns.Now = clk.Now
	weekly := services.NewWeeklyFragmentsService(db, liq, rules, log)
	weekly.Now = clk.Now
	daily := services.NewDailyFragmentsService(db, rules, log)
	daily.Now = clk.Now
	tasks := services.NewTaskService(campaigns, weekly, daily)
	tasks.Now = clk.Now

	return &fixture{
		db:        db,
		clock:     clk,
		liquidity: liq,
		rules:     rules,
		campaigns: campaigns,
		weekly:    weekly,
		daily:     daily,
		tasks:     tasks,
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// addCampaign creates a campaign starting on the Monday start, earning for
// weeks and redeemable for redeemWeeks more.
func (f *fixture) addCampaign(t *testing.T, start string, weeks, redeemWeeks int) *models.Campaign {
	t.Helper()
	s := day(start)
	end := services.EndOfDay(s.AddDate(0, 0, 7*weeks-1))
	redeemEnd := services.EndOfDay(end.AddDate(0, 0, 7*redeemWeeks))
	c, err := f.campaigns.AddCampaign(context.Background(), alice, s, end, redeemEnd)
	require.NoError(t, err)
	return c
}
