// workers/snapshot_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"expeditions-service/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// ObjectStore is where standings snapshots are published.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Snapshot is the published JSON document.
type Snapshot struct {
	CampaignID  string              `json:"campaign_id"`
	Year        int                 `json:"year"`
	Week        int                 `json:"week"`
	GeneratedAt time.Time           `json:"generated_at"`
	Standings   []services.Standing `json:"standings"`
}

// SnapshotWorker exports the active campaign's standings every Monday at 00:05 UTC.
type SnapshotWorker struct {
	tasks *services.TaskService
	store ObjectStore
	log   *zap.Logger
	now   func() time.Time
}

func NewSnapshotWorker(tasks *services.TaskService, store ObjectStore, log *zap.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		tasks: tasks,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Start schedules the weekly export and stops the scheduler when ctx is done.
func (w *SnapshotWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.WeeklyJob(1,
			gocron.NewWeekdays(time.Monday),
			gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0)),
		),
		gocron.NewTask(func() {
			url, err := w.RunOnce(ctx)
			switch {
			case errors.Is(err, services.ErrNoActiveCampaign):
				w.log.Info("[SNAPSHOT] no active campaign, skipping")
			case err != nil:
				w.log.Error("[SNAPSHOT] export failed", zap.Error(err))
			default:
				w.log.Info("[SNAPSHOT] exported", zap.String("url", url))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule snapshot job: %w", err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			w.log.Warn("[SNAPSHOT] scheduler shutdown", zap.Error(err))
		}
		w.log.Info("[SNAPSHOT] worker stopped")
	}()
	return nil
}

// SnapshotKey is the object key for a campaign week.
func SnapshotKey(campaignID string, week services.WeekWindow) string {
	return fmt.Sprintf("snapshots/%s/%d-W%02d.json", campaignID, week.Year, week.WeekNumber)
}

// RunOnce exports the current standings and returns the public URL.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (string, error) {
	campaign, err := w.tasks.Campaigns.ActiveCampaign(ctx)
	if err != nil {
		return "", err
	}
	standings, err := w.tasks.Standings(ctx, campaign.ID)
	if err != nil {
		return "", err
	}

	now := w.now().UTC()
	week := services.WeekContaining(now)
	body, err := json.Marshal(Snapshot{
		CampaignID:  campaign.ID,
		Year:        week.Year,
		Week:        week.WeekNumber,
		GeneratedAt: now,
		Standings:   standings,
	})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	url, err := w.store.PutObject(ctx, SnapshotKey(campaign.ID, week), body, "application/json")
	if err != nil {
		return "", err
	}
	w.log.Debug("[SNAPSHOT] uploaded",
		zap.String("campaign_id", campaign.ID),
		zap.Int("addresses", len(standings)),
	)
	return url, nil
}
