package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expeditions-service/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CampaignService struct {
	DB  *gorm.DB
	Now func() time.Time

	admins map[string]struct{}
	log    *zap.Logger
}

// NewCampaignService restricts AddCampaign to admins when the list is non-empty.
func NewCampaignService(db *gorm.DB, admins []string, log *zap.Logger) *CampaignService {
	allowed := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		if addr, err := NormalizeAddress(a); err == nil {
			allowed[addr] = struct{}{}
		}
	}
	return &CampaignService{
		DB:     db,
		Now:    time.Now,
		admins: allowed,
		log:    log,
	}
}

// ValidateWindow checks the calendar shape of a campaign.
func ValidateWindow(start, end, redeemEnd time.Time) error {
	start, end, redeemEnd = start.UTC(), end.UTC(), redeemEnd.UTC()
	switch {
	case start.Weekday() != time.Monday:
		return fmt.Errorf("%w: start date must be a Monday", ErrInvalidCampaignWindow)
	case end.Weekday() != time.Sunday:
		return fmt.Errorf("%w: end date must be a Sunday", ErrInvalidCampaignWindow)
	case end.Before(start):
		return fmt.Errorf("%w: end date is before start date", ErrInvalidCampaignWindow)
	case redeemEnd.Before(end):
		return fmt.Errorf("%w: redeem end date is before end date", ErrInvalidCampaignWindow)
	}
	return nil
}

// AddCampaign schedules a campaign. The window is validated before overlap is
// checked, and the overlap check and insert share one transaction.
func (s *CampaignService) AddCampaign(ctx context.Context, initiator string, start, end, redeemEnd time.Time) (*models.Campaign, error) {
	initiator, err := NormalizeAddress(initiator)
	if err != nil {
		return nil, err
	}
	if len(s.admins) > 0 {
		if _, ok := s.admins[initiator]; !ok {
			return nil, ErrUnauthorizedInitiator
		}
	}
	if err := ValidateWindow(start, end, redeemEnd); err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		StartDate:        start.UTC(),
		EndDate:          end.UTC(),
		RedeemEndDate:    redeemEnd.UTC(),
		InitiatorAddress: initiator,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE campaigns IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var overlapping int64
		if err := tx.Model(&models.Campaign{}).
			Where(`((start_date >= ? AND redeem_end_date <= ?)
				OR (redeem_end_date >= ? AND redeem_end_date <= ?)
				OR (start_date >= ? AND start_date <= ?)
				OR (start_date <= ? AND redeem_end_date >= ?))`,
				campaign.StartDate, campaign.RedeemEndDate,
				campaign.StartDate, campaign.RedeemEndDate,
				campaign.StartDate, campaign.RedeemEndDate,
				campaign.StartDate, campaign.RedeemEndDate,
			).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrOverlappingCampaign
		}

		return tx.Create(campaign).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("campaign added",
		zap.String("campaign_id", campaign.ID),
		zap.String("initiator", initiator),
		zap.Time("start_date", campaign.StartDate),
		zap.Time("redeem_end_date", campaign.RedeemEndDate),
	)
	return campaign, nil
}

// ActiveCampaign returns the campaign covering the whole current week. It stays
// active through its redeem window.
func (s *CampaignService) ActiveCampaign(ctx context.Context) (*models.Campaign, error) {
	week := WeekContaining(s.Now())

	var campaign models.Campaign
	err := s.DB.WithContext(ctx).
		Where("start_date <= ? AND redeem_end_date >= ?", week.StartDate, week.EndDate).
		Order("start_date DESC").
		First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveCampaign
	}
	if err != nil {
		return nil, fmt.Errorf("find active campaign: %w", err)
	}
	return &campaign, nil
}

func (s *CampaignService) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := s.DB.WithContext(ctx).Order("start_date ASC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// DeleteCampaign soft-deletes a campaign, freeing its window.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Campaign{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	s.log.Info("campaign deleted", zap.String("campaign_id", id))
	return nil
}
