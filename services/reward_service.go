// services/reward_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"expeditions-service/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardService struct {
	DB     *gorm.DB
	Tasks  *TaskService
	Signer ClaimSigner

	log *zap.Logger
}

// NewRewardService accepts a nil signer; claims then fail until one is configured.
func NewRewardService(db *gorm.DB, tasks *TaskService, signer ClaimSigner, log *zap.Logger) *RewardService {
	return &RewardService{
		DB:     db,
		Tasks:  tasks,
		Signer: signer,
		log:    log,
	}
}

// ActiveRewards lists the catalog of a campaign, cheapest first.
func (s *RewardService) ActiveRewards(ctx context.Context, campaignID string) ([]models.Reward, error) {
	rewards := []models.Reward{}
	if err := s.DB.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("required_fragments ASC, token_id ASC").
		Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("load rewards: %w", err)
	}
	return rewards, nil
}

// AddReward adds a catalog entry. TokenID must be a decimal integer.
func (s *RewardService) AddReward(ctx context.Context, reward *models.Reward) error {
	nft, err := NormalizeAddress(reward.NFTAddress)
	if err != nil {
		return fmt.Errorf("nft address: %w", err)
	}
	reward.NFTAddress = nft
	if _, ok := new(big.Int).SetString(reward.TokenID, 10); !ok {
		return fmt.Errorf("%w: token id must be numeric", ErrInvalidRewardDef)
	}
	if !reward.Rarity.Valid() {
		return fmt.Errorf("%w: unknown rarity %q", ErrInvalidRewardDef, reward.Rarity)
	}
	if reward.RequiredFragments < 0 || reward.Name == "" {
		return ErrInvalidRewardDef
	}

	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(reward)
	if res.Error != nil {
		return fmt.Errorf("insert reward: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRewardExists
	}
	return nil
}

type RewardClaimResult struct {
	ClaimSignature string `json:"claim_signature"`
	NFTAddress     string `json:"nft_address"`
	TokenID        string `json:"token_id"`
	ChainID        int64  `json:"chain_id"`
	Receiver       string `json:"receiver"`
}

func claimResult(c *models.RewardClaim) RewardClaimResult {
	return RewardClaimResult{
		ClaimSignature: c.ClaimSignature,
		NFTAddress:     c.TokenEmitterAddress,
		TokenID:        c.TokenID,
		ChainID:        c.DomainChainID,
		Receiver:       c.Receiver,
	}
}

func (s *RewardService) findClaim(ctx context.Context, campaignID, receiver, tokenID string) (*models.RewardClaim, error) {
	var claim models.RewardClaim
	err := s.DB.WithContext(ctx).
		Where("campaign_id = ? AND receiver = ? AND token_id = ?", campaignID, receiver, tokenID).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reward claim: %w", err)
	}
	return &claim, nil
}

// ClaimReward issues a mint voucher once the address holds enough fragments.
// A repeated claim returns the stored voucher.
func (s *RewardService) ClaimReward(ctx context.Context, address, campaignID, tokenID string) (RewardClaimResult, error) {
	var reward models.Reward
	err := s.DB.WithContext(ctx).
		Where("campaign_id = ? AND token_id = ?", campaignID, tokenID).
		First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RewardClaimResult{}, ErrRewardNotFound
	}
	if err != nil {
		return RewardClaimResult{}, fmt.Errorf("load reward: %w", err)
	}

	existing, err := s.findClaim(ctx, campaignID, address, tokenID)
	if err != nil {
		return RewardClaimResult{}, err
	}
	if existing != nil {
		return claimResult(existing), nil
	}

	balance, err := s.Tasks.TotalClaimedFragments(ctx, address, campaignID)
	if err != nil {
		return RewardClaimResult{}, err
	}
	if balance < reward.RequiredFragments {
		return RewardClaimResult{}, ErrInsufficientFragments
	}

	if s.Signer == nil {
		return RewardClaimResult{}, errClaimSignerDisabled
	}
	signature, err := s.Signer.SignClaim(address, tokenID)
	if err != nil {
		return RewardClaimResult{}, err
	}

	domain := s.Signer.Domain()
	claim := &models.RewardClaim{
		CampaignID:              campaignID,
		Receiver:                address,
		TokenID:                 tokenID,
		TokenEmitterAddress:     reward.NFTAddress,
		DomainName:              domain.Name,
		DomainVersion:           domain.Version,
		DomainChainID:           domain.ChainID,
		DomainVerifyingContract: domain.VerifyingContract,
		ClaimSignature:          signature,
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(claim)
	if res.Error != nil {
		return RewardClaimResult{}, fmt.Errorf("insert reward claim: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// A concurrent request stored its voucher first.
		existing, err := s.findClaim(ctx, campaignID, address, tokenID)
		if err != nil {
			return RewardClaimResult{}, err
		}
		if existing == nil {
			return RewardClaimResult{}, fmt.Errorf("reward claim vanished after conflict")
		}
		return claimResult(existing), nil
	}

	s.log.Info("reward claimed",
		zap.String("address", address),
		zap.String("campaign_id", campaignID),
		zap.String("token_id", tokenID),
		zap.Int("balance", balance),
	)
	return claimResult(claim), nil
}
