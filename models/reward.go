package models

import (
	"time"

	"github.com/google/uuid"
	gorm "gorm.io/gorm"
)

// Rarity is the display tier of a reward NFT
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Reward is a catalog entry: an ERC1155 token redeemable for fragments.
type Reward struct {
	ID                string `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID        string `gorm:"type:uuid;not null;uniqueIndex:idx_reward_token,priority:1" json:"campaign_id"`
	NFTAddress        string `gorm:"size:42;not null" json:"nft_address"`
	TokenID           string `gorm:"not null;uniqueIndex:idx_reward_token,priority:2" json:"token_id"`
	Name              string `gorm:"not null" json:"name"`
	Description       string `gorm:"type:text" json:"description"`
	RequiredFragments int    `gorm:"not null;index" json:"required_fragments"`
	Rarity            Rarity `gorm:"size:16;not null" json:"rarity"`
	ImageURI          string `gorm:"type:text" json:"image_uri"`
	Timestamps
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RewardClaim stores the EIP-712 signature handed out for a reward so a repeated
// claim returns the same voucher instead of minting a second one.
type RewardClaim struct {
	ID                      string    `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID              string    `gorm:"type:uuid;not null;uniqueIndex:idx_reward_claim,priority:1" json:"campaign_id"`
	Receiver                string    `gorm:"size:42;not null;uniqueIndex:idx_reward_claim,priority:2" json:"receiver"`
	TokenID                 string    `gorm:"not null;uniqueIndex:idx_reward_claim,priority:3" json:"token_id"`
	TokenEmitterAddress     string    `gorm:"size:42;not null" json:"token_emitter_address"`
	DomainName              string    `gorm:"not null" json:"domain_name"`
	DomainVersion           string    `gorm:"not null" json:"domain_version"`
	DomainChainID           int64     `gorm:"not null" json:"domain_chain_id"`
	DomainVerifyingContract string    `gorm:"size:42;not null" json:"domain_verifying_contract"`
	ClaimSignature          string    `gorm:"type:text;not null" json:"claim_signature"`
	CreatedAt               time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (r *RewardClaim) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
