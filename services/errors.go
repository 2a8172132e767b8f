package services

import "errors"

// Business-rule outcomes. Anything not in this list is an infrastructure failure.
var (
	ErrInvalidDateFormat         = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidCampaignWindow     = errors.New("invalid campaign window")
	ErrOverlappingCampaign       = errors.New("campaign overlaps an existing campaign")
	ErrNoActiveCampaign          = errors.New("no active campaign")
	ErrCampaignEnded             = errors.New("campaign has ended")
	ErrInvalidSignature          = errors.New("invalid signature")
	ErrDailyVisitAlreadyRecorded = errors.New("daily visit already recorded")
	ErrNoClaimableFragments      = errors.New("no claimable fragments")
	ErrAlreadyClaimed            = errors.New("fragments already claimed")
	ErrUnknownTaskType           = errors.New("unknown task type")

	ErrUnauthorizedInitiator = errors.New("initiator is not allowed to add campaigns")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidTradeValue     = errors.New("trade value must be a non-negative number")
	ErrInsufficientFragments = errors.New("not enough fragments to claim reward")
	ErrRewardNotFound        = errors.New("reward not found")
	ErrRewardExists          = errors.New("reward already exists for this token")
	ErrInvalidRewardDef      = errors.New("invalid reward definition")
	ErrCampaignNotFound      = errors.New("campaign not found")
)
