package wager

// Event types, one per state transition.
const (
	EventTypeGameCreated         = "GameCreated"
	EventTypeGameJoined          = "GameJoined"
	EventTypeMoveSubmitted       = "MoveSubmitted"
	EventTypeDecryptionRequested = "DecryptionRequested"
	EventTypeDecryptionCompleted = "DecryptionCompleted"
	EventTypeGameResolved        = "GameResolved"
	EventTypeGameExpired         = "GameExpired"
	EventTypePayoutCredited      = "PayoutCredited"
	EventTypeRefundCredited      = "RefundCredited"
	EventTypeWithdrawn           = "Withdrawn"
	EventTypeFeesWithdrawn       = "FeesWithdrawn"

	EventTypeFeeRateChanged       = "FeeRateChanged"
	EventTypeFeeRecipientChanged  = "FeeRecipientChanged"
	EventTypeStakeBoundsChanged   = "StakeBoundsChanged"
	EventTypePaused               = "Paused"
	EventTypeUnpaused             = "Unpaused"
	EventTypeEmergencyWithdrawal  = "EmergencyWithdrawal"
	EventTypeOwnershipTransferred = "OwnershipTransferred"
)

// Attribute keys.
const (
	AttrGameID        = "gameId"
	AttrPlayer        = "player"
	AttrBy            = "by"
	AttrStake         = "stake"
	AttrPot           = "pot"
	AttrSlot          = "slot"
	AttrDeadline      = "deadline"
	AttrCorrelationID = "correlationId"
	AttrHandle        = "handle"
	AttrOutcome       = "outcome"
	AttrWinner        = "winner"
	AttrFee           = "fee"
	AttrPayout        = "payout"
	AttrReason        = "reason"
	AttrTo            = "to"
	AttrAmount        = "amount"
	AttrOld           = "old"
	AttrNew           = "new"
	AttrMin           = "min"
	AttrMax           = "max"
)
