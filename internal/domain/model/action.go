package model

// Action identifies a requested lifecycle transition.
type Action string

const (
	ActionAccept              Action = "accept"
	ActionRefuse              Action = "refuse"
	ActionDeliver             Action = "deliver"
	ActionConfirm             Action = "confirm"
	ActionContest             Action = "contest"
	ActionArbitrateInfluencer Action = "arbitrate_favor_influencer"
	ActionArbitrateMerchant   Action = "arbitrate_favor_merchant"
	ActionTimeoutCancel       Action = "timeout_cancel"
	ActionTimeoutComplete     Action = "timeout_complete"
)

// Actor identifies who requests a transition.
type Actor struct {
	UserID int64
	Role   Role
}

// SystemActor is used by the reconciler and webhook-driven transitions.
var SystemActor = Actor{Role: RoleSystem}
