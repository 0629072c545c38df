package game

import (
	"time"

	"github.com/google/uuid"

	"kittenbomb/internal/cards"
)

// ActionType identifies an in-flight interactive effect.
type ActionType string

const (
	ActionFavor          ActionType = "favor"
	ActionCatCombo       ActionType = "cat-combo"
	ActionShuffle        ActionType = "shuffle"
	ActionSeeTheFuture   ActionType = "see-the-future"
	ActionAlterTheFuture ActionType = "alter-the-future"
	ActionDefuse         ActionType = "defuse"
)

// ComboKind distinguishes the cat combo variants.
type ComboKind string

const (
	ComboTwoOfAKind   ComboKind = "2-kind"
	ComboThreeOfAKind ComboKind = "3-kind"
	ComboFiveDiff     ComboKind = "5-diff"
)

// ActionStatus is the lifecycle of a pending action.
type ActionStatus string

const (
	ActionWaiting  ActionStatus = "waiting"
	ActionResolved ActionStatus = "resolved"
)

// PendingAction blocks all turn progress until the one operation that
// resolves it is accepted. At most one exists per room.
type PendingAction struct {
	ActionID      string       `json:"actionId"`
	Type          ActionType   `json:"type"`
	InitiatorID   string       `json:"initiatorId"`
	TargetID      string       `json:"targetPlayerId,omitempty"`
	CardIDs       []string     `json:"cardIds,omitempty"`
	ComboKind     ComboKind    `json:"comboType,omitempty"`
	RequestedType cards.Type   `json:"requestedCardType,omitempty"`
	Status        ActionStatus `json:"status"`
	CreatedAt     int64        `json:"createdAt"`
}

func newPendingAction(t ActionType, initiatorID string) *PendingAction {
	return &PendingAction{
		ActionID:    uuid.NewString(),
		Type:        t,
		InitiatorID: initiatorID,
		Status:      ActionWaiting,
		CreatedAt:   time.Now().UnixMilli(),
	}
}

// takePending clears and returns the waiting action if it matches the
// given type and initiator. The caller must hold the room lock.
func (r *Room) takePending(t ActionType, initiatorID string) (*PendingAction, error) {
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.Type != t {
		return nil, ErrActionNotPending
	}
	if p.InitiatorID != initiatorID {
		return nil, ErrActionNotPending
	}
	p.Status = ActionResolved
	r.Pending = nil
	return p, nil
}
