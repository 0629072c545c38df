package game

import "errors"

// Rejection reasons returned by room operations. All are recoverable; the
// gateway surfaces them to the acting player.
var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrAlreadyJoined    = errors.New("player already in room")
	ErrRoomFull         = errors.New("room is full")
	ErrGameStarted      = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotPlaying       = errors.New("game not in progress")
	ErrNoDefuse         = errors.New("no defuse card in hand")
	ErrActionPending    = errors.New("another action must be resolved first")
	ErrActionNotPending = errors.New("no matching action is pending")
	ErrTargetRequired   = errors.New("target player required")
	ErrInvalidTarget    = errors.New("invalid target player")
	ErrInvalidCombo     = errors.New("invalid cat combo")
	ErrInvalidRearrange = errors.New("rearranged cards do not match the peeked cards")
	ErrCardNotInDiscard = errors.New("card not in discard pile")
)
