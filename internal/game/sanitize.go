package game

import "kittenbomb/internal/cards"

// HandCard is a card as presented to a viewer. For the viewer's own
// hand Known is true and Type is filled; other players' cards carry
// only an opaque ID.
type HandCard struct {
	ID    string     `json:"id"`
	Type  cards.Type `json:"type,omitempty"`
	Known bool       `json:"known"`
}

// PlayerView is a player as seen by one viewer. DefuseCount is -1 for
// everyone but the viewer.
type PlayerView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Hand         []HandCard `json:"hand"`
	HandCount    int        `json:"handCount"`
	IsEliminated bool       `json:"isEliminated"`
	IsConnected  bool       `json:"isConnected"`
	IsHost       bool       `json:"isHost"`
	DefuseCount  int        `json:"defuseCount"`
	PendingTurns int        `json:"pendingTurns"`
}

// State is the per-viewer projection of a room. The draw pile is
// reduced to a count so its order and contents never leave the server.
type State struct {
	RoomCode      string         `json:"roomCode"`
	Players       []PlayerView   `json:"players"`
	DeckCount     int            `json:"deckCount"`
	TotalCards    int            `json:"totalCards"`
	Discard       []Card         `json:"discardPile"`
	CurrentTurnID string         `json:"currentTurnPlayerId"`
	Phase         Phase          `json:"gamePhase"`
	HostID        string         `json:"hostId"`
	Pending       *PendingAction `json:"pendingAction,omitempty"`
	Log           []LogEntry     `json:"gameLog"`
	DeckConfig    DeckConfig     `json:"deckConfig"`
}

// SanitizedState projects the room for one viewer. Hidden information
// (other hands' types, other defuse counts, the draw pile) is stripped
// on the server; the projection shares no mutable data with the room.
func (r *Room) SanitizedState(viewerID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		v := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Hand:         make([]HandCard, 0, len(p.Hand)),
			HandCount:    len(p.Hand),
			IsEliminated: p.IsEliminated,
			IsConnected:  p.IsConnected,
			IsHost:       p.IsHost,
			PendingTurns: p.PendingTurns,
		}
		if p.ID == viewerID {
			v.DefuseCount = p.DefuseCount
			for _, c := range p.Hand {
				v.Hand = append(v.Hand, HandCard{ID: c.ID, Type: c.Type, Known: true})
			}
		} else {
			v.DefuseCount = hiddenDefuseCount
			for _, c := range p.Hand {
				v.Hand = append(v.Hand, HandCard{ID: c.ID})
			}
		}
		players = append(players, v)
	}

	discard := make([]Card, len(r.Discard))
	copy(discard, r.Discard)
	log := make([]LogEntry, len(r.Log))
	copy(log, r.Log)

	var pending *PendingAction
	if r.Pending != nil {
		cp := *r.Pending
		pending = &cp
	}

	return State{
		RoomCode:      r.Code,
		Players:       players,
		DeckCount:     len(r.Deck),
		TotalCards:    r.TotalCards,
		Discard:       discard,
		CurrentTurnID: r.CurrentTurnID,
		Phase:         r.Phase,
		HostID:        r.HostID,
		Pending:       pending,
		Log:           log,
		DeckConfig:    r.DeckConfig,
	}
}
