package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"kittenbomb/internal/cards"
)

// Phase is the lifecycle stage of a room. Transitions are one-way:
// lobby -> playing -> gameEnd.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseGameEnd Phase = "gameEnd"
)

// MaxPlayers is the room capacity.
const MaxPlayers = 10

// hiddenDefuseCount is the sentinel for a concealed defuse count.
const hiddenDefuseCount = -1

// Room owns the authoritative state of one game. Every exported method
// takes the room lock, so operations are atomic with respect to each
// other; callers never see partial mutations. Methods validate
// preconditions and return a rejection instead of panicking on bad input.
//
// The draw pile's top is the end of the Deck slice.
type Room struct {
	mu sync.Mutex

	Code          string
	Players       []*Player
	Deck          []Card
	Discard       []Card
	CurrentTurnID string
	Phase         Phase
	HostID        string
	Pending       *PendingAction
	Log           []LogEntry
	DeckConfig    DeckConfig
	TotalCards    int

	drawnKitten *Card // kitten in flight between DrawCard and DefuseKitten
	peekedCount int   // bound for RearrangeDeck after a peek

	CreatedAt      time.Time
	LastActivityAt time.Time
	EndedAt        time.Time
}

// NewRoom creates a lobby-phase room with the host as its first player.
func NewRoom(code, hostID, hostName string) *Room {
	now := time.Now()
	r := &Room{
		Code: code,
		Players: []*Player{{
			ID:          hostID,
			Name:        hostName,
			Hand:        []Card{},
			IsConnected: true,
			IsHost:      true,
		}},
		Deck:           []Card{},
		Discard:        []Card{},
		Phase:          PhaseLobby,
		HostID:         hostID,
		DeckConfig:     DeckMedium,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	r.addLog(LogEntry{Type: LogGameCreated, PlayerID: hostID, PlayerName: hostName, Message: "Game created"})
	return r
}

func (r *Room) touch() {
	r.LastActivityAt = time.Now()
}

func (r *Room) findPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// nextActivePlayer walks the join-order ring starting after fromID and
// returns the first non-eliminated player. fromID may itself be
// eliminated (a player who just exploded still anchors the rotation).
func (r *Room) nextActivePlayer(fromID string) *Player {
	idx := slices.IndexFunc(r.Players, func(p *Player) bool { return p.ID == fromID })
	if idx == -1 {
		return nil
	}
	n := len(r.Players)
	for step := 1; step <= n; step++ {
		cand := r.Players[(idx+step)%n]
		if !cand.IsEliminated {
			return cand
		}
	}
	return nil
}

// advanceTurn hands the turn to the next surviving player with exactly
// one pending turn. Caller holds the lock.
func (r *Room) advanceTurn() {
	next := r.nextActivePlayer(r.CurrentTurnID)
	if next == nil {
		return
	}
	r.CurrentTurnID = next.ID
	next.PendingTurns = 1
	r.addLog(LogEntry{Type: LogTurnChanged, PlayerID: next.ID, PlayerName: next.Name,
		Message: next.Name + "'s turn"})
}

// AddPlayer joins a player to the lobby.
func (r *Room) AddPlayer(playerID, playerName string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhaseLobby {
		return Player{}, ErrGameStarted
	}
	if len(r.Players) >= MaxPlayers {
		return Player{}, ErrRoomFull
	}
	if r.findPlayer(playerID) != nil {
		return Player{}, ErrAlreadyJoined
	}

	p := &Player{
		ID:          playerID,
		Name:        playerName,
		Hand:        []Card{},
		IsConnected: true,
	}
	r.Players = append(r.Players, p)
	r.addLog(LogEntry{Type: LogPlayerJoined, PlayerID: playerID, PlayerName: playerName,
		Message: playerName + " joined the game"})
	r.touch()
	return *p, nil
}

// RemovePlayer drops a player from the list. Only meaningful before the
// game starts or when a lobby disconnect grace expires; mid-game
// departures are eliminations, not removals. If the host leaves, the
// role moves to the first remaining player.
func (r *Room) RemovePlayer(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.Players, func(p *Player) bool { return p.ID == playerID })
	if idx == -1 {
		return ErrPlayerNotFound
	}
	name := r.Players[idx].Name
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	r.addLog(LogEntry{Type: LogPlayerLeft, PlayerID: playerID, PlayerName: name,
		Message: name + " left the game"})

	if playerID == r.HostID && len(r.Players) > 0 {
		r.HostID = r.Players[0].ID
		r.Players[0].IsHost = true
	}
	r.touch()
	return nil
}

// Start deals the game and begins play. extraDefuses go into the draw
// pile only; kittenCount <= 0 selects the default of playerCount-1.
func (r *Room) Start(extraDefuses, kittenCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhaseLobby {
		return ErrGameStarted
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	setup := generateSetup(len(r.Players), extraDefuses, kittenCount)
	for i, p := range r.Players {
		p.Hand = setup.Hands[i]
		p.DefuseCount = 0
		for _, c := range p.Hand {
			if c.Type == cards.Defuse {
				p.DefuseCount++
			}
		}
		p.PendingTurns = 0
		p.IsEliminated = false
	}
	r.Deck = setup.Deck
	r.DeckConfig = setup.Config
	r.TotalCards = setup.Total
	r.Discard = []Card{}
	r.Phase = PhasePlaying

	first := r.Players[0]
	r.CurrentTurnID = first.ID
	first.PendingTurns = 1

	r.addLog(LogEntry{Type: LogGameStarted,
		Message: fmt.Sprintf("Game started with %d players! Deck: %s (%d cards)",
			len(r.Players), setup.Config, len(setup.Deck))})
	r.addLog(LogEntry{Type: LogTurnChanged, PlayerID: first.ID, PlayerName: first.Name,
		Message: first.Name + "'s turn"})
	r.touch()
	return nil
}

// PlayOptions carries the per-card-type auxiliary input for PlayCard.
// Only the fields the played type needs are read.
type PlayOptions struct {
	TargetPlayerID string
}

// PlayResult reports whether the caller owes a follow-up operation.
type PlayResult struct {
	RequiresAction ActionType `json:"requiresAction,omitempty"`
}

// PlayCard removes the card from the player's hand, discards it, and
// applies its effect. Interactive effects (favor, shuffle, the future
// cards) leave a PendingAction that blocks all other turn operations
// until the matching follow-up resolves it.
func (r *Room) PlayCard(playerID, cardID string, opts PlayOptions) (PlayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return PlayResult{}, ErrNotPlaying
	}
	if r.Pending != nil {
		return PlayResult{}, ErrActionPending
	}
	player := r.findPlayer(playerID)
	if player == nil {
		return PlayResult{}, ErrPlayerNotFound
	}
	if r.CurrentTurnID != playerID {
		return PlayResult{}, ErrNotYourTurn
	}
	if !player.holdsCard(cardID) {
		return PlayResult{}, ErrCardNotInHand
	}

	// Validate favor's target before touching any state so a rejected
	// play leaves the hand intact.
	var target *Player
	if cardOfID(player.Hand, cardID).Type == cards.Favor {
		if opts.TargetPlayerID == "" {
			return PlayResult{}, ErrTargetRequired
		}
		target = r.findPlayer(opts.TargetPlayerID)
		if target == nil || target.ID == playerID || target.IsEliminated {
			return PlayResult{}, ErrInvalidTarget
		}
	}

	card, _ := player.removeCard(cardID)
	if card.Type == cards.Defuse {
		player.DefuseCount--
	}
	r.Discard = append(r.Discard, card)

	logType := LogCardPlayed
	if card.Type == cards.Nope {
		logType = LogNopePlayed
	}
	r.addLog(LogEntry{Type: logType, PlayerID: playerID, PlayerName: player.Name,
		CardType: card.Type, Message: fmt.Sprintf("%s played %s", player.Name, cards.Get(card.Type).Name)})

	var res PlayResult
	switch card.Type {
	case cards.Skip:
		if player.PendingTurns > 0 {
			player.PendingTurns--
		}
		if player.PendingTurns == 0 {
			r.advanceTurn()
		}

	case cards.Attack:
		// Stacking: an attacked player who attacks adds to the next
		// victim's count rather than resetting it.
		player.PendingTurns = 0
		if next := r.nextActivePlayer(playerID); next != nil {
			next.PendingTurns += 2
			r.CurrentTurnID = next.ID
			r.addLog(LogEntry{Type: LogTurnChanged, PlayerID: next.ID, PlayerName: next.Name,
				Message: fmt.Sprintf("%s's turn (%d turns)", next.Name, next.PendingTurns)})
		}

	case cards.Favor:
		// A favor against an empty hand has no effect.
		if len(target.Hand) > 0 {
			p := newPendingAction(ActionFavor, playerID)
			p.TargetID = target.ID
			r.Pending = p
			res.RequiresAction = ActionFavor
		}

	case cards.Shuffle:
		r.Pending = newPendingAction(ActionShuffle, playerID)
		res.RequiresAction = ActionShuffle

	case cards.SeeTheFuture:
		r.Pending = newPendingAction(ActionSeeTheFuture, playerID)
		res.RequiresAction = ActionSeeTheFuture

	case cards.AlterTheFuture:
		r.Pending = newPendingAction(ActionAlterTheFuture, playerID)
		r.peekedCount = 0
		res.RequiresAction = ActionAlterTheFuture

	default:
		// Nope, standalone defuse and lone cat cards have no forced
		// effect; combos go through PlayCombo.
	}

	r.touch()
	return res, nil
}

func cardOfID(hand []Card, cardID string) Card {
	for _, c := range hand {
		if c.ID == cardID {
			return c
		}
	}
	return Card{}
}

// DrawOutcome discriminates the result of DrawCard. Only Drawn and
// EmptyDeck should be followed by EndTurn; NeedsDefuse waits for
// DefuseKitten and Exploded advances the turn itself.
type DrawOutcome string

const (
	DrawEmptyDeck   DrawOutcome = "empty-deck"
	DrawDrawn       DrawOutcome = "drawn"
	DrawNeedsDefuse DrawOutcome = "needs-defuse"
	DrawExploded    DrawOutcome = "exploded"
)

// DrawResult is the discriminated outcome of a draw.
type DrawResult struct {
	Outcome DrawOutcome
	Card    *Card
}

// DrawCard pops the top of the draw pile. A drawn kitten either waits
// for a defuse (held in flight, in neither hand nor deck) or eliminates
// the player on the spot.
func (r *Room) DrawCard(playerID string) (DrawResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return DrawResult{}, ErrNotPlaying
	}
	if r.Pending != nil {
		return DrawResult{}, ErrActionPending
	}
	player := r.findPlayer(playerID)
	if player == nil {
		return DrawResult{}, ErrPlayerNotFound
	}
	if r.CurrentTurnID != playerID {
		return DrawResult{}, ErrNotYourTurn
	}
	if len(r.Deck) == 0 {
		return DrawResult{Outcome: DrawEmptyDeck}, nil
	}

	card := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	r.touch()

	if card.Type == cards.ExplodingKitten {
		if player.DefuseCount > 0 {
			r.drawnKitten = &card
			r.Pending = newPendingAction(ActionDefuse, playerID)
			return DrawResult{Outcome: DrawNeedsDefuse, Card: &card}, nil
		}
		player.IsEliminated = true
		player.PendingTurns = 0
		r.Discard = append(r.Discard, card)
		r.addLog(LogEntry{Type: LogPlayerExploded, PlayerID: playerID, PlayerName: player.Name,
			Message: player.Name + " exploded!"})
		r.advanceTurn()
		return DrawResult{Outcome: DrawExploded, Card: &card}, nil
	}

	player.Hand = append(player.Hand, card)
	if card.Type == cards.Defuse {
		player.DefuseCount++
	}
	r.addLog(LogEntry{Type: LogCardDrawn, PlayerID: playerID, PlayerName: player.Name,
		Message: player.Name + " drew a card"})
	return DrawResult{Outcome: DrawDrawn, Card: &card}, nil
}

// DefuseKitten spends a defuse to neutralize the kitten drawn by the
// same player and secretly reinserts a fresh kitten token at
// insertPosition (0 = bottom of the pile, clamped to the deck length).
func (r *Room) DefuseKitten(playerID string, insertPosition int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	pending, err := r.takePending(ActionDefuse, playerID)
	if err != nil {
		return err
	}
	player := r.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	defuse, ok := player.removeCardOfType(cards.Defuse)
	if !ok {
		pending.Status = ActionWaiting
		r.Pending = pending
		return ErrNoDefuse
	}

	player.DefuseCount--
	r.Discard = append(r.Discard, defuse)

	// The drawn token is gone; a fresh one replaces it so nobody can
	// track the kitten by identity. The kitten count is conserved.
	kitten := newCard(cards.ExplodingKitten)
	pos := insertPosition
	if pos < 0 {
		pos = 0
	}
	if pos > len(r.Deck) {
		pos = len(r.Deck)
	}
	r.Deck = slices.Insert(r.Deck, pos, kitten)
	r.drawnKitten = nil

	r.addLog(LogEntry{Type: LogPlayerDefused, PlayerID: playerID, PlayerName: player.Name,
		Message: player.Name + " defused an Exploding Kitten!"})
	r.touch()
	return nil
}

// EndTurn consumes one of the current player's pending turns; when none
// remain the turn passes to the next surviving player.
func (r *Room) EndTurn() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	if r.Pending != nil {
		return ErrActionPending
	}
	cur := r.findPlayer(r.CurrentTurnID)
	if cur == nil {
		return ErrPlayerNotFound
	}
	if cur.PendingTurns > 0 {
		cur.PendingTurns--
	}
	if cur.PendingTurns > 0 {
		r.addLog(LogEntry{Type: LogTurnChanged, PlayerID: cur.ID, PlayerName: cur.Name,
			Message: fmt.Sprintf("%s's turn (%d more turn(s))", cur.Name, cur.PendingTurns)})
		r.touch()
		return nil
	}
	r.advanceTurn()
	r.touch()
	return nil
}

// ShuffleDeck re-randomizes the draw pile as the follow-up to a played
// shuffle card.
func (r *Room) ShuffleDeck(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	if _, err := r.takePending(ActionShuffle, playerID); err != nil {
		return err
	}
	shuffleCards(r.Deck)
	player := r.findPlayer(playerID)
	if player != nil {
		r.addLog(LogEntry{Type: LogActionResolved, PlayerID: playerID, PlayerName: player.Name,
			Message: player.Name + " shuffled the deck"})
	}
	r.touch()
	return nil
}

// PeekDeck returns the top n cards in draw order (nearest to draw
// first) as the follow-up to see-the-future or alter-the-future. For
// alter-the-future the pending action stays open until RearrangeDeck.
func (r *Room) PeekDeck(playerID string, n int) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.InitiatorID != playerID {
		return nil, ErrActionNotPending
	}
	if p.Type != ActionSeeTheFuture && p.Type != ActionAlterTheFuture {
		return nil, ErrActionNotPending
	}

	if n > len(r.Deck) {
		n = len(r.Deck)
	}
	top := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		top = append(top, r.Deck[len(r.Deck)-1-i])
	}

	// An exhausted deck leaves nothing to rearrange; the action resolves
	// on the spot so it cannot block the turn forever.
	if p.Type == ActionSeeTheFuture || len(top) == 0 {
		p.Status = ActionResolved
		r.Pending = nil
	} else {
		r.peekedCount = n
	}
	r.touch()
	return top, nil
}

// RearrangeDeck replaces the top cards with the given cards in the
// given order (nearest to draw first). The cards must be exactly the
// multiset just peeked; the length is bounded by the peeked count.
func (r *Room) RearrangeDeck(playerID string, rearranged []Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.Type != ActionAlterTheFuture || p.InitiatorID != playerID {
		return ErrActionNotPending
	}

	n := len(rearranged)
	if n == 0 || n > r.peekedCount || n > len(r.Deck) {
		return ErrInvalidRearrange
	}
	want := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		want[r.Deck[len(r.Deck)-1-i].ID] = true
	}
	for _, c := range rearranged {
		if !want[c.ID] {
			return ErrInvalidRearrange
		}
		delete(want, c.ID)
	}

	r.Deck = r.Deck[:len(r.Deck)-n]
	for i := n - 1; i >= 0; i-- {
		r.Deck = append(r.Deck, rearranged[i])
	}

	p.Status = ActionResolved
	r.Pending = nil
	r.peekedCount = 0
	player := r.findPlayer(playerID)
	if player != nil {
		r.addLog(LogEntry{Type: LogActionResolved, PlayerID: playerID, PlayerName: player.Name,
			Message: player.Name + " altered the future"})
	}
	r.touch()
	return nil
}

// GiveFavorCard resolves a pending favor: the targeted giver surrenders
// one card of their choice to the favor's initiator.
func (r *Room) GiveFavorCard(giverID, receiverID, cardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.Type != ActionFavor ||
		p.InitiatorID != receiverID || p.TargetID != giverID {
		return ErrActionNotPending
	}
	giver := r.findPlayer(giverID)
	receiver := r.findPlayer(receiverID)
	if giver == nil || receiver == nil {
		return ErrPlayerNotFound
	}
	card, ok := giver.removeCard(cardID)
	if !ok {
		return ErrCardNotInHand
	}

	receiver.Hand = append(receiver.Hand, card)
	if card.Type == cards.Defuse {
		giver.DefuseCount--
		receiver.DefuseCount++
	}

	p.Status = ActionResolved
	r.Pending = nil
	r.addLog(LogEntry{Type: LogActionResolved, PlayerID: receiverID, PlayerName: receiver.Name,
		TargetID: giverID, TargetName: giver.Name,
		Message: fmt.Sprintf("%s received a card from %s (Favor)", receiver.Name, giver.Name)})
	r.touch()
	return nil
}

// CheckGameEnd transitions to gameEnd and reports the winner when
// exactly one player survives. It is pull-based: the orchestrating
// layer calls it after any operation that can eliminate a player. The
// winner is reported exactly once; later calls return false.
func (r *Room) CheckGameEnd() (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return Player{}, false
	}
	var winner *Player
	active := 0
	for _, p := range r.Players {
		if !p.IsEliminated {
			active++
			winner = p
		}
	}
	if active != 1 {
		return Player{}, false
	}
	r.Phase = PhaseGameEnd
	r.EndedAt = time.Now()
	r.touch()
	return *winner, true
}

// EliminateDisconnected flags a mid-game disconnect as an elimination.
// Any interaction the player was part of is abandoned; an in-flight
// kitten they were defusing goes to the discard pile. Returns false
// outside the playing phase or for unknown/already-eliminated players.
func (r *Room) EliminateDisconnected(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return false
	}
	player := r.findPlayer(playerID)
	if player == nil || player.IsEliminated {
		return false
	}

	player.IsConnected = false
	player.IsEliminated = true
	player.PendingTurns = 0

	if p := r.Pending; p != nil && (p.InitiatorID == playerID || p.TargetID == playerID) {
		if p.Type == ActionDefuse && r.drawnKitten != nil {
			r.Discard = append(r.Discard, *r.drawnKitten)
			r.drawnKitten = nil
		}
		p.Status = ActionResolved
		r.Pending = nil
	}

	r.addLog(LogEntry{Type: LogPlayerLeft, PlayerID: playerID, PlayerName: player.Name,
		Message: player.Name + " disconnected and was eliminated"})
	if r.CurrentTurnID == playerID {
		r.advanceTurn()
	}
	r.touch()
	return true
}

// MarkConnected updates a player's connection flag.
func (r *Room) MarkConnected(playerID string, connected bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findPlayer(playerID)
	if player == nil {
		return false
	}
	player.IsConnected = connected
	return true
}

// IsHost reports whether the player is the room's host.
func (r *Room) IsHost(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.HostID == playerID
}

// HasPlayer reports membership.
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findPlayer(playerID) != nil
}

// NumPlayers returns the current player count.
func (r *Room) NumPlayers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// AnyConnected reports whether any player is still connected.
func (r *Room) AnyConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if p.IsConnected {
			return true
		}
	}
	return false
}

// CurrentPhase returns the room phase.
func (r *Room) CurrentPhase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Phase
}

// Times returns the lifecycle timestamps used by garbage collection.
func (r *Room) Times() (created, lastActivity, ended time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.CreatedAt, r.LastActivityAt, r.EndedAt
}

// Info is the public summary served by the room lookup endpoint.
type Info struct {
	RoomCode    string `json:"roomCode"`
	PlayerCount int    `json:"playerCount"`
	GamePhase   Phase  `json:"gamePhase"`
}

// PublicInfo returns the room summary.
func (r *Room) PublicInfo() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Info{RoomCode: r.Code, PlayerCount: len(r.Players), GamePhase: r.Phase}
}
