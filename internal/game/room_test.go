package game

import (
	"errors"
	"fmt"
	"testing"

	"kittenbomb/internal/cards"
)

func testRoom(t *testing.T, players int) *Room {
	t.Helper()
	r := NewRoom("TEST42", "p0", "player0")
	for i := 1; i < players; i++ {
		id := fmt.Sprintf("p%d", i)
		if _, err := r.AddPlayer(id, "player"+id); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	return r
}

func startedRoom(t *testing.T, players int) *Room {
	t.Helper()
	r := testRoom(t, players)
	if err := r.Start(0, 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r
}

// giveCard plants a card directly in a player's hand.
func giveCard(r *Room, playerID string, typ cards.Type) Card {
	p := r.findPlayer(playerID)
	c := newCard(typ)
	p.Hand = append(p.Hand, c)
	if typ == cards.Defuse {
		p.DefuseCount++
	}
	r.TotalCards++
	return c
}

// plantCard puts a card on top of the draw pile.
func plantCard(r *Room, typ cards.Type) Card {
	c := newCard(typ)
	r.Deck = append(r.Deck, c)
	r.TotalCards++
	return c
}

// stripDefuses empties a player's defuse supply.
func stripDefuses(r *Room, playerID string) {
	p := r.findPlayer(playerID)
	kept := p.Hand[:0]
	for _, c := range p.Hand {
		if c.Type != cards.Defuse {
			kept = append(kept, c)
		}
	}
	r.TotalCards -= len(p.Hand) - len(kept)
	p.Hand = kept
	p.DefuseCount = 0
}

// assertConservation checks that no card has appeared or vanished: deck,
// hands, discard and a kitten held mid-defuse account for every card
// ever generated.
func assertConservation(t *testing.T, r *Room) {
	t.Helper()
	inPlay := len(r.Deck) + len(r.Discard)
	for _, p := range r.Players {
		inPlay += len(p.Hand)
	}
	if r.drawnKitten != nil {
		inPlay++
	}
	if inPlay != r.TotalCards {
		t.Fatalf("cards in play = %d, want %d", inPlay, r.TotalCards)
	}
}

func TestAddPlayerRules(t *testing.T) {
	r := testRoom(t, 2)

	if _, err := r.AddPlayer("p1", "dup"); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("duplicate join: err = %v, want ErrAlreadyJoined", err)
	}

	for i := 2; i < MaxPlayers; i++ {
		if _, err := r.AddPlayer(fmt.Sprintf("p%d", i), "x"); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}
	if _, err := r.AddPlayer("overflow", "x"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("11th join: err = %v, want ErrRoomFull", err)
	}
}

func TestAddPlayerAfterStart(t *testing.T) {
	r := startedRoom(t, 2)
	if _, err := r.AddPlayer("late", "x"); !errors.Is(err, ErrGameStarted) {
		t.Errorf("join after start: err = %v, want ErrGameStarted", err)
	}
}

func TestRemovePlayerHostTransfer(t *testing.T) {
	r := testRoom(t, 3)
	if err := r.RemovePlayer("p0"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if r.HostID != "p1" {
		t.Errorf("HostID = %s, want p1", r.HostID)
	}
	if !r.findPlayer("p1").IsHost {
		t.Error("new host not flagged")
	}
	if err := r.RemovePlayer("ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("remove unknown: err = %v, want ErrPlayerNotFound", err)
	}
}

func TestStart(t *testing.T) {
	r := testRoom(t, 1)
	if err := r.Start(0, 0); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("solo start: err = %v, want ErrNotEnoughPlayers", err)
	}

	r = startedRoom(t, 4)
	if r.Phase != PhasePlaying {
		t.Errorf("Phase = %s, want playing", r.Phase)
	}
	if r.CurrentTurnID != "p0" {
		t.Errorf("CurrentTurnID = %s, want p0", r.CurrentTurnID)
	}
	if got := r.findPlayer("p0").PendingTurns; got != 1 {
		t.Errorf("first player PendingTurns = %d, want 1", got)
	}
	for _, p := range r.Players {
		if len(p.Hand) != handSize+1 {
			t.Errorf("%s hand = %d cards, want %d", p.ID, len(p.Hand), handSize+1)
		}
		if p.DefuseCount != 1 {
			t.Errorf("%s DefuseCount = %d, want 1", p.ID, p.DefuseCount)
		}
	}

	if err := r.Start(0, 0); !errors.Is(err, ErrGameStarted) {
		t.Errorf("double start: err = %v, want ErrGameStarted", err)
	}
}

func TestEndTurnRotation(t *testing.T) {
	r := startedRoom(t, 3)
	for _, want := range []string{"p1", "p2", "p0"} {
		if err := r.EndTurn(); err != nil {
			t.Fatalf("EndTurn: %v", err)
		}
		if r.CurrentTurnID != want {
			t.Fatalf("CurrentTurnID = %s, want %s", r.CurrentTurnID, want)
		}
		if got := r.findPlayer(want).PendingTurns; got != 1 {
			t.Errorf("%s PendingTurns = %d, want 1", want, got)
		}
	}
}

func TestEndTurnConsumesPendingTurns(t *testing.T) {
	r := startedRoom(t, 2)
	r.findPlayer("p0").PendingTurns = 2

	if err := r.EndTurn(); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if r.CurrentTurnID != "p0" {
		t.Errorf("turn passed early, CurrentTurnID = %s", r.CurrentTurnID)
	}
	if err := r.EndTurn(); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if r.CurrentTurnID != "p1" {
		t.Errorf("CurrentTurnID = %s, want p1", r.CurrentTurnID)
	}
}

func TestAttack(t *testing.T) {
	r := startedRoom(t, 3)

	attack := giveCard(r, "p0", cards.Attack)
	if _, err := r.PlayCard("p0", attack.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if got := r.findPlayer("p0").PendingTurns; got != 0 {
		t.Errorf("attacker PendingTurns = %d, want 0", got)
	}
	if r.CurrentTurnID != "p1" {
		t.Fatalf("CurrentTurnID = %s, want p1", r.CurrentTurnID)
	}
	if got := r.findPlayer("p1").PendingTurns; got != 2 {
		t.Errorf("victim PendingTurns = %d, want 2", got)
	}

	// The attacked player passes the attack on instead of taking turns.
	attack2 := giveCard(r, "p1", cards.Attack)
	if _, err := r.PlayCard("p1", attack2.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if got := r.findPlayer("p1").PendingTurns; got != 0 {
		t.Errorf("p1 PendingTurns = %d, want 0", got)
	}
	if r.CurrentTurnID != "p2" {
		t.Fatalf("CurrentTurnID = %s, want p2", r.CurrentTurnID)
	}
	if got := r.findPlayer("p2").PendingTurns; got != 2 {
		t.Errorf("p2 PendingTurns = %d, want 2", got)
	}
}

func TestSkip(t *testing.T) {
	r := startedRoom(t, 2)

	skip := giveCard(r, "p0", cards.Skip)
	if _, err := r.PlayCard("p0", skip.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if r.CurrentTurnID != "p1" {
		t.Errorf("CurrentTurnID = %s, want p1", r.CurrentTurnID)
	}

	// An attacked player skips one turn but keeps the rest.
	r.findPlayer("p1").PendingTurns = 2
	skip2 := giveCard(r, "p1", cards.Skip)
	if _, err := r.PlayCard("p1", skip2.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if r.CurrentTurnID != "p1" {
		t.Errorf("CurrentTurnID = %s, want p1 still", r.CurrentTurnID)
	}
	if got := r.findPlayer("p1").PendingTurns; got != 1 {
		t.Errorf("PendingTurns = %d, want 1", got)
	}
}

func TestPlayCardRejections(t *testing.T) {
	r := startedRoom(t, 2)
	skip := giveCard(r, "p1", cards.Skip)

	if _, err := r.PlayCard("p1", skip.ID, PlayOptions{}); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("out of turn: err = %v, want ErrNotYourTurn", err)
	}
	if _, err := r.PlayCard("p0", "no-such-card", PlayOptions{}); !errors.Is(err, ErrCardNotInHand) {
		t.Errorf("unknown card: err = %v, want ErrCardNotInHand", err)
	}
	if _, err := r.PlayCard("ghost", skip.ID, PlayOptions{}); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player: err = %v, want ErrPlayerNotFound", err)
	}
}

func TestFavorFlow(t *testing.T) {
	r := startedRoom(t, 3)
	favor := giveCard(r, "p0", cards.Favor)

	res, err := r.PlayCard("p0", favor.ID, PlayOptions{TargetPlayerID: "p1"})
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if res.RequiresAction != ActionFavor {
		t.Fatalf("RequiresAction = %s, want favor", res.RequiresAction)
	}

	// Everything else is blocked while the favor is open.
	if _, err := r.DrawCard("p0"); !errors.Is(err, ErrActionPending) {
		t.Errorf("draw during favor: err = %v, want ErrActionPending", err)
	}
	if err := r.EndTurn(); !errors.Is(err, ErrActionPending) {
		t.Errorf("end turn during favor: err = %v, want ErrActionPending", err)
	}

	given := r.findPlayer("p1").Hand[0]
	p0Before := len(r.findPlayer("p0").Hand)
	if err := r.GiveFavorCard("p1", "p0", given.ID); err != nil {
		t.Fatalf("GiveFavorCard: %v", err)
	}
	if r.Pending != nil {
		t.Error("pending action not cleared")
	}
	if got := len(r.findPlayer("p0").Hand); got != p0Before+1 {
		t.Errorf("receiver hand = %d, want %d", got, p0Before+1)
	}
	if !r.findPlayer("p0").holdsCard(given.ID) {
		t.Error("receiver does not hold the given card")
	}
}

func TestFavorValidation(t *testing.T) {
	r := startedRoom(t, 2)
	favor := giveCard(r, "p0", cards.Favor)
	handBefore := len(r.findPlayer("p0").Hand)

	tests := []struct {
		name   string
		target string
		want   error
	}{
		{"no target", "", ErrTargetRequired},
		{"self target", "p0", ErrInvalidTarget},
		{"unknown target", "ghost", ErrInvalidTarget},
	}
	for _, tt := range tests {
		if _, err := r.PlayCard("p0", favor.ID, PlayOptions{TargetPlayerID: tt.target}); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	// Rejected plays leave the hand intact.
	if got := len(r.findPlayer("p0").Hand); got != handBefore {
		t.Errorf("hand = %d cards after rejections, want %d", got, handBefore)
	}
}

func TestFavorAgainstEmptyHand(t *testing.T) {
	r := startedRoom(t, 2)
	favor := giveCard(r, "p0", cards.Favor)
	p1 := r.findPlayer("p1")
	p1.Hand = nil
	p1.DefuseCount = 0

	res, err := r.PlayCard("p0", favor.ID, PlayOptions{TargetPlayerID: "p1"})
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if res.RequiresAction != "" || r.Pending != nil {
		t.Error("favor against an empty hand should not open an action")
	}
}

func TestDrawCard(t *testing.T) {
	r := startedRoom(t, 2)
	planted := plantCard(r, cards.Skip)
	deckBefore := len(r.Deck)
	handBefore := len(r.findPlayer("p0").Hand)

	res, err := r.DrawCard("p0")
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if res.Outcome != DrawDrawn {
		t.Fatalf("Outcome = %s, want drawn", res.Outcome)
	}
	if res.Card == nil || res.Card.ID != planted.ID {
		t.Error("drawn card is not the deck's top card")
	}
	if len(r.Deck) != deckBefore-1 {
		t.Errorf("deck = %d, want %d", len(r.Deck), deckBefore-1)
	}
	if got := len(r.findPlayer("p0").Hand); got != handBefore+1 {
		t.Errorf("hand = %d, want %d", got, handBefore+1)
	}
	// Drawing does not advance the turn by itself.
	if r.CurrentTurnID != "p0" {
		t.Errorf("CurrentTurnID = %s, want p0", r.CurrentTurnID)
	}
}

func TestDrawDefuseIncrementsCount(t *testing.T) {
	r := startedRoom(t, 2)
	plantCard(r, cards.Defuse)

	if _, err := r.DrawCard("p0"); err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if got := r.findPlayer("p0").DefuseCount; got != 2 {
		t.Errorf("DefuseCount = %d, want 2", got)
	}
}

func TestDrawEmptyDeck(t *testing.T) {
	r := startedRoom(t, 2)
	r.Deck = nil

	res, err := r.DrawCard("p0")
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if res.Outcome != DrawEmptyDeck || res.Card != nil {
		t.Errorf("got (%s, %v), want empty-deck with no card", res.Outcome, res.Card)
	}
}

func TestDrawKittenWithDefuse(t *testing.T) {
	r := startedRoom(t, 2)
	plantCard(r, cards.ExplodingKitten)
	deckBefore := len(r.Deck)
	handBefore := len(r.findPlayer("p0").Hand)

	res, err := r.DrawCard("p0")
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if res.Outcome != DrawNeedsDefuse {
		t.Fatalf("Outcome = %s, want needs-defuse", res.Outcome)
	}
	if len(r.findPlayer("p0").Hand) != handBefore {
		t.Error("kitten must not enter the hand")
	}
	if r.Pending == nil || r.Pending.Type != ActionDefuse {
		t.Fatal("no defuse action pending")
	}
	assertConservation(t, r)
	if _, err := r.DrawCard("p0"); !errors.Is(err, ErrActionPending) {
		t.Errorf("draw during defuse: err = %v, want ErrActionPending", err)
	}

	if err := r.DefuseKitten("p0", 0); err != nil {
		t.Fatalf("DefuseKitten: %v", err)
	}
	assertConservation(t, r)
	if len(r.Deck) != deckBefore {
		t.Errorf("deck = %d after defuse, want %d", len(r.Deck), deckBefore)
	}
	if r.Deck[0].Type != cards.ExplodingKitten {
		t.Error("kitten not inserted at the bottom")
	}
	if got := r.findPlayer("p0").DefuseCount; got != 0 {
		t.Errorf("DefuseCount = %d, want 0", got)
	}
	if countType(r.Discard, cards.Defuse) != 1 {
		t.Error("spent defuse not in the discard pile")
	}
	if r.Pending != nil {
		t.Error("defuse action not cleared")
	}
}

func TestDefuseKittenPositionClamped(t *testing.T) {
	r := startedRoom(t, 2)
	plantCard(r, cards.ExplodingKitten)

	if _, err := r.DrawCard("p0"); err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if err := r.DefuseKitten("p0", 9999); err != nil {
		t.Fatalf("DefuseKitten: %v", err)
	}
	if top := r.Deck[len(r.Deck)-1]; top.Type != cards.ExplodingKitten {
		t.Error("oversized position should clamp to the top of the deck")
	}
}

func TestDrawKittenWithoutDefuse(t *testing.T) {
	r := startedRoom(t, 3)
	stripDefuses(r, "p0")
	plantCard(r, cards.ExplodingKitten)

	res, err := r.DrawCard("p0")
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if res.Outcome != DrawExploded {
		t.Fatalf("Outcome = %s, want exploded", res.Outcome)
	}
	assertConservation(t, r)
	p0 := r.findPlayer("p0")
	if !p0.IsEliminated {
		t.Error("player not eliminated")
	}
	if p0.PendingTurns != 0 {
		t.Errorf("PendingTurns = %d, want 0", p0.PendingTurns)
	}
	if countType(r.Discard, cards.ExplodingKitten) != 1 {
		t.Error("kitten not discarded")
	}
	if r.CurrentTurnID != "p1" {
		t.Errorf("CurrentTurnID = %s, want p1", r.CurrentTurnID)
	}
}

func TestDefuseKittenWithoutPending(t *testing.T) {
	r := startedRoom(t, 2)
	if err := r.DefuseKitten("p0", 0); !errors.Is(err, ErrActionNotPending) {
		t.Errorf("err = %v, want ErrActionNotPending", err)
	}
}

func TestSeeTheFuture(t *testing.T) {
	r := startedRoom(t, 2)
	see := giveCard(r, "p0", cards.SeeTheFuture)
	if _, err := r.PlayCard("p0", see.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}

	deckBefore := len(r.Deck)
	top, err := r.PeekDeck("p0", 3)
	if err != nil {
		t.Fatalf("PeekDeck: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("peeked %d cards, want 3", len(top))
	}
	// Nearest-to-draw first.
	for i, c := range top {
		if want := r.Deck[len(r.Deck)-1-i]; c.ID != want.ID {
			t.Errorf("peek[%d] = %s, want %s", i, c.ID, want.ID)
		}
	}
	if len(r.Deck) != deckBefore {
		t.Error("peek must not consume cards")
	}
	if r.Pending != nil {
		t.Error("see-the-future action not resolved by the peek")
	}
}

func TestPeekWithoutPending(t *testing.T) {
	r := startedRoom(t, 2)
	if _, err := r.PeekDeck("p0", 3); !errors.Is(err, ErrActionNotPending) {
		t.Errorf("err = %v, want ErrActionNotPending", err)
	}
}

func TestAlterTheFuture(t *testing.T) {
	r := startedRoom(t, 2)
	alter := giveCard(r, "p0", cards.AlterTheFuture)
	if _, err := r.PlayCard("p0", alter.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}

	top, err := r.PeekDeck("p0", 3)
	if err != nil {
		t.Fatalf("PeekDeck: %v", err)
	}
	if r.Pending == nil {
		t.Fatal("alter-the-future should stay open until the rearrange")
	}

	reordered := []Card{top[2], top[0], top[1]}
	if err := r.RearrangeDeck("p0", reordered); err != nil {
		t.Fatalf("RearrangeDeck: %v", err)
	}
	for i, want := range reordered {
		if got := r.Deck[len(r.Deck)-1-i]; got.ID != want.ID {
			t.Errorf("deck top[%d] = %s, want %s", i, got.ID, want.ID)
		}
	}
	if r.Pending != nil {
		t.Error("alter-the-future action not resolved")
	}
}

func TestAlterTheFutureOnEmptyDeck(t *testing.T) {
	r := startedRoom(t, 2)
	r.TotalCards -= len(r.Deck)
	r.Deck = nil
	alter := giveCard(r, "p0", cards.AlterTheFuture)
	if _, err := r.PlayCard("p0", alter.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}

	top, err := r.PeekDeck("p0", 3)
	if err != nil {
		t.Fatalf("PeekDeck: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("peeked %d cards from an empty deck", len(top))
	}
	// Nothing to rearrange, so the action must not stay open and block
	// the turn.
	if r.Pending != nil {
		t.Fatal("empty peek left the action waiting")
	}
	if res, err := r.DrawCard("p0"); err != nil || res.Outcome != DrawEmptyDeck {
		t.Fatalf("draw after empty peek: res=%v err=%v", res, err)
	}
	if err := r.EndTurn(); err != nil {
		t.Fatalf("EndTurn after empty peek: %v", err)
	}
	if r.CurrentTurnID != "p1" {
		t.Errorf("CurrentTurnID = %s, want p1", r.CurrentTurnID)
	}
}

func TestRearrangeRejectsForeignCards(t *testing.T) {
	r := startedRoom(t, 2)
	alter := giveCard(r, "p0", cards.AlterTheFuture)
	if _, err := r.PlayCard("p0", alter.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if _, err := r.PeekDeck("p0", 3); err != nil {
		t.Fatalf("PeekDeck: %v", err)
	}

	fake := []Card{newCard(cards.Skip), newCard(cards.Nope), newCard(cards.Attack)}
	if err := r.RearrangeDeck("p0", fake); !errors.Is(err, ErrInvalidRearrange) {
		t.Errorf("err = %v, want ErrInvalidRearrange", err)
	}
	if r.Pending == nil {
		t.Error("rejected rearrange must keep the action open")
	}
}

func TestShuffleDeck(t *testing.T) {
	r := startedRoom(t, 2)
	if err := r.ShuffleDeck("p0"); !errors.Is(err, ErrActionNotPending) {
		t.Fatalf("shuffle without card: err = %v, want ErrActionNotPending", err)
	}

	shuffle := giveCard(r, "p0", cards.Shuffle)
	if _, err := r.PlayCard("p0", shuffle.ID, PlayOptions{}); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	deckBefore := len(r.Deck)
	if err := r.ShuffleDeck("p0"); err != nil {
		t.Fatalf("ShuffleDeck: %v", err)
	}
	if len(r.Deck) != deckBefore {
		t.Errorf("deck = %d after shuffle, want %d", len(r.Deck), deckBefore)
	}
	if r.Pending != nil {
		t.Error("shuffle action not resolved")
	}
}

func TestCheckGameEndExactlyOnce(t *testing.T) {
	r := startedRoom(t, 3)
	if _, over := r.CheckGameEnd(); over {
		t.Fatal("game over with 3 survivors")
	}

	r.findPlayer("p1").IsEliminated = true
	if _, over := r.CheckGameEnd(); over {
		t.Fatal("game over with 2 survivors")
	}

	r.findPlayer("p2").IsEliminated = true
	winner, over := r.CheckGameEnd()
	if !over {
		t.Fatal("game should be over with 1 survivor")
	}
	if winner.ID != "p0" {
		t.Errorf("winner = %s, want p0", winner.ID)
	}
	if r.Phase != PhaseGameEnd {
		t.Errorf("Phase = %s, want gameEnd", r.Phase)
	}
	if r.EndedAt.IsZero() {
		t.Error("EndedAt not stamped")
	}
	if _, over := r.CheckGameEnd(); over {
		t.Error("winner reported twice")
	}
}

func TestEliminateDisconnectedDuringDefuse(t *testing.T) {
	r := startedRoom(t, 3)
	plantCard(r, cards.ExplodingKitten)
	if _, err := r.DrawCard("p0"); err != nil {
		t.Fatalf("DrawCard: %v", err)
	}

	if !r.EliminateDisconnected("p0") {
		t.Fatal("EliminateDisconnected returned false")
	}
	p0 := r.findPlayer("p0")
	if !p0.IsEliminated || p0.IsConnected {
		t.Error("player not marked eliminated and disconnected")
	}
	if r.Pending != nil {
		t.Error("abandoned defuse action not cleared")
	}
	if countType(r.Discard, cards.ExplodingKitten) != 1 {
		t.Error("in-flight kitten not discarded")
	}
	assertConservation(t, r)
	if r.CurrentTurnID != "p1" {
		t.Errorf("CurrentTurnID = %s, want p1", r.CurrentTurnID)
	}

	if r.EliminateDisconnected("p0") {
		t.Error("second elimination should be a no-op")
	}
}

func TestSanitizedState(t *testing.T) {
	r := startedRoom(t, 3)
	state := r.SanitizedState("p1")

	if state.DeckCount != len(r.Deck) {
		t.Errorf("DeckCount = %d, want %d", state.DeckCount, len(r.Deck))
	}
	for _, pv := range state.Players {
		real := r.findPlayer(pv.ID)
		if pv.HandCount != len(real.Hand) {
			t.Errorf("%s HandCount = %d, want %d", pv.ID, pv.HandCount, len(real.Hand))
		}
		if pv.ID == "p1" {
			if pv.DefuseCount != real.DefuseCount {
				t.Errorf("own DefuseCount = %d, want %d", pv.DefuseCount, real.DefuseCount)
			}
			for i, hc := range pv.Hand {
				if !hc.Known || hc.Type != real.Hand[i].Type {
					t.Errorf("own hand card %d not fully visible", i)
				}
			}
		} else {
			if pv.DefuseCount != hiddenDefuseCount {
				t.Errorf("%s DefuseCount = %d, want %d", pv.ID, pv.DefuseCount, hiddenDefuseCount)
			}
			for i, hc := range pv.Hand {
				if hc.Known || hc.Type != "" {
					t.Errorf("%s hand card %d leaks its type", pv.ID, i)
				}
			}
		}
	}
}

func TestSanitizedStateIsDetached(t *testing.T) {
	r := startedRoom(t, 2)
	state := r.SanitizedState("p0")

	state.Discard = append(state.Discard, newCard(cards.Skip))
	if len(r.Discard) != 0 {
		t.Error("mutating the projection leaked into the room")
	}
}

func TestLogCap(t *testing.T) {
	r := testRoom(t, 2)
	for i := 0; i < maxLogEntries+20; i++ {
		r.addLog(LogEntry{Type: LogCardPlayed, Message: fmt.Sprintf("entry %d", i)})
	}
	if len(r.Log) != maxLogEntries {
		t.Fatalf("log = %d entries, want %d", len(r.Log), maxLogEntries)
	}
	if r.Log[len(r.Log)-1].Message != fmt.Sprintf("entry %d", maxLogEntries+19) {
		t.Error("newest entry missing, eviction dropped the wrong end")
	}
}

func TestFullRound(t *testing.T) {
	r := startedRoom(t, 3)
	assertConservation(t, r)

	// p0 attacks, p1 is stuck with two turns.
	attack := giveCard(r, "p0", cards.Attack)
	if _, err := r.PlayCard("p0", attack.ID, PlayOptions{}); err != nil {
		t.Fatalf("attack: %v", err)
	}
	assertConservation(t, r)

	// First turn: a safe draw.
	plantCard(r, cards.CatTaco)
	if res, err := r.DrawCard("p1"); err != nil || res.Outcome != DrawDrawn {
		t.Fatalf("safe draw: res=%v err=%v", res, err)
	}
	assertConservation(t, r)
	if err := r.EndTurn(); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if r.CurrentTurnID != "p1" {
		t.Fatalf("CurrentTurnID = %s, want p1 (one attack turn left)", r.CurrentTurnID)
	}

	// Second turn: kitten, defused back on top.
	plantCard(r, cards.ExplodingKitten)
	if res, err := r.DrawCard("p1"); err != nil || res.Outcome != DrawNeedsDefuse {
		t.Fatalf("kitten draw: res=%v err=%v", res, err)
	}
	assertConservation(t, r)
	if err := r.DefuseKitten("p1", len(r.Deck)); err != nil {
		t.Fatalf("DefuseKitten: %v", err)
	}
	assertConservation(t, r)
	if err := r.EndTurn(); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if r.CurrentTurnID != "p2" {
		t.Fatalf("CurrentTurnID = %s, want p2", r.CurrentTurnID)
	}

	// p2 has no defuse and draws the planted kitten.
	stripDefuses(r, "p2")
	res, err := r.DrawCard("p2")
	if err != nil || res.Outcome != DrawExploded {
		t.Fatalf("exploding draw: res=%v err=%v", res, err)
	}
	assertConservation(t, r)
	if _, over := r.CheckGameEnd(); over {
		t.Fatal("game ended with 2 survivors")
	}

	// p1 drops mid-game; p0 wins.
	if !r.EliminateDisconnected("p1") {
		t.Fatal("EliminateDisconnected failed")
	}
	assertConservation(t, r)
	winner, over := r.CheckGameEnd()
	if !over || winner.ID != "p0" {
		t.Fatalf("winner = (%v, %v), want p0", winner.ID, over)
	}
}
