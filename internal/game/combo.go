package game

import (
	"fmt"

	"kittenbomb/internal/cards"
)

// comboSize maps a combo kind to the number of cat cards it consumes.
var comboSize = map[ComboKind]int{
	ComboTwoOfAKind:   2,
	ComboThreeOfAKind: 3,
	ComboFiveDiff:     5,
}

// PlayCombo discards a set of cat cards as a combo. Feral cats are
// wildcards: they match any type in a two/three-of-a-kind and count as
// their own type in a five-different set.
//
//	2-kind: steal a blind card from target (TakeComboCard follows)
//	3-kind: demand a named type from target (ResolveComboRequest follows)
//	5-diff: retrieve any card from the discard pile (TakeDiscardCard follows)
func (r *Room) PlayCombo(playerID string, cardIDs []string, kind ComboKind, targetID string, requested cards.Type) (PlayResult, error) {
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

	size, ok := comboSize[kind]
	if !ok || len(cardIDs) != size {
		return PlayResult{}, ErrInvalidCombo
	}

	picked := make([]Card, 0, size)
	seen := make(map[string]bool, size)
	for _, id := range cardIDs {
		if seen[id] {
			return PlayResult{}, ErrInvalidCombo
		}
		seen[id] = true
		if !player.holdsCard(id) {
			return PlayResult{}, ErrCardNotInHand
		}
		c := cardOfID(player.Hand, id)
		if !cards.IsCat(c.Type) {
			return PlayResult{}, ErrInvalidCombo
		}
		picked = append(picked, c)
	}
	if !comboMatches(kind, picked) {
		return PlayResult{}, ErrInvalidCombo
	}

	var target *Player
	switch kind {
	case ComboTwoOfAKind, ComboThreeOfAKind:
		if targetID == "" {
			return PlayResult{}, ErrTargetRequired
		}
		target = r.findPlayer(targetID)
		if target == nil || target.ID == playerID || target.IsEliminated {
			return PlayResult{}, ErrInvalidTarget
		}
		if kind == ComboThreeOfAKind && cards.Get(requested).Name == "" {
			return PlayResult{}, ErrInvalidCombo
		}
	}

	for _, id := range cardIDs {
		c, _ := player.removeCard(id)
		r.Discard = append(r.Discard, c)
	}
	r.addLog(LogEntry{Type: LogCardPlayed, PlayerID: playerID, PlayerName: player.Name,
		Message: fmt.Sprintf("%s played a %d-card cat combo", player.Name, size)})

	var res PlayResult
	switch kind {
	case ComboTwoOfAKind:
		// Stealing from an empty hand has no effect.
		if len(target.Hand) > 0 {
			p := newPendingAction(ActionCatCombo, playerID)
			p.TargetID = target.ID
			p.CardIDs = cardIDs
			p.ComboKind = kind
			r.Pending = p
			res.RequiresAction = ActionCatCombo
		}
	case ComboThreeOfAKind:
		p := newPendingAction(ActionCatCombo, playerID)
		p.TargetID = target.ID
		p.CardIDs = cardIDs
		p.ComboKind = kind
		p.RequestedType = requested
		r.Pending = p
		res.RequiresAction = ActionCatCombo
	case ComboFiveDiff:
		// The combo cards themselves land in the discard first, so the
		// pile is never empty here.
		p := newPendingAction(ActionCatCombo, playerID)
		p.CardIDs = cardIDs
		p.ComboKind = kind
		r.Pending = p
		res.RequiresAction = ActionCatCombo
	}

	r.touch()
	return res, nil
}

// comboMatches checks the type constraint of a combo. picked has
// already been verified to contain only cat cards.
func comboMatches(kind ComboKind, picked []Card) bool {
	switch kind {
	case ComboTwoOfAKind, ComboThreeOfAKind:
		var base cards.Type
		for _, c := range picked {
			if c.Type == cards.FeralCat {
				continue
			}
			if base == "" {
				base = c.Type
			} else if c.Type != base {
				return false
			}
		}
		return true
	case ComboFiveDiff:
		seen := make(map[cards.Type]bool, len(picked))
		for _, c := range picked {
			if seen[c.Type] {
				return false
			}
			seen[c.Type] = true
		}
		return true
	}
	return false
}

// TakeComboCard resolves a two-of-a-kind: the initiator blindly takes
// the identified card from the target's hand.
func (r *Room) TakeComboCard(takerID, cardID string) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return Card{}, ErrNotPlaying
	}
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.Type != ActionCatCombo ||
		p.ComboKind != ComboTwoOfAKind || p.InitiatorID != takerID {
		return Card{}, ErrActionNotPending
	}
	taker := r.findPlayer(takerID)
	target := r.findPlayer(p.TargetID)
	if taker == nil || target == nil {
		return Card{}, ErrPlayerNotFound
	}
	card, ok := target.removeCard(cardID)
	if !ok {
		return Card{}, ErrCardNotInHand
	}

	taker.Hand = append(taker.Hand, card)
	if card.Type == cards.Defuse {
		target.DefuseCount--
		taker.DefuseCount++
	}

	p.Status = ActionResolved
	r.Pending = nil
	r.addLog(LogEntry{Type: LogActionResolved, PlayerID: takerID, PlayerName: taker.Name,
		TargetID: target.ID, TargetName: target.Name,
		Message: fmt.Sprintf("%s stole a card from %s", taker.Name, target.Name)})
	r.touch()
	return card, nil
}

// ResolveComboRequest resolves a three-of-a-kind: the target hands over
// a card of the requested type if they hold one, otherwise nothing
// moves. The returned card is nil when the target had none.
func (r *Room) ResolveComboRequest(initiatorID string) (*Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.Type != ActionCatCombo ||
		p.ComboKind != ComboThreeOfAKind || p.InitiatorID != initiatorID {
		return nil, ErrActionNotPending
	}
	initiator := r.findPlayer(initiatorID)
	target := r.findPlayer(p.TargetID)
	if initiator == nil || target == nil {
		return nil, ErrPlayerNotFound
	}

	p.Status = ActionResolved
	r.Pending = nil

	card, ok := target.removeCardOfType(p.RequestedType)
	if !ok {
		r.addLog(LogEntry{Type: LogActionResolved, PlayerID: initiatorID, PlayerName: initiator.Name,
			TargetID: target.ID, TargetName: target.Name,
			Message: fmt.Sprintf("%s asked %s for %s but got nothing",
				initiator.Name, target.Name, cards.Get(p.RequestedType).Name)})
		r.touch()
		return nil, nil
	}

	initiator.Hand = append(initiator.Hand, card)
	if card.Type == cards.Defuse {
		target.DefuseCount--
		initiator.DefuseCount++
	}
	r.addLog(LogEntry{Type: LogActionResolved, PlayerID: initiatorID, PlayerName: initiator.Name,
		TargetID: target.ID, TargetName: target.Name,
		Message: fmt.Sprintf("%s took %s from %s",
			initiator.Name, cards.Get(card.Type).Name, target.Name)})
	r.touch()
	return &card, nil
}

// TakeDiscardCard resolves a five-different combo: the initiator
// retrieves any card from the discard pile.
func (r *Room) TakeDiscardCard(initiatorID, cardID string) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Phase != PhasePlaying {
		return Card{}, ErrNotPlaying
	}
	p := r.Pending
	if p == nil || p.Status != ActionWaiting || p.Type != ActionCatCombo ||
		p.ComboKind != ComboFiveDiff || p.InitiatorID != initiatorID {
		return Card{}, ErrActionNotPending
	}
	initiator := r.findPlayer(initiatorID)
	if initiator == nil {
		return Card{}, ErrPlayerNotFound
	}

	idx := -1
	for i, c := range r.Discard {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Card{}, ErrCardNotInDiscard
	}
	card := r.Discard[idx]
	r.Discard = append(r.Discard[:idx], r.Discard[idx+1:]...)

	initiator.Hand = append(initiator.Hand, card)
	if card.Type == cards.Defuse {
		initiator.DefuseCount++
	}

	p.Status = ActionResolved
	r.Pending = nil
	r.addLog(LogEntry{Type: LogActionResolved, PlayerID: initiatorID, PlayerName: initiator.Name,
		Message: fmt.Sprintf("%s retrieved %s from the discard pile",
			initiator.Name, cards.Get(card.Type).Name)})
	r.touch()
	return card, nil
}
