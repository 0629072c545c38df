package game

import "kittenbomb/internal/cards"

// Card is a single card instance. Identity (ID) distinguishes otherwise
// identical cards; cards move between zones by reference, never duplicated.
type Card struct {
	ID   string     `json:"id"`
	Type cards.Type `json:"type"`
}

// Player holds one participant's state. Players are never removed from the
// room once a game has started; elimination is a flag.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Hand         []Card `json:"hand"`
	IsEliminated bool   `json:"isEliminated"`
	IsConnected  bool   `json:"isConnected"`
	IsHost       bool   `json:"isHost"`
	DefuseCount  int    `json:"defuseCount"`
	PendingTurns int    `json:"pendingTurns"`
}

// removeCard takes the card with the given id out of the hand.
func (p *Player) removeCard(cardID string) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// removeCardOfType takes the first card of the given type out of the hand.
func (p *Player) removeCardOfType(t cards.Type) (Card, bool) {
	for i, c := range p.Hand {
		if c.Type == t {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

func (p *Player) holdsCard(cardID string) bool {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return true
		}
	}
	return false
}
