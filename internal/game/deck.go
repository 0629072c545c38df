package game

import (
	"math/rand"

	"github.com/google/uuid"

	"kittenbomb/internal/cards"
)

// DeckConfig is the player-count-derived deck sizing tier.
type DeckConfig string

const (
	DeckSmall  DeckConfig = "small"
	DeckMedium DeckConfig = "medium"
	DeckFull   DeckConfig = "full"
)

// handSize is the number of cards dealt to each player before the
// guaranteed defuse is added.
const handSize = 7

type deckBand struct {
	min, max  int
	config    DeckConfig
	feralCats int
}

var deckBands = []deckBand{
	{2, 3, DeckSmall, 2},
	{4, 7, DeckMedium, 4},
	{8, 10, DeckFull, 6},
}

// configFor returns the deck tier and feral cat count for a player count.
// Out-of-range counts fall back to medium.
func configFor(playerCount int) (DeckConfig, int) {
	for _, b := range deckBands {
		if playerCount >= b.min && playerCount <= b.max {
			return b.config, b.feralCats
		}
	}
	return DeckMedium, 4
}

// basePoolCounts fixes the action-card composition of the base pool.
// Cat cards (4 of each regular type) and feral cats are added separately.
var basePoolCounts = []struct {
	cardType cards.Type
	count    int
}{
	{cards.Attack, 4},
	{cards.Skip, 4},
	{cards.Favor, 4},
	{cards.Shuffle, 4},
	{cards.SeeTheFuture, 5},
	{cards.Nope, 5},
	{cards.AlterTheFuture, 3},
}

func newCard(t cards.Type) Card {
	return Card{ID: uuid.NewString(), Type: t}
}

// Setup is the result of generating a deck and initial hands.
type Setup struct {
	Deck   []Card
	Hands  [][]Card
	Config DeckConfig
	Total  int
}

// generateSetup builds the card set for playerCount players and deals
// initial hands. Hands are dealt from the shuffled hazard-free base pool,
// so exploding kittens and extra defuses never start in a hand; the
// guaranteed per-player defuse is appended afterwards. Leftover base
// cards, extra defuses and kittens are shuffled into the draw pile.
// kittenCount <= 0 means the default of playerCount-1 (minimum 1).
// Player-count validation happens at the room boundary, not here.
func generateSetup(playerCount, extraDefuses, kittenCount int) Setup {
	config, feralCats := configFor(playerCount)

	pool := make([]Card, 0, 64)
	for _, bc := range basePoolCounts {
		for i := 0; i < bc.count; i++ {
			pool = append(pool, newCard(bc.cardType))
		}
	}
	for _, catType := range cards.RegularCats() {
		for i := 0; i < 4; i++ {
			pool = append(pool, newCard(catType))
		}
	}
	for i := 0; i < feralCats; i++ {
		pool = append(pool, newCard(cards.FeralCat))
	}
	shuffleCards(pool)

	// Deal 7 cards round-robin, popping from the shuffled pool's end.
	// Short hands on pool exhaustion are an accepted degenerate case.
	hands := make([][]Card, playerCount)
	for i := 0; i < handSize; i++ {
		for p := 0; p < playerCount; p++ {
			if len(pool) == 0 {
				break
			}
			hands[p] = append(hands[p], pool[len(pool)-1])
			pool = pool[:len(pool)-1]
		}
	}
	for p := range hands {
		hands[p] = append(hands[p], newCard(cards.Defuse))
	}

	if kittenCount <= 0 {
		kittenCount = playerCount - 1
	}
	if kittenCount < 1 {
		kittenCount = 1
	}

	deck := pool
	for i := 0; i < extraDefuses; i++ {
		deck = append(deck, newCard(cards.Defuse))
	}
	for i := 0; i < kittenCount; i++ {
		deck = append(deck, newCard(cards.ExplodingKitten))
	}
	shuffleCards(deck)

	total := len(deck)
	for _, h := range hands {
		total += len(h)
	}

	return Setup{Deck: deck, Hands: hands, Config: config, Total: total}
}

func shuffleCards(cs []Card) {
	rand.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })
}
