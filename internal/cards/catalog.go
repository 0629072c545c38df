package cards

// Type identifies one of the 15 card kinds in the game.
type Type string

const (
	ExplodingKitten Type = "exploding-kitten"
	Defuse          Type = "defuse"
	Nope            Type = "nope"
	Attack          Type = "attack"
	Skip            Type = "skip"
	Favor           Type = "favor"
	Shuffle         Type = "shuffle"
	SeeTheFuture    Type = "see-the-future"
	AlterTheFuture  Type = "alter-the-future"
	CatTaco         Type = "cat-taco"
	CatHairyPotato  Type = "cat-hairy-potato"
	CatRainbow      Type = "cat-rainbow-ralphing"
	CatBeard        Type = "cat-beard"
	CatCattermelon  Type = "cat-cattermelon"
	FeralCat        Type = "feral-cat"
)

// Category groups card types for effect dispatch.
type Category string

const (
	CategoryLethal      Category = "lethal"
	CategoryDefense     Category = "defense"
	CategoryCounter     Category = "counter"
	CategoryOffensive   Category = "offensive"
	CategoryDefensive   Category = "defensive"
	CategoryInteractive Category = "interactive"
	CategoryTactical    Category = "tactical"
	CategoryUtility     Category = "utility"
	CategoryCat         Category = "cat"
)

// Definition describes a card type for effect dispatch and display.
type Definition struct {
	Type        Type     `json:"type"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	CanBeNoped  bool     `json:"canBeNoped"`
}

var definitions = map[Type]Definition{
	ExplodingKitten: {
		Type:        ExplodingKitten,
		Name:        "Exploding Kitten",
		Category:    CategoryLethal,
		Description: "You must show this card immediately. Unless you have a Defuse card, you're dead.",
		CanBeNoped:  false,
	},
	Defuse: {
		Type:        Defuse,
		Name:        "Defuse",
		Category:    CategoryDefense,
		Description: "If you drew an Exploding Kitten, you can play this card instead of dying.",
		CanBeNoped:  false,
	},
	Nope: {
		Type:        Nope,
		Name:        "Nope",
		Category:    CategoryCounter,
		Description: "Stop any action except an Exploding Kitten or a Defuse.",
		CanBeNoped:  true,
	},
	Attack: {
		Type:        Attack,
		Name:        "Attack",
		Category:    CategoryOffensive,
		Description: "End your turn without drawing. Force the next player to take 2 turns.",
		CanBeNoped:  true,
	},
	Skip: {
		Type:        Skip,
		Name:        "Skip",
		Category:    CategoryDefensive,
		Description: "End your turn without drawing a card.",
		CanBeNoped:  true,
	},
	Favor: {
		Type:        Favor,
		Name:        "Favor",
		Category:    CategoryInteractive,
		Description: "Force any other player to give you a card from their hand.",
		CanBeNoped:  true,
	},
	Shuffle: {
		Type:        Shuffle,
		Name:        "Shuffle",
		Category:    CategoryUtility,
		Description: "Shuffle the draw pile thoroughly.",
		CanBeNoped:  true,
	},
	SeeTheFuture: {
		Type:        SeeTheFuture,
		Name:        "See the Future",
		Category:    CategoryTactical,
		Description: "Privately view the top 3 cards of the draw pile.",
		CanBeNoped:  true,
	},
	AlterTheFuture: {
		Type:        AlterTheFuture,
		Name:        "Alter the Future",
		Category:    CategoryTactical,
		Description: "Privately view AND rearrange the top 3 cards of the draw pile.",
		CanBeNoped:  true,
	},
	CatTaco: {
		Type:        CatTaco,
		Name:        "Taco Cat",
		Category:    CategoryCat,
		Description: "Powerless alone. Play pairs or combos for special abilities.",
		CanBeNoped:  true,
	},
	CatHairyPotato: {
		Type:        CatHairyPotato,
		Name:        "Hairy Potato Cat",
		Category:    CategoryCat,
		Description: "Powerless alone. Play pairs or combos for special abilities.",
		CanBeNoped:  true,
	},
	CatRainbow: {
		Type:        CatRainbow,
		Name:        "Rainbow-Ralphing Cat",
		Category:    CategoryCat,
		Description: "Powerless alone. Play pairs or combos for special abilities.",
		CanBeNoped:  true,
	},
	CatBeard: {
		Type:        CatBeard,
		Name:        "Beard Cat",
		Category:    CategoryCat,
		Description: "Powerless alone. Play pairs or combos for special abilities.",
		CanBeNoped:  true,
	},
	CatCattermelon: {
		Type:        CatCattermelon,
		Name:        "Cattermelon",
		Category:    CategoryCat,
		Description: "Powerless alone. Play pairs or combos for special abilities.",
		CanBeNoped:  true,
	},
	FeralCat: {
		Type:        FeralCat,
		Name:        "Feral Cat",
		Category:    CategoryCat,
		Description: "Wild card! Counts as any cat card in combos.",
		CanBeNoped:  true,
	},
}

// Get returns the definition for a card type. The enum is closed, so a
// zero Definition for an unknown type indicates programmer error.
func Get(t Type) Definition {
	return definitions[t]
}

// IsCat reports whether the type is a cat card (feral included).
func IsCat(t Type) bool {
	return definitions[t].Category == CategoryCat
}

// RegularCats returns the five non-feral cat types.
func RegularCats() []Type {
	return []Type{CatTaco, CatHairyPotato, CatRainbow, CatBeard, CatCattermelon}
}

// All returns every card type in the catalog.
func All() []Type {
	all := make([]Type, 0, len(definitions))
	for t := range definitions {
		all = append(all, t)
	}
	return all
}
