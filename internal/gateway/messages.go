package gateway

import (
	"encoding/json"

	"kittenbomb/internal/cards"
	"kittenbomb/internal/game"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encode(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// Client -> server payloads.

type createGamePayload struct {
	PlayerName string `json:"playerName"`
}

type joinGamePayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type startGamePayload struct {
	ExtraDefuses int `json:"extraDefuses"`
	KittenCount  int `json:"kittenCount"`
}

type playCardPayload struct {
	CardID         string `json:"cardId"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
}

type playComboPayload struct {
	CardIDs        []string       `json:"cardIds"`
	ComboType      game.ComboKind `json:"comboType"`
	TargetPlayerID string         `json:"targetPlayerId,omitempty"`
	RequestedType  cards.Type     `json:"requestedCardType,omitempty"`
}

type defuseKittenPayload struct {
	Position int `json:"position"`
}

type giveFavorCardPayload struct {
	CardID     string `json:"cardId"`
	ToPlayerID string `json:"toPlayerId"`
}

type takeCardPayload struct {
	CardID string `json:"cardId"`
}

type rearrangeDeckPayload struct {
	Cards []game.Card `json:"cards"`
}

// Server -> client payloads.

type errorPayload struct {
	Message string `json:"message"`
}

type joinedPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type gameStatePayload struct {
	GameState    game.State `json:"gameState"`
	YourPlayerID string     `json:"yourPlayerId"`
}

type drawResultPayload struct {
	Outcome game.DrawOutcome `json:"outcome"`
	Card    *game.Card       `json:"card,omitempty"`
}

type futurePayload struct {
	Cards []game.Card `json:"cards"`
}

type comboCardPayload struct {
	Card *game.Card `json:"card,omitempty"`
}

type gameEndPayload struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}
