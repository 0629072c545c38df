package game

import (
	"time"

	"github.com/google/uuid"

	"kittenbomb/internal/cards"
)

// LogType classifies game log entries.
type LogType string

const (
	LogGameCreated    LogType = "game-created"
	LogGameStarted    LogType = "game-started"
	LogPlayerJoined   LogType = "player-joined"
	LogPlayerLeft     LogType = "player-left"
	LogCardPlayed     LogType = "card-played"
	LogCardDrawn      LogType = "card-drawn"
	LogPlayerExploded LogType = "player-exploded"
	LogPlayerDefused  LogType = "player-defused"
	LogNopePlayed     LogType = "nope-played"
	LogActionResolved LogType = "action-resolved"
	LogTurnChanged    LogType = "turn-changed"
)

// LogEntry is one item of the room's audit trail. The log is game data
// shown to players, not server diagnostics.
type LogEntry struct {
	ID         string     `json:"id"`
	Timestamp  int64      `json:"timestamp"`
	Type       LogType    `json:"type"`
	PlayerID   string     `json:"playerId,omitempty"`
	PlayerName string     `json:"playerName,omitempty"`
	CardType   cards.Type `json:"cardType,omitempty"`
	TargetID   string     `json:"targetPlayerId,omitempty"`
	TargetName string     `json:"targetPlayerName,omitempty"`
	Message    string     `json:"message"`
}

// maxLogEntries bounds the in-memory log; oldest entries are evicted first.
const maxLogEntries = 50

func (r *Room) addLog(entry LogEntry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UnixMilli()
	r.Log = append(r.Log, entry)
	if len(r.Log) > maxLogEntries {
		r.Log = r.Log[len(r.Log)-maxLogEntries:]
	}
}
