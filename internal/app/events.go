package app

import "dalmuti/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventTaxStaged      EventKind = "tax_staged"
	EventTaxResolved    EventKind = "tax_resolved"
	EventPlayerReady    EventKind = "player_ready"
	EventRevolution     EventKind = "revolution"
	EventPlayStarted    EventKind = "play_started"
	EventCardPlayed     EventKind = "card_played"
	EventTurnPassed     EventKind = "turn_passed"
	EventPlayerFinished EventKind = "player_finished"
	EventTrickWon       EventKind = "trick_won"
	EventRoundEnded     EventKind = "round_ended"
	EventRoundStarted   EventKind = "round_started"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	SeatOrder []string `json:"seat_order"`
	Round     int      `json:"round"`
}

// HandDealtPayload is always delivered privately to its owner.
type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Hand   []domain.Card `json:"hand"`
}

// DebtSummary describes a debt without exposing staged card identities.
type DebtSummary struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Count      int    `json:"count"`
}

type TaxStagedPayload struct {
	Debts []DebtSummary `json:"debts"`
}

type TaxResolvedPayload struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Count      int    `json:"count"`
}

type PlayerReadyPayload struct {
	UserID string `json:"user_id"`
}

type RevolutionPayload struct {
	UserID  string `json:"user_id"`
	Greater bool   `json:"greater"`
}

type PlayStartedPayload struct {
	Round           int    `json:"round"`
	FirstTurnUserID string `json:"first_turn_user_id"`
}

type CardPlayedPayload struct {
	UserID         string        `json:"user_id"`
	Cards          []domain.Card `json:"cards"`
	Rank           int           `json:"rank"`
	NextTurnUserID string        `json:"next_turn_user_id"`
}

type TurnPassedPayload struct {
	UserID         string `json:"user_id"`
	NextTurnUserID string `json:"next_turn_user_id"`
}

type PlayerFinishedPayload struct {
	UserID         string `json:"user_id"`
	FinishPosition int    `json:"finish_position"`
}

type TrickWonPayload struct {
	WinnerUserID string `json:"winner_user_id"`
	LeaderUserID string `json:"leader_user_id"`
}

type RoundEndedPayload struct {
	Round       int      `json:"round"`
	FinishOrder []string `json:"finish_order"`
}

type RoundStartedPayload struct {
	Round int `json:"round"`
}
