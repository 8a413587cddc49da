package domain

// Phase represents the lifecycle stage of a Dalmuti match.
type Phase string

const (
	// PhaseLobby is the pre-game state where players gather.
	PhaseLobby Phase = "lobby"
	// PhaseTax is the taxation stage at the start of every round.
	PhaseTax Phase = "tax"
	// PhasePlaying is the active stage where tricks are contested.
	PhasePlaying Phase = "playing"
	// PhaseRoundOver is the display state between a finished round and the next tax stage.
	PhaseRoundOver Phase = "round_over"
)

// Card is a single card in the Dalmuti deck. Rank 1 is the strongest and 12
// the weakest; rank 0 is a jester, which substitutes for any rank when
// played. ID is unique within one deal and is how clients select cards; it
// carries no gameplay meaning.
type Card struct {
	Rank int `json:"rank"`
	ID   int `json:"id"`
}

// Player holds state for a participant in the match.
type Player struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Hand   []Card `json:"hand"`

	// SocialRank is the player's standing in the hierarchy, 1 = Great
	// Dalmuti. 0 until the first round's draw assigns one.
	SocialRank int `json:"social_rank"`

	Finished bool `json:"finished"`
	// FinishPosition is 1..N in the order hands emptied this round, 0 while
	// the player still holds cards.
	FinishPosition int `json:"finish_position"`
}

// Trick is the set of cards currently holding the table. A nil Trick means
// the table is clear and the next play leads.
type Trick struct {
	Cards []Card `json:"cards"`
	Rank  int    `json:"rank"`
	Count int    `json:"count"`
	// PlayedBy is the user id of the last player to beat the table.
	PlayedBy string `json:"played_by"`
}

// TaxDebt is a mandated card transfer from a low-ranked player to a
// high-ranked one at the start of a round. OfferedCards are staged out of
// the payer's hand before anyone acts; the exchange completes when the
// receiver gives back the same number of cards of their choosing.
type TaxDebt struct {
	FromUserID   string `json:"from_user_id"`
	ToUserID     string `json:"to_user_id"`
	Count        int    `json:"count"`
	OfferedCards []Card `json:"offered_cards"`
}

// Resolved reports whether the debt's exchange has completed (or was
// cancelled by a revolution).
func (d *TaxDebt) Resolved() bool {
	return d.Count == 0 && len(d.OfferedCards) == 0
}

// Game holds authoritative state for a Dalmuti match instance. All mutation
// happens through the app service; callers must serialize actions per match.
type Game struct {
	Phase   Phase              `json:"phase"`
	Players map[string]*Player `json:"players"`

	// SeatOrder is randomized once at game start and only matters for
	// display continuity around the table.
	SeatOrder   []string `json:"seat_order"`
	OwnerUserID string   `json:"owner_user_id"`
	Round       int      `json:"round"`

	Trick       *Trick          `json:"trick"`
	Passed      map[string]bool `json:"passed"`
	CurrentTurn string          `json:"current_turn"`

	// FinishOrder lists user ids best-first. During tax it is the order
	// that seeded this round's debts; during play it accumulates afresh.
	FinishOrder []string        `json:"finish_order"`
	Debts       []*TaxDebt      `json:"debts"`
	Ready       map[string]bool `json:"ready"`

	RevolutionBy      string `json:"revolution_by"`
	GreaterRevolution bool   `json:"greater_revolution"`
}

// NewGame creates a lobby-phase game for the given players. Only ownerID may
// later start it.
func NewGame(playerIDs []string, ownerID string) *Game {
	players := make(map[string]*Player, len(playerIDs))
	for _, userID := range playerIDs {
		if userID == "" {
			continue
		}
		players[userID] = &Player{UserID: userID, Name: userID}
	}
	return &Game{
		Phase:       PhaseLobby,
		Players:     players,
		OwnerUserID: ownerID,
		Passed:      make(map[string]bool),
		Ready:       make(map[string]bool),
	}
}

// CountUnfinished returns the number of players still holding cards.
func (g *Game) CountUnfinished() int {
	count := 0
	for _, pl := range g.Players {
		if !pl.Finished {
			count++
		}
	}
	return count
}

// AssignRanksFromFinishOrder snapshots social ranks 1..N from the current
// finish order.
func (g *Game) AssignRanksFromFinishOrder() {
	for i, userID := range g.FinishOrder {
		if pl, ok := g.Players[userID]; ok {
			pl.SocialRank = i + 1
		}
	}
}
