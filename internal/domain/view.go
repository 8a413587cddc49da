package domain

// HiddenRank is the placeholder rank carried by redacted cards. It never
// occurs in a real deck.
const HiddenRank = -1

// SpectatorViewer is the viewer id that receives the unredacted state.
const SpectatorViewer = ""

// ProjectFor returns a deep copy of the game redacted for viewerID: every
// other player's hand becomes a same-length run of placeholder cards, and
// any debt owed to the viewer hides its staged cards while keeping the
// count visible. The spectator viewer sees everything.
func ProjectFor(g *Game, viewerID string) *Game {
	out := &Game{
		Phase:             g.Phase,
		Players:           make(map[string]*Player, len(g.Players)),
		SeatOrder:         append([]string(nil), g.SeatOrder...),
		OwnerUserID:       g.OwnerUserID,
		Round:             g.Round,
		Passed:            copyBoolSet(g.Passed),
		CurrentTurn:       g.CurrentTurn,
		FinishOrder:       append([]string(nil), g.FinishOrder...),
		Ready:             copyBoolSet(g.Ready),
		RevolutionBy:      g.RevolutionBy,
		GreaterRevolution: g.GreaterRevolution,
	}

	if g.Trick != nil {
		trick := *g.Trick
		trick.Cards = append([]Card(nil), g.Trick.Cards...)
		out.Trick = &trick
	}

	spectator := viewerID == SpectatorViewer

	for userID, pl := range g.Players {
		copied := *pl
		if spectator || userID == viewerID {
			copied.Hand = append([]Card(nil), pl.Hand...)
		} else {
			copied.Hand = placeholderHand(len(pl.Hand))
		}
		out.Players[userID] = &copied
	}

	out.Debts = make([]*TaxDebt, 0, len(g.Debts))
	for _, debt := range g.Debts {
		copied := *debt
		if !spectator && debt.ToUserID == viewerID {
			// The receiver learns how many cards are incoming, never which.
			copied.OfferedCards = nil
		} else {
			copied.OfferedCards = append([]Card(nil), debt.OfferedCards...)
		}
		out.Debts = append(out.Debts, &copied)
	}

	return out
}

// placeholderHand builds n hidden cards with synthetic ids so counts stay
// accurate without leaking identities.
func placeholderHand(n int) []Card {
	hand := make([]Card, n)
	for i := range hand {
		hand[i] = Card{Rank: HiddenRank, ID: -(i + 1)}
	}
	return hand
}

func copyBoolSet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}
