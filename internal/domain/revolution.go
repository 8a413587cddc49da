package domain

// HoldsBothJesters reports whether userID controls both jesters, counting
// the ones in hand plus any already staged as that player's own tax payment.
func (g *Game) HoldsBothJesters(userID string) bool {
	pl := g.Players[userID]
	if pl == nil {
		return false
	}

	jesters := 0
	for _, c := range pl.Hand {
		if c.Rank == JesterRank {
			jesters++
		}
	}
	for _, debt := range g.Debts {
		if debt.FromUserID != userID {
			continue
		}
		for _, c := range debt.OfferedCards {
			if c.Rank == JesterRank {
				jesters++
			}
		}
	}
	return jesters >= JesterCount
}

// CancelTaxation returns every staged card to its payer and clears all
// debts, resolved or not. Cards that already changed hands stay where the
// exchange put them.
func (g *Game) CancelTaxation() {
	for _, debt := range g.Debts {
		if len(debt.OfferedCards) == 0 {
			continue
		}
		if payer := g.Players[debt.FromUserID]; payer != nil {
			payer.Hand = append(payer.Hand, debt.OfferedCards...)
			SortHand(payer.Hand)
		}
	}
	g.Debts = nil
}

// InvertHierarchy reverses the finish order and reassigns social ranks from
// it, flipping the entire pecking order.
func (g *Game) InvertHierarchy() {
	for i, j := 0, len(g.FinishOrder)-1; i < j; i, j = i+1, j-1 {
		g.FinishOrder[i], g.FinishOrder[j] = g.FinishOrder[j], g.FinishOrder[i]
	}
	g.AssignRanksFromFinishOrder()
}
