package domain

// Settlement carries the zero-sum gold movements produced by a finished
// round.
type Settlement struct {
	BalanceChanges map[string]int64
}

// CalculateSettlement derives wallet changes from the round's finish order:
// finish index i earns baseStake * (N-1-2i), so the Great Dalmuti gains the
// most, the Greater Peon loses the same amount, and the total is zero.
func (g *Game) CalculateSettlement(baseStake int64) Settlement {
	n := len(g.FinishOrder)
	changes := make(map[string]int64, n)
	for i, userID := range g.FinishOrder {
		changes[userID] = baseStake * int64(n-1-2*i)
	}
	return Settlement{BalanceChanges: changes}
}
