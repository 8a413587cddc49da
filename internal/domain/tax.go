package domain

const (
	// GreaterTaxCount is the toll the worst-ranked player owes the best.
	GreaterTaxCount = 2
	// LesserTaxCount is the toll the second-worst player owes the second-best.
	LesserTaxCount = 1
)

// ComputeTaxDebts derives a round's debts from the finish order that seeds
// it (best-first). Two or more players create the greater debt; four or more
// add the lesser one.
func ComputeTaxDebts(finishOrder []string) []*TaxDebt {
	n := len(finishOrder)
	var debts []*TaxDebt
	if n >= 2 {
		debts = append(debts, &TaxDebt{
			FromUserID: finishOrder[n-1],
			ToUserID:   finishOrder[0],
			Count:      GreaterTaxCount,
		})
	}
	if n >= 4 {
		debts = append(debts, &TaxDebt{
			FromUserID: finishOrder[n-2],
			ToUserID:   finishOrder[1],
			Count:      LesserTaxCount,
		})
	}
	return debts
}

// StageTaxPayments moves each payer's numerically worst cards out of their
// hand into the debt's offer. Payers never choose what they surrender; this
// runs before anyone may act on the tax phase.
func (g *Game) StageTaxPayments() {
	for _, debt := range g.Debts {
		payer := g.Players[debt.FromUserID]
		if payer == nil {
			continue
		}
		offered := WorstCards(payer.Hand, debt.Count)
		payer.Hand = RemoveCards(payer.Hand, offered)
		debt.OfferedCards = offered
	}
}

// DebtOwedTo returns the unresolved debt naming userID as receiver, or nil.
func (g *Game) DebtOwedTo(userID string) *TaxDebt {
	for _, debt := range g.Debts {
		if debt.ToUserID == userID && !debt.Resolved() {
			return debt
		}
	}
	return nil
}

// DebtsResolved reports whether every debt has completed its exchange. A
// round with no debts counts as resolved.
func (g *Game) DebtsResolved() bool {
	for _, debt := range g.Debts {
		if !debt.Resolved() {
			return false
		}
	}
	return true
}
