package domain

import "sort"

// RankedOrder returns user ids ascending by social rank, the turn order of
// the play phase.
func (g *Game) RankedOrder() []string {
	order := make([]string, 0, len(g.Players))
	for userID := range g.Players {
		order = append(order, userID)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := g.Players[order[i]], g.Players[order[j]]
		if a.SocialRank != b.SocialRank {
			return a.SocialRank < b.SocialRank
		}
		return a.UserID < b.UserID
	})
	return order
}

// NextUnfinished returns the next player still holding cards after `after`
// in ascending social-rank order, wrapping from the worst rank back to the
// best. The search is bounded by the player count; if every player is
// finished it returns `after` unchanged.
func (g *Game) NextUnfinished(after string) string {
	order := g.RankedOrder()
	start := 0
	for i, userID := range order {
		if userID == after {
			start = i
			break
		}
	}
	for step := 1; step <= len(order); step++ {
		candidate := order[(start+step)%len(order)]
		if pl := g.Players[candidate]; pl != nil && !pl.Finished {
			return candidate
		}
	}
	return after
}

// TrickComplete reports whether the open trick has been conceded: every
// player still holding cards, other than the last player to beat the table,
// has passed.
func (g *Game) TrickComplete() bool {
	if g.Trick == nil {
		return false
	}
	for userID, pl := range g.Players {
		if pl.Finished || userID == g.Trick.PlayedBy {
			continue
		}
		if !g.Passed[userID] {
			return false
		}
	}
	return true
}
