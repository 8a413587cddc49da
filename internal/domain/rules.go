package domain

// JestersOnlyRank is the effective rank of a play made entirely of jesters:
// 13, weaker than every normal rank.
const JestersOnlyRank = 13

// EffectiveRank returns the comparable rank of a played set after jester
// substitution. All non-jester cards must share a single rank; jesters count
// as that rank. A set of jesters alone ranks 13. Returns false for an empty
// or mixed-rank set.
func EffectiveRank(cards []Card) (int, bool) {
	if len(cards) == 0 {
		return 0, false
	}

	rank := 0
	for _, c := range cards {
		if c.Rank == JesterRank {
			continue
		}
		if rank == 0 {
			rank = c.Rank
			continue
		}
		if c.Rank != rank {
			return 0, false
		}
	}

	if rank == 0 {
		return JestersOnlyRank, true
	}
	return rank, true
}

// Beats reports whether a play at newRank takes a table held at tableRank.
// Lower is stronger.
func Beats(newRank, tableRank int) bool {
	return newRank < tableRank
}

// CanBeatTrick reports whether a play of count cards at rank may be laid
// over the given trick. Any valid set may lead a clear table.
func CanBeatTrick(t *Trick, rank, count int) bool {
	if t == nil {
		return true
	}
	return count == t.Count && Beats(rank, t.Rank)
}
