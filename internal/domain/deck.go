package domain

import "sort"

const (
	// DeckSize is the fixed size of a Dalmuti deck.
	DeckSize = 80
	// MaxRank is the weakest normal rank in the deck.
	MaxRank = 12
	// JesterRank is the rank value of a jester (wild card).
	JesterRank = 0
	// JesterCount is the number of jesters in the deck.
	JesterCount = 2
)

// NewDeck returns the 80-card Dalmuti deck: rank r appears r times for
// r in 1..12, plus two jesters. Ids are fresh and unique per call.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 1
	for r := 1; r <= MaxRank; r++ {
		for i := 0; i < r; i++ {
			deck = append(deck, Card{Rank: r, ID: id})
			id++
		}
	}
	for i := 0; i < JesterCount; i++ {
		deck = append(deck, Card{Rank: JesterRank, ID: id})
		id++
	}
	return deck
}

// SortHand orders a hand best-first for display: ascending by rank with
// jesters last. A jester's true rank is untouched.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cardPower(cards[i]) < cardPower(cards[j])
	})
}

// cardPower is the comparison value of a single card. Jesters compare as 13
// so they sort behind every normal rank.
func cardPower(c Card) int {
	if c.Rank == JesterRank {
		return JestersOnlyRank
	}
	return c.Rank
}

// WorstCards returns the n numerically worst cards of a hand, jesters worst
// of all. The hand itself is left untouched.
func WorstCards(hand []Card, n int) []Card {
	sorted := append([]Card(nil), hand...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return cardPower(sorted[i]) > cardPower(sorted[j])
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n:n]
}

// RemoveCards removes the given cards from a hand by id and returns the
// updated hand.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	removeIDs := make(map[int]bool, len(toRemove))
	for _, card := range toRemove {
		removeIDs[card.ID] = true
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if removeIDs[card.ID] {
			continue
		}
		updated = append(updated, card)
	}
	return updated
}

// CardsByID resolves card ids against a hand. It returns false if ids are
// empty, repeated, or name a card the hand does not hold.
func CardsByID(hand []Card, ids []int) ([]Card, bool) {
	if len(ids) == 0 {
		return nil, false
	}

	byID := make(map[int]Card, len(hand))
	for _, card := range hand {
		byID[card.ID] = card
	}

	cards := make([]Card, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		card, ok := byID[id]
		if !ok || seen[id] {
			return nil, false
		}
		seen[id] = true
		cards = append(cards, card)
	}
	return cards, true
}
