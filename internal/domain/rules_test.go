package domain

import (
	"testing"
)

func TestEffectiveRank(t *testing.T) {
	tests := []struct {
		name     string
		cards    []Card
		wantRank int
		wantOK   bool
	}{
		{
			name:     "Single",
			cards:    []Card{{Rank: 7, ID: 1}},
			wantRank: 7,
			wantOK:   true,
		},
		{
			name:     "TripleSameRank",
			cards:    []Card{{Rank: 9, ID: 1}, {Rank: 9, ID: 2}, {Rank: 9, ID: 3}},
			wantRank: 9,
			wantOK:   true,
		},
		{
			name:     "JesterFillsPair",
			cards:    []Card{{Rank: 5, ID: 1}, {Rank: JesterRank, ID: 2}},
			wantRank: 5,
			wantOK:   true,
		},
		{
			name:     "SingleJester",
			cards:    []Card{{Rank: JesterRank, ID: 1}},
			wantRank: JestersOnlyRank,
			wantOK:   true,
		},
		{
			name:     "BothJesters",
			cards:    []Card{{Rank: JesterRank, ID: 1}, {Rank: JesterRank, ID: 2}},
			wantRank: JestersOnlyRank,
			wantOK:   true,
		},
		{
			name:   "MixedRanks",
			cards:  []Card{{Rank: 5, ID: 1}, {Rank: 6, ID: 2}},
			wantOK: false,
		},
		{
			name:   "MixedRanksWithJester",
			cards:  []Card{{Rank: 5, ID: 1}, {Rank: 6, ID: 2}, {Rank: JesterRank, ID: 3}},
			wantOK: false,
		},
		{
			name:   "Empty",
			cards:  nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, ok := EffectiveRank(tt.cards)
			if ok != tt.wantOK {
				t.Fatalf("ok = %t, want %t", ok, tt.wantOK)
			}
			if ok && rank != tt.wantRank {
				t.Fatalf("rank = %d, want %d", rank, tt.wantRank)
			}
		})
	}
}

func TestBeats(t *testing.T) {
	if !Beats(3, 7) {
		t.Fatal("rank 3 should beat rank 7")
	}
	if Beats(7, 7) {
		t.Fatal("equal rank must not beat")
	}
	if Beats(9, 7) {
		t.Fatal("rank 9 must not beat rank 7")
	}
	if !Beats(12, JestersOnlyRank) {
		t.Fatal("rank 12 should beat a jesters-only play")
	}
}

func TestCanBeatTrick(t *testing.T) {
	openTrick := &Trick{Rank: 7, Count: 2, PlayedBy: "u1"}

	tests := []struct {
		name  string
		trick *Trick
		rank  int
		count int
		want  bool
	}{
		{name: "LeadOnClearTable", trick: nil, rank: 12, count: 5, want: true},
		{name: "LowerRankSameCount", trick: openTrick, rank: 5, count: 2, want: true},
		{name: "LowerRankWrongCount", trick: openTrick, rank: 5, count: 3, want: false},
		{name: "EqualRank", trick: openTrick, rank: 7, count: 2, want: false},
		{name: "HigherRank", trick: openTrick, rank: 9, count: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanBeatTrick(tt.trick, tt.rank, tt.count); got != tt.want {
				t.Fatalf("CanBeatTrick() = %t, want %t", got, tt.want)
			}
		})
	}
}
