package app

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"dalmuti/internal/domain"
)

const (
	// MinPlayersToStartGame is the minimum number of seated players the
	// owner needs before dealing the first round.
	MinPlayersToStartGame = 4
	// MaxPlayers is the table size limit.
	MaxPlayers = 8
)

// Rule violations never apply partially; the match simply keeps waiting for
// a valid action. The distinct sentinels exist for tests and logs, not for
// clients.
var (
	ErrNotOwner        = errors.New("actor is not match owner")
	ErrWrongPhase      = errors.New("action not allowed in current phase")
	ErrNotYourTurn     = errors.New("not this player's turn")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrWrongCardCount  = errors.New("wrong number of cards")
	ErrCardNotHeld     = errors.New("card not in player's hand")
	ErrInvalidCards    = errors.New("cards do not form a playable set")
	ErrCannotBeatTrick = errors.New("play does not beat the open trick")
	ErrNoOpenTrick     = errors.New("no open trick to pass on")
	ErrNoPendingTax    = errors.New("no unresolved tax debt for this receiver")
	ErrJestersRequired = errors.New("both jesters required to declare revolution")
)

// Service contains Dalmuti use-cases operating on domain state. It is the
// only authoritative source of randomness; viewers never re-derive shuffles.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// StartGame launches the first round: it draws the display seat order,
// draws the round-1 hierarchy by uniform random permutation, deals, and
// stages the first taxes. Only the match owner may start, only from the
// lobby.
func (s *Service) StartGame(g *domain.Game, actorID string) ([]Event, error) {
	if g.Phase != domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	if actorID != g.OwnerUserID {
		return nil, ErrNotOwner
	}
	if len(g.Players) < MinPlayersToStartGame {
		return nil, ErrTooFewPlayers
	}

	g.SeatOrder = s.permutePlayers(g)
	// The blind draw doubles as the round-1 rank assignment, so the first
	// taxes compute exactly as in every later round.
	g.FinishOrder = s.permutePlayers(g)
	g.AssignRanksFromFinishOrder()
	g.Round = 1

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{SeatOrder: g.SeatOrder, Round: g.Round},
	}}
	events = append(events, s.setupRound(g)...)
	beginTaxPhase(g)
	return events, nil
}

// MarkReady records a player's acknowledgment of the tax stage. Safe to
// repeat; a second call changes nothing.
func (s *Service) MarkReady(g *domain.Game, actorID string) ([]Event, error) {
	if g.Phase != domain.PhaseTax {
		return nil, ErrWrongPhase
	}
	if _, ok := g.Players[actorID]; !ok {
		return nil, ErrUnknownPlayer
	}

	g.Ready[actorID] = true

	events := []Event{{Kind: EventPlayerReady, Payload: PlayerReadyPayload{UserID: actorID}}}
	events = append(events, maybeBeginPlay(g)...)
	return events, nil
}

// GiveBackCards completes a tax exchange: the receiver's chosen cards go to
// the payer and the staged cards finally enter the receiver's hand. The
// receiver commits blind; staged identities stay hidden until after this
// action.
func (s *Service) GiveBackCards(g *domain.Game, actorID string, cardIDs []int) ([]Event, error) {
	if g.Phase != domain.PhaseTax {
		return nil, ErrWrongPhase
	}
	receiver, ok := g.Players[actorID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	debt := g.DebtOwedTo(actorID)
	if debt == nil {
		return nil, ErrNoPendingTax
	}
	if len(cardIDs) != debt.Count {
		return nil, ErrWrongCardCount
	}
	returned, ok := domain.CardsByID(receiver.Hand, cardIDs)
	if !ok {
		return nil, ErrCardNotHeld
	}

	payer := g.Players[debt.FromUserID]
	receiver.Hand = domain.RemoveCards(receiver.Hand, returned)
	payer.Hand = append(payer.Hand, returned...)
	domain.SortHand(payer.Hand)
	receiver.Hand = append(receiver.Hand, debt.OfferedCards...)
	domain.SortHand(receiver.Hand)

	count := debt.Count
	debt.Count = 0
	debt.OfferedCards = nil

	events := []Event{{
		Kind: EventTaxResolved,
		Payload: TaxResolvedPayload{
			FromUserID: debt.FromUserID,
			ToUserID:   debt.ToUserID,
			Count:      count,
		},
	}}
	events = append(events, maybeBeginPlay(g)...)
	return events, nil
}

// DeclareRevolution cancels the round's taxation if the declarer controls
// both jesters (in hand or staged as their own payment). Declared by the
// round's Greater Peon it also flips the entire hierarchy.
func (s *Service) DeclareRevolution(g *domain.Game, actorID string) ([]Event, error) {
	if g.Phase != domain.PhaseTax {
		return nil, ErrWrongPhase
	}
	if _, ok := g.Players[actorID]; !ok {
		return nil, ErrUnknownPlayer
	}
	if !g.HoldsBothJesters(actorID) {
		return nil, ErrJestersRequired
	}

	greater := len(g.FinishOrder) > 0 && g.FinishOrder[len(g.FinishOrder)-1] == actorID

	g.CancelTaxation()
	g.RevolutionBy = actorID
	if greater {
		g.InvertHierarchy()
		g.GreaterRevolution = true
	}

	events := []Event{{
		Kind:    EventRevolution,
		Payload: RevolutionPayload{UserID: actorID, Greater: greater},
	}}
	events = append(events, maybeBeginPlay(g)...)
	return events, nil
}

// PlayCards lays a set of the current player's cards on the table. The set
// must share one effective rank and, over an open trick, match its card
// count while beating its rank.
func (s *Service) PlayCards(g *domain.Game, actorID string, cardIDs []int) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrWrongPhase
	}
	pl, ok := g.Players[actorID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if g.CurrentTurn != actorID {
		return nil, ErrNotYourTurn
	}
	if len(cardIDs) == 0 {
		return nil, ErrWrongCardCount
	}
	cards, ok := domain.CardsByID(pl.Hand, cardIDs)
	if !ok {
		return nil, ErrCardNotHeld
	}
	rank, ok := domain.EffectiveRank(cards)
	if !ok {
		return nil, ErrInvalidCards
	}
	if !domain.CanBeatTrick(g.Trick, rank, len(cards)) {
		return nil, ErrCannotBeatTrick
	}

	pl.Hand = domain.RemoveCards(pl.Hand, cards)
	g.Trick = &domain.Trick{
		Cards:    cards,
		Rank:     rank,
		Count:    len(cards),
		PlayedBy: actorID,
	}
	g.Passed = make(map[string]bool)

	finished := false
	if len(pl.Hand) == 0 {
		pl.Finished = true
		pl.FinishPosition = len(g.FinishOrder) + 1
		g.FinishOrder = append(g.FinishOrder, actorID)
		finished = true
	}

	followUp := resolveTurn(g, actorID)

	events := []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			UserID:         actorID,
			Cards:          cards,
			Rank:           rank,
			NextTurnUserID: g.CurrentTurn,
		},
	}}
	if finished {
		events = append(events, Event{
			Kind:    EventPlayerFinished,
			Payload: PlayerFinishedPayload{UserID: actorID, FinishPosition: pl.FinishPosition},
		})
	}
	return append(events, followUp...), nil
}

// PassTurn concedes the open trick for this turn. Leading cannot be passed.
func (s *Service) PassTurn(g *domain.Game, actorID string) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrWrongPhase
	}
	if _, ok := g.Players[actorID]; !ok {
		return nil, ErrUnknownPlayer
	}
	if g.CurrentTurn != actorID {
		return nil, ErrNotYourTurn
	}
	if g.Trick == nil {
		return nil, ErrNoOpenTrick
	}

	g.Passed[actorID] = true
	followUp := resolveTurn(g, actorID)

	events := []Event{{
		Kind:    EventTurnPassed,
		Payload: TurnPassedPayload{UserID: actorID, NextTurnUserID: g.CurrentTurn},
	}}
	return append(events, followUp...), nil
}

// AdvanceRound moves a finished round into the next tax stage: fresh deal,
// new debts from the finish order just produced. Owner-only; the
// presentation layer fires it from a timer but late or duplicate triggers
// land in the wrong phase and are rejected.
func (s *Service) AdvanceRound(g *domain.Game, actorID string) ([]Event, error) {
	if g.Phase != domain.PhaseRoundOver {
		return nil, ErrWrongPhase
	}
	if actorID != g.OwnerUserID {
		return nil, ErrNotOwner
	}

	g.Trick = nil
	g.Passed = make(map[string]bool)
	for _, pl := range g.Players {
		pl.Finished = false
		pl.FinishPosition = 0
	}

	events := []Event{{Kind: EventRoundStarted, Payload: RoundStartedPayload{Round: g.Round}}}
	events = append(events, s.setupRound(g)...)
	beginTaxPhase(g)
	return events, nil
}

// setupRound deals a fresh shuffled deck round-robin over the seat order,
// computes this round's debts from the finish order, and stages the
// payments. Hands are reported privately after staging so payers see what
// was taken.
func (s *Service) setupRound(g *domain.Game) []Event {
	deck := domain.NewDeck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	for _, pl := range g.Players {
		pl.Hand = nil
	}
	for i, card := range deck {
		userID := g.SeatOrder[i%len(g.SeatOrder)]
		g.Players[userID].Hand = append(g.Players[userID].Hand, card)
	}

	g.Debts = domain.ComputeTaxDebts(g.FinishOrder)
	g.StageTaxPayments()

	var events []Event
	for _, userID := range g.SeatOrder {
		pl := g.Players[userID]
		domain.SortHand(pl.Hand)
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: userID, Hand: pl.Hand},
			Recipients: []string{userID},
		})
	}

	if len(g.Debts) > 0 {
		summaries := make([]DebtSummary, 0, len(g.Debts))
		for _, debt := range g.Debts {
			summaries = append(summaries, DebtSummary{
				FromUserID: debt.FromUserID,
				ToUserID:   debt.ToUserID,
				Count:      debt.Count,
			})
		}
		events = append(events, Event{Kind: EventTaxStaged, Payload: TaxStagedPayload{Debts: summaries}})
	}
	return events
}

// beginTaxPhase performs the tax-entry cleanup: readiness and revolution
// markers reset every round.
func beginTaxPhase(g *domain.Game) {
	g.Ready = make(map[string]bool)
	g.RevolutionBy = ""
	g.GreaterRevolution = false
	g.Phase = domain.PhaseTax
}

// maybeBeginPlay opens the play phase once every debt is resolved and every
// player has acknowledged. Both gates hold even in a debt-free first round.
func maybeBeginPlay(g *domain.Game) []Event {
	if !g.DebtsResolved() {
		return nil
	}
	for userID := range g.Players {
		if !g.Ready[userID] {
			return nil
		}
	}
	return beginPlayPhase(g)
}

// beginPlayPhase clears per-round play state and hands the lead to the
// Great Dalmuti.
func beginPlayPhase(g *domain.Game) []Event {
	g.Debts = nil
	g.Trick = nil
	g.Passed = make(map[string]bool)
	for _, pl := range g.Players {
		pl.Finished = false
		pl.FinishPosition = 0
	}
	g.FinishOrder = nil

	order := g.RankedOrder()
	g.CurrentTurn = order[0]
	g.Phase = domain.PhasePlaying

	return []Event{{
		Kind:    EventPlayStarted,
		Payload: PlayStartedPayload{Round: g.Round, FirstTurnUserID: g.CurrentTurn},
	}}
}

// resolveTurn runs after every accepted play or pass: it settles a conceded
// trick, hands the turn onward, and closes the round once at most one
// player still holds cards.
func resolveTurn(g *domain.Game, actorID string) []Event {
	var events []Event

	if g.TrickComplete() {
		winner := g.Trick.PlayedBy
		leader := winner
		if g.Players[winner].Finished {
			// A winner who emptied their hand on the winning play cannot
			// lead; the next unfinished player in rank order does.
			leader = g.NextUnfinished(winner)
		}
		g.Trick = nil
		g.Passed = make(map[string]bool)
		g.CurrentTurn = leader
		events = append(events, Event{
			Kind:    EventTrickWon,
			Payload: TrickWonPayload{WinnerUserID: winner, LeaderUserID: leader},
		})
	} else {
		g.CurrentTurn = g.NextUnfinished(actorID)
	}

	if g.CountUnfinished() <= 1 {
		events = append(events, endRound(g)...)
	}
	return events
}

// endRound forces the last holdout into the final finish slot, snapshots
// the new hierarchy, and parks the match in the round-over display state.
func endRound(g *domain.Game) []Event {
	for _, userID := range g.RankedOrder() {
		pl := g.Players[userID]
		if pl.Finished {
			continue
		}
		pl.Finished = true
		pl.FinishPosition = len(g.FinishOrder) + 1
		g.FinishOrder = append(g.FinishOrder, userID)
	}

	g.AssignRanksFromFinishOrder()
	g.Trick = nil
	g.Passed = make(map[string]bool)
	g.CurrentTurn = ""

	ended := g.Round
	g.Round++
	g.Phase = domain.PhaseRoundOver

	return []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			Round:       ended,
			FinishOrder: append([]string(nil), g.FinishOrder...),
		},
	}}
}

// permutePlayers returns a uniform random permutation of the player ids.
func (s *Service) permutePlayers(g *domain.Game) []string {
	ids := make([]string, 0, len(g.Players))
	for userID := range g.Players {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}
