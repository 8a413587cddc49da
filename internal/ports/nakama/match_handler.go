package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"dalmuti/internal/app"
	"dalmuti/internal/config"
	"dalmuti/internal/domain"
	"dalmuti/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Label is the match label advertised for quick-match queries.
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The match loop serializes every action against it.
type MatchState struct {
	Seats     [app.MaxPlayers]string      `json:"seats"`      // user IDs; empty string means seat is empty
	OwnerSeat int                         `json:"owner_seat"` // seat index of the match owner
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // userId -> presence for targeted messaging
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"` // nil while the lobby gathers

	Economy   ports.EconomyPort `json:"-"`
	StakeTier string            `json:"stake_tier"`

	// RoundAdvanceDelay is the seconds the round-over screen lingers before
	// the handler advances on the owner's behalf.
	RoundAdvanceDelay int   `json:"round_advance_delay"`
	RoundOverSince    int64 `json:"round_over_since"` // tick when RoundOver was entered; 0 = not waiting
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

// OwnerUserID returns the user id seated as owner, or "" when unassigned.
func (ms *MatchState) OwnerUserID() string {
	if ms.OwnerSeat < 0 || ms.OwnerSeat >= len(ms.Seats) {
		return ""
	}
	return ms.Seats[ms.OwnerSeat]
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		OwnerSeat:         -1,
		Presences:         make(map[string]runtime.Presence),
		App:               app.NewService(nil),
		Economy:           NewNakamaEconomyAdapter(nk),
		RoundAdvanceDelay: config.GetRoundAdvanceDelaySeconds(),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["dalmuti_round_advance_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.RoundAdvanceDelay = i
		}
	}
	if val, ok := env["dalmuti_stake_tier"]; ok {
		state.StakeTier = val
	}
	if tier, ok := params["stake_tier"].(string); ok && tier != "" {
		state.StakeTier = tier
	}

	tickRate := 1
	return state, tickRate, buildLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Rejoins are always welcome; the seat is still held.
	for _, seat := range matchState.Seats {
		if seat == presence.GetUserId() {
			return state, true, ""
		}
	}

	if matchState.Game != nil {
		return state, false, "match_in_progress"
	}
	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "match_full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		seat := -1
		rejoin := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == userID {
				seat = i
				rejoin = true
				break
			}
		}
		if seat < 0 {
			for i, seatUserID := range matchState.Seats {
				if seatUserID == "" {
					matchState.Seats[i] = userID
					seat = i
					break
				}
			}
		}
		if seat < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
			continue
		}

		if matchState.OwnerSeat < 0 {
			matchState.OwnerSeat = seat
		}

		if !rejoin {
			evt, _ := json.Marshal(map[string]any{
				"user_id": userID,
				"name":    p.GetUsername(),
				"seat":    seat + 1,
				"owner":   seat == matchState.OwnerSeat,
			})
			_ = dispatcher.BroadcastMessage(OpPlayerJoined, evt, nil, nil, true)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendSnapshots(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave frees seats and reassigns the owner; the match terminates once
// nobody is seated.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		for i, seatUserID := range matchState.Seats {
			if seatUserID == userID {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, i)
				evt, _ := json.Marshal(map[string]any{"user_id": userID, "seat": i + 1})
				_ = dispatcher.BroadcastMessage(OpPlayerLeft, evt, nil, nil, true)
				break
			}
		}
	}

	if matchState.OwnerUserID() == "" {
		matchState.OwnerSeat = -1
		for i, seatUserID := range matchState.Seats {
			if seatUserID != "" {
				matchState.OwnerSeat = i
				if matchState.Game != nil {
					// The timer path and any future lobby both act as the
					// owner; follow the seat, not the original identity.
					matchState.Game.OwnerUserID = seatUserID
				}
				break
			}
		}
	}

	if matchState.GetOccupiedSeatCount() == 0 {
		logger.Info("MatchLeave: Terminating empty match.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handleCardAction(ctx, matchState, dispatcher, logger, msg, matchState.App.PlayCards)
		case OpGiveBackCards:
			mh.handleCardAction(ctx, matchState, dispatcher, logger, msg, matchState.App.GiveBackCards)
		case OpPassTurn:
			mh.handleSimpleAction(ctx, matchState, dispatcher, logger, msg, matchState.App.PassTurn)
		case OpMarkReady:
			mh.handleSimpleAction(ctx, matchState, dispatcher, logger, msg, matchState.App.MarkReady)
		case OpDeclareRevolution:
			mh.handleSimpleAction(ctx, matchState, dispatcher, logger, msg, matchState.App.DeclareRevolution)
		case OpAdvanceRound:
			mh.handleSimpleAction(ctx, matchState, dispatcher, logger, msg, matchState.App.AdvanceRound)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processRoundAdvanceTimer(ctx, matchState, dispatcher, logger)
	return matchState
}

// processRoundAdvanceTimer fires AdvanceRound on the owner's behalf once
// the round-over screen has lingered long enough. A manual advance lands
// first and simply resets the wait.
func (mh *matchHandler) processRoundAdvanceTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Phase != domain.PhaseRoundOver {
		state.RoundOverSince = 0
		return
	}

	if state.RoundOverSince == 0 {
		state.RoundOverSince = state.Tick
		return
	}
	if state.Tick-state.RoundOverSince < int64(state.RoundAdvanceDelay) {
		return
	}

	state.RoundOverSince = 0
	events, err := state.App.AdvanceRound(state.Game, state.Game.OwnerUserID)
	if err != nil {
		// A stale trigger after the phase moved on is not an error worth
		// surfacing to anyone.
		logger.Debug("processRoundAdvanceTimer: advance skipped: %v", err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Game != nil {
		mh.sendError(state, dispatcher, logger, senderID, "match already started")
		return
	}

	playerIDs := make([]string, 0, len(state.Seats))
	for _, seatUserID := range state.Seats {
		if seatUserID != "" {
			playerIDs = append(playerIDs, seatUserID)
		}
	}

	game := domain.NewGame(playerIDs, state.OwnerUserID())
	for userID, pl := range game.Players {
		if p, exists := state.Presences[userID]; exists {
			pl.Name = p.GetUsername()
		}
	}

	events, err := state.App.StartGame(game, senderID)
	if err != nil {
		logger.Warn("handleStartGame: User %s failed to start game: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}

	state.Game = game
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	logger.Info("handleStartGame: Game started with %d players.", len(playerIDs))
}

// cardAction is an app use-case taking a card id selection.
type cardAction func(g *domain.Game, actorID string, cardIDs []int) ([]app.Event, error)

// simpleAction is an app use-case with no payload beyond the actor.
type simpleAction func(g *domain.Game, actorID string) ([]app.Event, error)

func (mh *matchHandler) handleCardAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, action cardAction) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, "match not started")
		return
	}

	var payload struct {
		CardIDs []int `json:"card_ids"`
	}
	if err := json.Unmarshal(msg.GetData(), &payload); err != nil {
		logger.Warn("handleCardAction: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, "invalid payload")
		return
	}

	events, err := action(state.Game, senderID, payload.CardIDs)
	if err != nil {
		logger.Warn("handleCardAction: User %s rejected (op %d): %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleSimpleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, action simpleAction) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, "match not started")
		return
	}

	events, err := action(state.Game, senderID)
	if err != nil {
		logger.Warn("handleSimpleAction: User %s rejected (op %d): %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, err.Error())
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// dispatchEvents converts app events to wire messages, settles finished
// rounds, and refreshes every player's private snapshot.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := eventOpCode(ev.Kind)
		if !ok {
			logger.Warn("dispatchEvents: Unknown event kind: %v", ev.Kind)
			continue
		}

		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("dispatchEvents: Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, userID := range ev.Recipients {
				if p, exists := state.Presences[userID]; exists {
					recipients = append(recipients, p)
				}
			}
			// Targeted events must never fall back to a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}

		_ = dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)

		if ev.Kind == app.EventRoundEnded {
			mh.settleRound(ctx, state, logger)
		}
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.sendSnapshots(state, dispatcher, logger)
}

func eventOpCode(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventGameStarted:
		return OpGameStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventTaxStaged:
		return OpTaxStaged, true
	case app.EventTaxResolved:
		return OpTaxResolved, true
	case app.EventPlayerReady:
		return OpPlayerReady, true
	case app.EventRevolution:
		return OpRevolution, true
	case app.EventPlayStarted:
		return OpPlayStarted, true
	case app.EventCardPlayed:
		return OpCardPlayed, true
	case app.EventTurnPassed:
		return OpTurnPassed, true
	case app.EventPlayerFinished:
		return OpPlayerFinished, true
	case app.EventTrickWon:
		return OpTrickWon, true
	case app.EventRoundEnded:
		return OpRoundEnded, true
	case app.EventRoundStarted:
		return OpRoundStarted, true
	default:
		return 0, false
	}
}

// settleRound applies the finished round's zero-sum gold settlement to
// Nakama wallets.
func (mh *matchHandler) settleRound(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Economy == nil || state.Game == nil {
		return
	}

	baseStake := config.GetBaseStake(state.StakeTier)
	settlement := state.Game.CalculateSettlement(baseStake)

	updates := make([]ports.WalletUpdate, 0, len(settlement.BalanceChanges))
	for userID, amount := range settlement.BalanceChanges {
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "round_settlement",
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("settleRound: Failed to update balances: %v", err)
	}
}

// sendSnapshots gives every connected player their own redacted view of the
// match. Hands and incoming tax cards only ever travel on these targeted
// messages.
func (mh *matchHandler) sendSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil {
		return
	}

	for _, seatUserID := range state.Seats {
		if seatUserID == "" {
			continue
		}
		p, exists := state.Presences[seatUserID]
		if !exists {
			continue
		}

		view := domain.ProjectFor(state.Game, seatUserID)
		data, err := json.Marshal(view)
		if err != nil {
			logger.Error("sendSnapshots: Failed to marshal view for %s: %v", seatUserID, err)
			continue
		}
		_ = dispatcher.BroadcastMessage(OpStateSnapshot, data, []runtime.Presence{p}, nil, true)
	}
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("sendError: Cannot send error to %s: presence not found", userID)
		return
	}

	data, _ := json.Marshal(map[string]any{"message": message})
	_ = dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(state)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

func buildLabel(state *MatchState) string {
	phase := string(domain.PhaseLobby)
	open := state.GetOpenSeatsCount()
	if state.Game != nil {
		phase = string(state.Game.Phase)
		open = 0 // no joins once the hierarchy exists
	}
	data, _ := json.Marshal(Label{Open: open, Game: "dalmuti", Phase: phase})
	return string(data)
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
