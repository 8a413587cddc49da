package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVoiceToken, rpcVoiceToken)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Find any match that is still gathering players for our game.
	query := "+label.open:>=1 +label.game:dalmuti +label.phase:lobby"

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := 7 // leave at least one open seat

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	var params struct {
		StakeTier string `json:"stake_tier"`
	}
	_ = json.Unmarshal([]byte(payload), &params)

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameDalmuti, map[string]interface{}{
		"stake_tier": params.StakeTier,
	})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
