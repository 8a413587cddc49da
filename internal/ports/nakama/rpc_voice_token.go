package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"dalmuti/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcVoiceToken signs a voice access token for the authenticated user.
// Payload: {"action": "login" | "join", "channel": "<match id>"}
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	var req struct {
		Action  string `json:"action"`
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if req.Action == "" {
		req.Action = app.VoiceTokenActionLogin
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	issuer := env["voice_issuer"]
	secret := env["voice_secret"]
	domain := env["voice_domain"]
	if issuer == "" || secret == "" || domain == "" {
		issuer = "test-issuer"
		secret = "test-secret"
		domain = "voice.example.com"
		logger.Warn("Voice credentials missing from env, using test defaults.")
	}

	svc := app.NewVoiceService(secret, issuer, domain)
	token, err := svc.GenerateToken(userID, req.Action, req.Channel)
	if err != nil {
		logger.Error("Failed to generate voice token: %v", err)
		return "", runtime.NewError("Invalid voice token request", 3)
	}

	res := map[string]string{"token": token}
	resBytes, _ := json.Marshal(res)
	return string(resBytes), nil
}
