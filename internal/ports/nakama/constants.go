package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken is the Nakama RPC id clients call for voice channel
	// access tokens.
	RpcVoiceToken = "voice_token"

	// MatchNameDalmuti is the authoritative match handler name registered
	// with Nakama.
	MatchNameDalmuti = "dalmuti_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame         int64 = 1
	OpPlayCards         int64 = 2
	OpPassTurn          int64 = 3
	OpMarkReady         int64 = 4
	OpGiveBackCards     int64 = 5
	OpDeclareRevolution int64 = 6
	OpAdvanceRound      int64 = 7

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameStarted    int64 = 103
	OpHandDealt      int64 = 104 // send privately
	OpTaxStaged      int64 = 105
	OpTaxResolved    int64 = 106
	OpPlayerReady    int64 = 107
	OpRevolution     int64 = 108
	OpPlayStarted    int64 = 109
	OpCardPlayed     int64 = 110
	OpTurnPassed     int64 = 111
	OpPlayerFinished int64 = 112
	OpTrickWon       int64 = 113
	OpRoundEnded     int64 = 114
	OpRoundStarted   int64 = 115

	// OpStateSnapshot carries each player's redacted view; always targeted.
	OpStateSnapshot int64 = 120
	OpGameError     int64 = 130
)
