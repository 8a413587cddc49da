package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService signs access tokens for the per-match voice channels.
type VoiceService struct {
	secret string
	issuer string
	domain string
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"

	voiceTokenTTL = time.Hour
)

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
	}
}

// GenerateToken signs an HS256 token for the given action. Join tokens
// target a match voice channel; login tokens target the user themselves.
func (s *VoiceService) GenerateToken(user, action, channelName string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, channelName, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": time.Now().Add(voiceTokenTTL).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

func (s *VoiceService) channelURI(channelName string) string {
	return "sip:confctl-g-" + channelName + "@" + s.domain
}

func (s *VoiceService) targetURI(action, channelName, userURI string) (string, error) {
	switch action {
	case VoiceTokenActionLogin:
		return userURI, nil
	case VoiceTokenActionJoin:
		if channelName == "" {
			return "", fmt.Errorf("channel name is required for join tokens")
		}
		return s.channelURI(channelName), nil
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}
}
