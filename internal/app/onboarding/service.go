package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"dalmuti/internal/ports"
)

const defaultWelcomeGold = 5000

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding
	// continued.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when the grant was already recorded for
	// this account.
	WelcomeBonusGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	bonuses  ports.WelcomeBonusPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/bonuses must be non-nil; rng may be nil to use a time-seeded
// default.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		bonuses:  bonuses,
		rng:      rng,
	}
}

// OnboardNewUser initializes profile and wallet for a newly created
// account. Profile updates are best-effort; the welcome grant is the part
// that must land.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, defaultWelcomeGold, map[string]interface{}{
		"reason": "welcome_bonus",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant welcome bonus: %w", err)
	}
	result.WelcomeBonusGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Noble", "Humble", "Cunning", "Gilded", "Merry", "Sly", "Bold", "Ragged", "Grand", "Lucky"}
	nouns := []string{"Dalmuti", "Peon", "Merchant", "Jester", "Baron", "Scribe", "Abbot", "Knight", "Miller", "Duke"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
