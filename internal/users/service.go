package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/shared/server/middleware"
	"sentimentiq-backend/internal/tier"
)

// ErrInvalidTier rejects tier values outside the known set.
var ErrInvalidTier = errors.New("invalid tier")

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the user identity from OAuth so history, quota, and
// tier lookups have a stable owner. First login lands on the standard tier.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	if user.Tier == "" {
		if existing, err := s.Repo.GetByID(ctx, user.ID); err == nil {
			user.Tier = existing.Tier
		} else {
			user.Tier = tier.Standard
		}
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// SetTier is an admin operation. Unknown tier values are rejected rather than
// normalized so a typo can never silently downgrade an account.
func (s *Service) SetTier(ctx context.Context, userID string, raw string) (tier.Tier, error) {
	if s == nil || s.Repo == nil {
		return tier.Guest, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return tier.Guest, errors.New("user id is required")
	}
	t, ok := tier.ParseExact(raw)
	if !ok {
		return tier.Guest, fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
	if err := s.Repo.SetTier(ctx, userID, string(t)); err != nil {
		return tier.Guest, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	if s == nil || s.Repo == nil {
		return 0, errors.New("users service not configured")
	}
	return s.Repo.Count(ctx)
}

// TierFor resolves the caller's tier for request gating. Guests and lookup
// failures resolve to Guest.
func (s *Service) TierFor(c *gin.Context) tier.Tier {
	if s == nil || s.Repo == nil || middleware.IsGuest(c) {
		return tier.Guest
	}
	user, err := s.Repo.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		return tier.Guest
	}
	return tier.Parse(string(user.Tier))
}
