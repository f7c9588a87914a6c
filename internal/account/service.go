package account

import (
	"context"
	"errors"
	"strings"

	"sentimentiq-backend/internal/analysis"
)

// Service migrates guest-owned data to an authenticated account.
type Service struct {
	AnalysisRepo analysis.Repo
}

type ClaimResult struct {
	MigratedAnalyses int `json:"migratedAnalyses"`
}

func NewService(analysisRepo analysis.Repo) *Service {
	return &Service{AnalysisRepo: analysisRepo}
}

// ClaimGuest reassigns a guest's analysis history to the authed user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	if s.AnalysisRepo == nil {
		return ClaimResult{}, errors.New("analysis repo not configured")
	}
	moved, err := s.AnalysisRepo.ReassignUser(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedAnalyses: moved}, nil
}
