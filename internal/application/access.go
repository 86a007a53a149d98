package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"
)

// requireMember returns the caller's membership or an Unauthorized error
func requireMember(ctx context.Context, members ports.MembershipOracle, workspaceID, userID string) (*domain.Member, error) {
	if userID == "" {
		return nil, domain.Errorf(domain.ErrUnauthorized, "Unauthorized")
	}
	member, err := members.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member == nil {
		return nil, domain.Errorf(domain.ErrUnauthorized, "Unauthorized")
	}
	return member, nil
}

// randomHex returns n random bytes hex-encoded
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveCallback(domain.CallbackOutcome)           {}
func (nopMetrics) ObserveSyncTrigger(domain.SyncTriggerType, error) {}
func (nopMetrics) ObserveWebhook(string, error)                     {}

func metricsOrNop(m ports.MetricsRecorder) ports.MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
