package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCallback(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	live := &OAuthState{ID: "abc", ShopDomain: "mystore.myshopify.com", ExpiresAt: now.Add(time.Minute)}
	expired := &OAuthState{ID: "abc", ShopDomain: "mystore.myshopify.com", ExpiresAt: now.Add(-time.Second)}

	tests := []struct {
		name      string
		state     *OAuthState
		shop      string
		hmacValid bool
		want      CallbackDecision
	}{
		{"missing state", nil, "mystore.myshopify.com", true, CallbackDecision{Outcome: CallbackInvalidState}},
		{"expired state is deleted", expired, "mystore.myshopify.com", true, CallbackDecision{Outcome: CallbackStateExpired, DeleteState: true}},
		{"expiry checked before shop", expired, "other.myshopify.com", false, CallbackDecision{Outcome: CallbackStateExpired, DeleteState: true}},
		{"shop mismatch keeps state", live, "other.myshopify.com", true, CallbackDecision{Outcome: CallbackShopMismatch}},
		{"shop checked before hmac", live, "other.myshopify.com", false, CallbackDecision{Outcome: CallbackShopMismatch}},
		{"bad hmac", live, "mystore.myshopify.com", false, CallbackDecision{Outcome: CallbackInvalidHMAC}},
		{"valid", live, "mystore.myshopify.com", true, CallbackDecision{Outcome: CallbackProceed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCallback(tt.state, tt.shop, tt.hmacValid, now))
		})
	}
}

func TestOAuthState_IsExpired_AtBoundary(t *testing.T) {
	now := time.Now()
	s := &OAuthState{ExpiresAt: now}
	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Nanosecond)))
}
