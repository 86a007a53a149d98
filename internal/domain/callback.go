package domain

import "time"

// CallbackOutcome is the result of validating an authorization callback. Every outcome
// other than CallbackProceed ends the flow with a redirect to the error page.
type CallbackOutcome string

const (
	CallbackProceed             CallbackOutcome = ""
	CallbackInvalidState        CallbackOutcome = "invalid_state"
	CallbackStateExpired        CallbackOutcome = "state_expired"
	CallbackShopMismatch        CallbackOutcome = "shop_mismatch"
	CallbackInvalidHMAC         CallbackOutcome = "invalid_hmac"
	CallbackTokenExchangeFailed CallbackOutcome = "token_exchange_failed"
	CallbackShopInfoFailed      CallbackOutcome = "shop_info_failed"
	CallbackAlreadyConnected    CallbackOutcome = "already_connected"
	CallbackServerError         CallbackOutcome = "server_error"
)

// CallbackDecision tells the callback handler what to do after validation
type CallbackDecision struct {
	Outcome     CallbackOutcome
	DeleteState bool
}

// EvaluateCallback validates the stored state against the callback parameters.
// state is nil when the lookup found nothing. Checks run in a fixed order:
// existence, expiry, shop match, signature.
func EvaluateCallback(state *OAuthState, shop string, hmacValid bool, now time.Time) CallbackDecision {
	switch {
	case state == nil:
		return CallbackDecision{Outcome: CallbackInvalidState}
	case state.IsExpired(now):
		return CallbackDecision{Outcome: CallbackStateExpired, DeleteState: true}
	case state.ShopDomain != shop:
		// the state is left for the TTL index to reap
		return CallbackDecision{Outcome: CallbackShopMismatch}
	case !hmacValid:
		return CallbackDecision{Outcome: CallbackInvalidHMAC}
	}
	return CallbackDecision{Outcome: CallbackProceed}
}
