package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"shopify-workspace-connector/internal/ports"
)

// VerifyQueryHMAC checks the hmac parameter Shopify adds to redirect query strings.
// The remaining parameters are sorted by key and joined as key=value pairs with "&".
func VerifyQueryHMAC(params map[string]string, secret string) bool {
	provided, ok := params["hmac"]
	if !ok || provided == "" {
		return false
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "hmac" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return constantTimeEqual(provided, expected)
}

// VerifyWebhookHMAC checks the X-Shopify-Hmac-Sha256 header against the raw request body.
// body must be the bytes as received; a re-encoded body will not match.
func VerifyWebhookHMAC(body []byte, header, secret string) bool {
	if header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return constantTimeEqual(header, expected)
}

// constantTimeEqual compares without leaking timing; different lengths never match
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ErrInvalidWebhookSignature is returned by Verifier.VerifyWebhook on a mismatch
var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

// Verifier checks redirects and webhook deliveries signed with the app secret
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for the given secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

var _ ports.SignatureVerifier = (*Verifier)(nil)

// VerifyQuery reports whether the query parameters carry a valid hmac
func (v *Verifier) VerifyQuery(params map[string]string) bool {
	return VerifyQueryHMAC(params, v.secret)
}

// VerifyWebhook returns ErrInvalidWebhookSignature unless header signs payload
func (v *Verifier) VerifyWebhook(payload []byte, header string) error {
	if !VerifyWebhookHMAC(payload, header, v.secret) {
		return ErrInvalidWebhookSignature
	}
	return nil
}
