package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CasinoSignatureHeader is the header Casino→Provider requests carry,
// signed under CASINO_SECRET.
const CasinoSignatureHeader = "x-casino-signature"

// ProviderSignatureHeader is the header Provider→Casino callbacks carry,
// signed under PROVIDER_SECRET.
const ProviderSignatureHeader = "x-provider-signature"

// Sign computes the lowercase-hex HMAC-SHA256 of body under secret. It
// signs the exact bytes given — no re-serialization — so callers must
// compute it over the bytes they actually send or received.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the correct lowercase-hex
// HMAC-SHA256 of body under secret, compared in constant time. A missing
// header is handled by the caller passing an empty signature, which
// always fails since hmac.Equal requires matching non-zero-length input
// produced by Sign.
func Verify(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	got := mac.Sum(nil)
	return hmac.Equal(want, got)
}
