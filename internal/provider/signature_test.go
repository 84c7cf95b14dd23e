package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	body := []byte(`{"sessionToken":"abc","amount":100}`)
	secret := "top-secret"

	sig := Sign(body, secret)

	t.Run("correct signature verifies", func(t *testing.T) {
		assert.True(t, Verify(body, secret, sig))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		assert.False(t, Verify(body, "wrong-secret", sig))
	})

	t.Run("tampered body fails", func(t *testing.T) {
		assert.False(t, Verify([]byte(`{"sessionToken":"abc","amount":200}`), secret, sig))
	})

	t.Run("missing signature fails", func(t *testing.T) {
		assert.False(t, Verify(body, secret, ""))
	})

	t.Run("non-hex signature fails", func(t *testing.T) {
		assert.False(t, Verify(body, secret, "not-hex!!"))
	})

	t.Run("re-serialized body with same fields fails if bytes differ", func(t *testing.T) {
		// Exact-byte canonicalization: a differently-whitespaced but
		// semantically equal body must not verify.
		reserialized := []byte(`{"sessionToken": "abc", "amount": 100}`)
		assert.False(t, Verify(reserialized, secret, sig))
	})
}

func TestSignIsDeterministic(t *testing.T) {
	body := []byte(`{"a":1}`)
	assert.Equal(t, Sign(body, "s"), Sign(body, "s"))
}
