package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "player@example.com", false},
		{"empty", "", true},
		{"no at", "playerexample.com", true},
		{"no tld", "player@example", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEmail(tc.email)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	cases := []struct {
		name     string
		currency string
		wantErr  bool
	}{
		{"valid", "USD", false},
		{"lowercase", "usd", true},
		{"too short", "US", true},
		{"too long", "USDD", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCurrency(tc.currency)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(1))
	assert.Error(t, ValidatePositiveAmount(0))
	assert.Error(t, ValidatePositiveAmount(-1))
}

func TestAppError(t *testing.T) {
	t.Run("error string without cause", func(t *testing.T) {
		e := ErrInvalidAmount("amount must be positive")
		assert.Equal(t, "INVALID_AMOUNT", e.Code)
		assert.Equal(t, 400, e.Status)
		assert.Contains(t, e.Error(), "INVALID_AMOUNT")
		assert.Contains(t, e.Error(), "amount must be positive")
	})

	t.Run("error string with cause", func(t *testing.T) {
		cause := assert.AnError
		e := ErrCasinoAPIError(cause)
		assert.Equal(t, 502, e.Status)
		assert.ErrorIs(t, e, cause)
		assert.Contains(t, e.Error(), cause.Error())
	})
}

func TestErrorFactories(t *testing.T) {
	assert.Equal(t, 401, ErrSignatureInvalid("bad sig").Status)
	assert.Equal(t, 401, ErrInvalidSession("no session").Status)
	assert.Equal(t, 400, ErrInsufficientFunds().Status)
	assert.Equal(t, "CANNOT_ROLLBACK_PAYOUT", ErrCannotRollbackPayout().Code)
	assert.Equal(t, 404, ErrUserNotFound(uuid.New().String()).Status)
	assert.Equal(t, 404, ErrGameNotFound(uuid.New().String()).Status)
	assert.Equal(t, 404, ErrProviderNotFound(uuid.New().String()).Status)
	assert.Equal(t, 429, ErrAccountLocked("locked").Status)
}

func TestNewTransactionPostedEvent(t *testing.T) {
	tx := Transaction{
		ID:                    uuid.New(),
		ExternalTransactionID: "ext-1",
		Kind:                  TransactionDebit,
		Amount:                100,
		WalletID:              uuid.New(),
		BalanceAfter:          900,
		CreatedAt:             time.Now(),
	}
	evt := NewTransactionPostedEvent(tx)
	assert.Equal(t, EventTransactionPosted, evt.EventType)
	assert.Equal(t, AggregateWallet, evt.AggregateType)
	assert.Equal(t, tx.WalletID.String(), evt.AggregateID)
	assert.NotEmpty(t, evt.Payload)
}

func TestNewSessionLaunchedAndEndedEvents(t *testing.T) {
	s := Session{
		ID:       uuid.New(),
		Token:    "abc123",
		WalletID: uuid.New(),
		Active:   true,
	}
	launched := NewSessionLaunchedEvent(s)
	assert.Equal(t, EventSessionLaunched, launched.EventType)
	assert.Equal(t, AggregateSession, launched.AggregateType)

	ended := NewSessionEndedEvent(s)
	assert.Equal(t, EventSessionEnded, ended.EventType)
}
