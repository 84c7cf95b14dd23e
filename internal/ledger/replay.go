package ledger

import (
	"fmt"

	"context"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/google/uuid"
)

// ReplayResult holds the outcome of a deterministic replay run.
type ReplayResult struct {
	WalletID         uuid.UUID
	TransactionCount int
	OutboxCount      int
	FinalBalance     int64
	Invariants       []InvariantCheck
	AllPassed        bool
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string
	Passed bool
	Detail string
}

// ReplayCommand is a single command in a replay sequence.
type ReplayCommand struct {
	Type   string // "debit", "credit", "rollback"
	Params interface{}
}

// ReplayHarness runs a deterministic sequence of commands against a single
// session and checks the global invariants against the final state:
// non-negative balance, and the last entry's balance_after matching the
// wallet row.
type ReplayHarness struct {
	commands *Commands
}

// NewReplayHarness creates a replay harness over the given command set.
func NewReplayHarness(commands *Commands) *ReplayHarness {
	return &ReplayHarness{commands: commands}
}

// Execute runs commands against the wallet behind sessionToken.
func (h *ReplayHarness) Execute(ctx context.Context, sessionToken string, commands []ReplayCommand) (*ReplayResult, error) {
	var txCount, outboxCount int
	var lastTx *domain.Transaction
	var lastWallet *domain.Wallet

	for i, cmd := range commands {
		var result *domain.CommandResult
		var err error

		switch cmd.Type {
		case "debit":
			result, err = h.commands.Debit(ctx, sessionToken, cmd.Params.(domain.DebitParams))
		case "credit":
			result, err = h.commands.Credit(ctx, sessionToken, cmd.Params.(domain.CreditParams))
		case "rollback":
			result, err = h.commands.Rollback(ctx, sessionToken, cmd.Params.(domain.RollbackParams))
		default:
			err = fmt.Errorf("unknown command type: %s", cmd.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("replay command %d (%s): %w", i, cmd.Type, err)
		}

		if !result.Idempotent {
			txCount++
			outboxCount += len(result.Events)
		}
		lastTx = &result.Transaction
		lastWallet = &result.Wallet
	}

	invariants := validateInvariants(lastWallet, lastTx)
	allPassed := true
	for _, inv := range invariants {
		if !inv.Passed {
			allPassed = false
		}
	}

	res := &ReplayResult{
		TransactionCount: txCount,
		OutboxCount:      outboxCount,
		Invariants:       invariants,
		AllPassed:        allPassed,
	}
	if lastWallet != nil {
		res.WalletID = lastWallet.ID
		res.FinalBalance = lastWallet.PlayableBalance
	}
	return res, nil
}

func validateInvariants(wallet *domain.Wallet, lastTx *domain.Transaction) []InvariantCheck {
	checks := make([]InvariantCheck, 0, 2)

	if wallet != nil {
		checks = append(checks, InvariantCheck{
			Name:   "playable_balance_non_negative",
			Passed: wallet.PlayableBalance >= 0,
			Detail: fmt.Sprintf("playable_balance=%d", wallet.PlayableBalance),
		})
	}

	if wallet != nil && lastTx != nil {
		pass := lastTx.BalanceAfter == wallet.PlayableBalance
		checks = append(checks, InvariantCheck{
			Name:   "ledger_parity",
			Passed: pass,
			Detail: fmt.Sprintf("wallet=%d lastTx.balance_after=%d", wallet.PlayableBalance, lastTx.BalanceAfter),
		})
	}

	return checks
}
