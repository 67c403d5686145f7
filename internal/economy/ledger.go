// Package economy provides the ledger used by every paid operation in the
// core: withdrawals, deposits, transfers, and the server treasury with its
// transaction trail.
package economy

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Shkiper2006/RustRP/internal/store"
)

// maxRecentTransactions bounds the treasury's in-memory transaction ring;
// the oldest entries are pruned first. The full trail lives in the journal.
const maxRecentTransactions = 200

// TreasuryAccount names the treasury side of a transaction record.
const TreasuryAccount = "treasury"

// InsufficientFundsError reports a failed withdrawal along with the amount
// the caller must present.
type InsufficientFundsError struct {
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %d required", e.Required)
}

// ErrPlayerUnreachable is returned by balance stores that can only charge
// connected players.
var ErrPlayerUnreachable = errors.New("player balance unreachable")

// BalanceStore is the external balance provider: the game-side currency
// integration, or MemoryBalances when running standalone.
type BalanceStore interface {
	// Withdraw removes amount from the player's balance. It returns
	// *InsufficientFundsError when the balance is short; no partial
	// withdrawal occurs.
	Withdraw(player store.PlayerID, amount int64) error
	// Deposit adds amount to the player's balance.
	Deposit(player store.PlayerID, amount int64) error
}

// Transaction is one economic transfer, append-only.
type Transaction struct {
	ID        string `json:"id" db:"id"`
	From      string `json:"from" db:"from_account"`
	To        string `json:"to" db:"to_account"`
	Amount    int64  `json:"amount" db:"amount"`
	Reason    string `json:"reason" db:"reason"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// Treasury is the server-wide balance accumulating fees, fines and taxes.
type Treasury struct {
	Balance int64         `json:"balance"`
	Recent  []Transaction `json:"recent"`
}

// TransactionSink receives every recorded transaction, independently of the
// in-memory ring. Typically the SQLite journal.
type TransactionSink interface {
	AppendTransaction(tx Transaction) error
}

// Ledger executes transfers against the balance store and records every
// movement in the treasury ring and the sink.
type Ledger struct {
	Balances BalanceStore
	Treasury *Treasury

	sink TransactionSink
	now  func() time.Time
}

// NewLedger creates a ledger over the given balance store. sink may be nil.
func NewLedger(balances BalanceStore, sink TransactionSink) *Ledger {
	return &Ledger{
		Balances: balances,
		Treasury: &Treasury{},
		sink:     sink,
		now:      time.Now,
	}
}

// SetClock overrides the ledger clock. Tests only.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Withdraw removes amount from the player's balance. A zero or negative
// amount is a no-op.
func (l *Ledger) Withdraw(player store.PlayerID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return l.Balances.Withdraw(player, amount)
}

// Deposit adds amount to the player's balance. A zero or negative amount is
// a no-op.
func (l *Ledger) Deposit(player store.PlayerID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return l.Balances.Deposit(player, amount)
}

// Transfer moves amount between players as one logical step: if the deposit
// fails the withdrawal is returned to the sender, so a failed transfer never
// destroys funds.
func (l *Ledger) Transfer(from, to store.PlayerID, amount int64, reason string) error {
	if amount <= 0 {
		return nil
	}
	if err := l.Balances.Withdraw(from, amount); err != nil {
		return err
	}
	if err := l.Balances.Deposit(to, amount); err != nil {
		if rbErr := l.Balances.Deposit(from, amount); rbErr != nil {
			slog.Error("transfer rollback failed", "from", uint64(from), "amount", amount, "error", rbErr)
		}
		return err
	}
	l.Record(playerAccount(from), playerAccount(to), amount, reason)
	return nil
}

// CreditTreasury adds amount to the treasury and records the transaction.
func (l *Ledger) CreditTreasury(amount int64, reason, from string) {
	l.Treasury.Balance += amount
	l.Record(from, TreasuryAccount, amount, reason)
}

// Record appends a transaction to the bounded ring and the sink. Sink
// failures are logged, never propagated.
func (l *Ledger) Record(from, to string, amount int64, reason string) Transaction {
	tx := Transaction{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: l.now().Unix(),
	}
	l.Treasury.Recent = append(l.Treasury.Recent, tx)
	if n := len(l.Treasury.Recent); n > maxRecentTransactions {
		l.Treasury.Recent = l.Treasury.Recent[n-maxRecentTransactions:]
	}
	if l.sink != nil {
		if err := l.sink.AppendTransaction(tx); err != nil {
			slog.Warn("transaction journal write failed", "id", tx.ID, "error", err)
		}
	}
	return tx
}

func playerAccount(p store.PlayerID) string {
	return fmt.Sprintf("player:%d", uint64(p))
}

// MemoryBalances is an in-process balance store used standalone and in
// tests.
type MemoryBalances struct {
	Accounts map[store.PlayerID]int64 `json:"accounts"`
}

// NewMemoryBalances creates an empty in-memory balance store.
func NewMemoryBalances() *MemoryBalances {
	return &MemoryBalances{Accounts: make(map[store.PlayerID]int64)}
}

func (m *MemoryBalances) Withdraw(player store.PlayerID, amount int64) error {
	if m.Accounts[player] < amount {
		return &InsufficientFundsError{Required: amount}
	}
	m.Accounts[player] -= amount
	return nil
}

func (m *MemoryBalances) Deposit(player store.PlayerID, amount int64) error {
	m.Accounts[player] += amount
	return nil
}
