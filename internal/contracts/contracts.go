// Package contracts implements the contract board escrow lifecycle:
// create (deposit withdrawn up front), take, complete (reward paid once),
// cancel, and dispute (escalated to court).
package contracts

import (
	"errors"
	"fmt"
	"time"

	"github.com/Shkiper2006/RustRP/internal/economy"
	"github.com/Shkiper2006/RustRP/internal/notify"
	"github.com/Shkiper2006/RustRP/internal/store"
)

// Type categorizes a contract.
type Type uint8

const (
	TypeDelivery Type = iota
	TypeGuard
	TypeBuild
	TypeInvestigate
	TypeBounty
	TypeRaid // carries a target owner; consulted by raid authorization
)

var typeNames = map[Type]string{
	TypeDelivery:    "DELIVERY",
	TypeGuard:       "GUARD",
	TypeBuild:       "BUILD",
	TypeInvestigate: "INVESTIGATE",
	TypeBounty:      "BOUNTY",
	TypeRaid:        "RAID",
}

func (t Type) String() string { return typeNames[t] }

// ParseType maps a wire string to a contract type.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Status tracks a contract through its lifecycle.
type Status uint8

const (
	StatusOpen Status = iota
	StatusTaken
	StatusCompleted
	StatusCancelled
	StatusDisputed
)

var statusNames = map[Status]string{
	StatusOpen:      "OPEN",
	StatusTaken:     "TAKEN",
	StatusCompleted: "COMPLETED",
	StatusCancelled: "CANCELLED",
	StatusDisputed:  "DISPUTED",
}

func (s Status) String() string { return statusNames[s] }

// Contract is one board posting. The deposit is withdrawn from the customer
// at creation and held notionally until completion or dispute resolution.
type Contract struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	CustomerID   store.PlayerID `json:"customer_id"`
	ContractorID store.PlayerID `json:"contractor_id"` // 0 = unassigned
	Reward       int64          `json:"reward"`
	Deposit      int64          `json:"deposit"`
	PaidOut      bool           `json:"paid_out"`
	Type         Type           `json:"type"`
	Status       Status         `json:"status"`
	CreatedAt    int64          `json:"created_at"`
	DueAt        int64          `json:"due_at,omitempty"` // 0 = no deadline
	TargetOwner  store.PlayerID `json:"target_owner,omitempty"`
	CaseID       int            `json:"case_id,omitempty"` // dispute case, if opened
}

var (
	ErrNotFound     = errors.New("contract not found")
	ErrNotAllowed   = errors.New("requester may not perform this on the contract")
	ErrInvalidState = errors.New("contract is not in a state that allows this")
	ErrNoContractor = errors.New("contract has no contractor bound")
	ErrAlreadyPaid  = errors.New("contract reward was already paid")
)

// PaymentFailedError marks a completion whose reward deposit failed. The
// contract is left unpaid for retry.
type PaymentFailedError struct {
	Err error
}

func (e *PaymentFailedError) Error() string { return fmt.Sprintf("reward payment failed: %v", e.Err) }
func (e *PaymentFailedError) Unwrap() error { return e.Err }

// CaseOpener opens a court case for a disputed contract. Implemented by the
// court manager; an interface here keeps the dependency one-way.
type CaseOpener interface {
	OpenDisputeCase(contractID int, suspect, complainant store.PlayerID, charge string) int
}

// Escrow runs the contract board. Only Contracts and NextID are part of the
// snapshot payload; collaborators are excluded so a persisted board never
// embeds ledger or court state.
type Escrow struct {
	Contracts map[int]*Contract `json:"contracts"`
	NextID    int               `json:"next_id"`

	Ledger  *economy.Ledger           `json:"-"`
	Court   CaseOpener                `json:"-"`
	IsAdmin func(store.PlayerID) bool `json:"-"`

	notifier notify.Notifier
	now      func() time.Time
}

// NewEscrow creates an empty board. isAdmin may be nil (no administrators).
func NewEscrow(ledger *economy.Ledger, court CaseOpener, n notify.Notifier, isAdmin func(store.PlayerID) bool) *Escrow {
	if isAdmin == nil {
		isAdmin = func(store.PlayerID) bool { return false }
	}
	return &Escrow{
		Contracts: make(map[int]*Contract),
		NextID:    1,
		Ledger:    ledger,
		Court:     court,
		IsAdmin:   isAdmin,
		notifier:  n,
		now:       time.Now,
	}
}

// SetClock overrides the escrow clock. Tests only.
func (e *Escrow) SetClock(now func() time.Time) { e.now = now }

// Create posts a contract. The deposit is withdrawn from the customer
// before the contract exists; a failed withdrawal fails the whole creation.
func (e *Escrow) Create(customer store.PlayerID, title, desc string, reward, deposit int64, t Type, targetOwner store.PlayerID) (*Contract, error) {
	if err := e.Ledger.Withdraw(customer, deposit); err != nil {
		return nil, err
	}
	c := &Contract{
		ID:          e.NextID,
		Title:       title,
		Description: desc,
		CustomerID:  customer,
		Reward:      reward,
		Deposit:     deposit,
		Type:        t,
		Status:      StatusOpen,
		CreatedAt:   e.now().Unix(),
		TargetOwner: targetOwner,
	}
	e.NextID++
	e.Contracts[c.ID] = c
	if deposit > 0 {
		e.Ledger.Record(account(customer), "escrow", deposit, fmt.Sprintf("contract_%d_deposit", c.ID))
	}
	e.notifier.Notify(customer, notify.CategoryEconomy, "contract_created", "id", c.ID, "reward", reward)
	return c, nil
}

// Take binds a contractor to an OPEN contract.
func (e *Escrow) Take(id int, contractor store.PlayerID) error {
	c, ok := e.Contracts[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != StatusOpen {
		return ErrInvalidState
	}
	c.ContractorID = contractor
	c.Status = StatusTaken
	e.notifier.Notify(contractor, notify.CategoryEconomy, "contract_taken", "id", id)
	return nil
}

// Complete pays the reward to the contractor and closes the contract. Only
// the customer or an administrator may complete. The reward is paid at most
// once: a deposit failure surfaces as *PaymentFailedError and leaves the
// contract unpaid for retry.
func (e *Escrow) Complete(id int, requester store.PlayerID) error {
	c, ok := e.Contracts[id]
	if !ok {
		return ErrNotFound
	}
	if requester != c.CustomerID && !e.IsAdmin(requester) {
		return ErrNotAllowed
	}
	if c.Status == StatusCancelled || c.Status == StatusDisputed {
		return ErrInvalidState
	}
	if c.ContractorID == 0 {
		return ErrNoContractor
	}
	if c.PaidOut {
		return ErrAlreadyPaid
	}
	if err := e.Ledger.Deposit(c.ContractorID, c.Reward); err != nil {
		return &PaymentFailedError{Err: err}
	}
	c.PaidOut = true
	c.Status = StatusCompleted
	e.Ledger.Record("escrow", account(c.ContractorID), c.Reward, fmt.Sprintf("contract_%d_reward", c.ID))
	e.notifier.Notify(c.ContractorID, notify.CategoryEconomy, "contract_completed", "id", id, "reward", c.Reward)
	return nil
}

// Cancel withdraws an OPEN contract and refunds the deposit to the
// customer. Only the customer or an administrator may cancel.
func (e *Escrow) Cancel(id int, requester store.PlayerID) error {
	c, ok := e.Contracts[id]
	if !ok {
		return ErrNotFound
	}
	if requester != c.CustomerID && !e.IsAdmin(requester) {
		return ErrNotAllowed
	}
	if c.Status != StatusOpen {
		return ErrInvalidState
	}
	c.Status = StatusCancelled
	if err := e.Ledger.Deposit(c.CustomerID, c.Deposit); err != nil {
		// Refund failure is logged by the ledger path; the cancellation
		// itself stands.
		e.notifier.Notify(c.CustomerID, notify.CategoryEconomy, "contract_refund_failed", "id", id)
	} else if c.Deposit > 0 {
		e.Ledger.Record("escrow", account(c.CustomerID), c.Deposit, fmt.Sprintf("contract_%d_refund", c.ID))
	}
	return nil
}

// Dispute escalates a TAKEN or COMPLETED contract to court. The requester
// must be a party to the contract or an administrator; the counterparty is
// named suspect (an administrator disputing names the contractor if bound,
// else the customer).
func (e *Escrow) Dispute(id int, requester store.PlayerID) (int, error) {
	c, ok := e.Contracts[id]
	if !ok {
		return 0, ErrNotFound
	}
	isParty := requester == c.CustomerID || requester == c.ContractorID
	if !isParty && !e.IsAdmin(requester) {
		return 0, ErrNotAllowed
	}
	if c.Status != StatusTaken && c.Status != StatusCompleted {
		return 0, ErrInvalidState
	}

	var suspect store.PlayerID
	switch {
	case requester == c.CustomerID:
		suspect = c.ContractorID
	case requester == c.ContractorID:
		suspect = c.CustomerID
	case c.ContractorID != 0:
		suspect = c.ContractorID
	default:
		suspect = c.CustomerID
	}

	c.Status = StatusDisputed
	caseID := e.Court.OpenDisputeCase(c.ID, suspect, requester,
		fmt.Sprintf("contract dispute: %s", c.Title))
	c.CaseID = caseID
	e.notifier.Notify(requester, notify.CategoryCourt, "contract_disputed", "id", id, "case", caseID)
	return caseID, nil
}

// HasActiveRaidContract reports whether the attacker holds a live RAID
// contract against the target owner: type RAID, status TAKEN, matching
// parties, and no deadline or a deadline still in the future.
func (e *Escrow) HasActiveRaidContract(attacker, targetOwner store.PlayerID) bool {
	now := e.now().Unix()
	for _, c := range e.Contracts {
		if c.Type != TypeRaid || c.Status != StatusTaken {
			continue
		}
		if c.ContractorID != attacker || c.TargetOwner != targetOwner {
			continue
		}
		if c.DueAt != 0 && c.DueAt <= now {
			continue
		}
		return true
	}
	return false
}

// Get returns a contract by id.
func (e *Escrow) Get(id int) (*Contract, bool) {
	c, ok := e.Contracts[id]
	return c, ok
}

func account(p store.PlayerID) string {
	return fmt.Sprintf("player:%d", uint64(p))
}
