/*
Package ledger provides the mutual-fund accrual ledger engine.

PURPOSE:
  This package contains the core types and algorithms for tracking member
  capital contributions and accruing loyalty points daily from each member's
  running balance. The transaction log is the source of truth; per-day
  balance snapshots and point totals are derived from it and kept consistent
  whenever new transactions arrive, including backdated ones.

KEY CONCEPTS IN THIS FILE (types.go):
  - Member: identity, enrollment date, cached balance/points projection
  - Transaction: an immutable log entry for one capital movement
  - DailySnapshot: derived (member, day) balance and point record
  - Member/Transaction IDs: type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: transactions are never updated or deleted; corrections
     are new offsetting transactions
  2. Precision: amounts use decimal.Decimal, never floats
  3. Derivation: Member.CurrentBalance and Member.Points are a cache of the
     snapshot walk, written only by the accrual engine

SEE ALSO:
  - engine.go: snapshot recomputation from the transaction log
  - facade.go: per-member operations orchestrating the components
  - store.go: persistence interfaces
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MemberID string
type TransactionID string

// =============================================================================
// TRANSACTION - One capital movement in the append-only log
// =============================================================================

type TransactionType string

const (
	// TxCapitalContribution is a lump capital deposit into the fund.
	TxCapitalContribution TransactionType = "capital_contribution"
	// TxRecurringDue is the periodic membership due payment.
	TxRecurringDue TransactionType = "recurring_due"
	// TxDrawdown is a withdrawal; its amount reduces the balance.
	TxDrawdown TransactionType = "drawdown"
)

// CreditTypes are the transaction types that add to a member's balance.
var CreditTypes = []TransactionType{TxCapitalContribution, TxRecurringDue}

// DebitTypes are the transaction types subtracted from a member's balance.
var DebitTypes = []TransactionType{TxDrawdown}

// Transaction is an immutable entry in the capital movement log.
// TrackingCode is a caller-supplied idempotency key, unique across all
// members; the store rejects duplicates at insert time.
type Transaction struct {
	ID           TransactionID
	MemberID     MemberID
	PostedOn     Date
	Amount       decimal.Decimal
	Type         TransactionType
	Description  string
	TrackingCode string
	CreatedAt    Date
}

// =============================================================================
// MEMBER - Fund participant
// =============================================================================

// Member is a fund participant. CurrentBalance and Points mirror the most
// recent daily snapshot; they are a projection written exclusively by the
// accrual engine, never an independent source of truth.
type Member struct {
	ID         MemberID
	Name       string
	Username   string
	EnrolledOn Date

	// InitialCapital is the lifetime opening-capital figure carried over
	// from the legacy system. Newly registered members start at zero; all
	// capital enters through capital-contribution transactions.
	InitialCapital decimal.Decimal

	CurrentBalance decimal.Decimal
	Points         int64

	// CredentialHash is the salted hash of the member's secret. Verification
	// lives in the facade; the ledger core never sees the plaintext.
	CredentialHash string
}

// =============================================================================
// DAILY SNAPSHOT - Derived per-member-per-day accrual record
// =============================================================================

// DailySnapshot records the balance as of one calendar day, the points
// earned on that day, and the cumulative points through that day inclusive.
//
// INVARIANTS:
//   - For a member, snapshot days form a contiguous run from
//     max(enrollment, first transaction day) through the last computed day.
//   - Cumulative(d) = Cumulative(d-1) + Earned(d); on the first day of the
//     run, Cumulative(d) = Earned(d).
//
// Snapshots are recomputed, never hand-edited: recomputing a day against an
// unchanged transaction log yields the identical row.
type DailySnapshot struct {
	MemberID   MemberID
	Day        Date
	Balance    decimal.Decimal
	Earned     int64
	Cumulative int64
}

// MemberTotals are the lifetime per-type sums over the transaction log.
type MemberTotals struct {
	CapitalContributed decimal.Decimal
	RecurringDuesPaid  decimal.Decimal
}
