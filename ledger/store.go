/*
store.go - Persistence interfaces for members, transactions and snapshots

PURPOSE:
  Defines the interface between the ledger logic and the database. One
  injected store handle is acquired at process start and passed to every
  component; no component opens its own connection.

KEY INTERFACES:
  Store:   members + append-only transaction log + snapshot upserts
  TxStore: Store plus WithTx for atomic multi-table writes

APPEND-ONLY CONTRACT:
  The transaction log has exactly one write operation, AppendTransaction.
  No Update or Delete exists. Corrections are new offsetting transactions.

TRACKING CODES:
  Every transaction carries a caller-supplied tracking code, unique across
  all members. The store rejects duplicates with ErrDuplicateTrackingCode;
  this is the idempotency key for the log.

SNAPSHOTS:
  daily_snapshots rows are derived data keyed by (member, day). They are
  upserted idempotently by the accrual engine and rebuildable from the
  transaction log at any time.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - ledger/store: in-memory, for tests

SEE ALSO:
  - engine.go: the only writer of snapshots and member projections
  - facade.go: wraps append + recompute in a single WithTx
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Injected persistence handle
// =============================================================================

type Store interface {
	// --- members ---

	// CreateMember persists a new member. Returns ErrDuplicateMember if the
	// name or username is taken.
	CreateMember(ctx context.Context, m Member) error

	// MemberByID returns the member, or nil if absent.
	MemberByID(ctx context.Context, id MemberID) (*Member, error)

	// MemberByName returns the member with the given unique name, or nil.
	MemberByName(ctx context.Context, name string) (*Member, error)

	// MemberByUsername returns the member with the given username, or nil.
	MemberByUsername(ctx context.Context, username string) (*Member, error)

	// ListMembers returns all members ordered by name.
	ListMembers(ctx context.Context) ([]Member, error)

	// UpdateMemberProjection overwrites the cached balance/points fields.
	// Called only by the accrual engine after a recompute.
	UpdateMemberProjection(ctx context.Context, id MemberID, balance decimal.Decimal, points int64) error

	// --- transaction log (append-only) ---

	// AppendTransaction adds a log entry. Returns ErrDuplicateTrackingCode
	// if the tracking code exists for any member. This is the ONLY write
	// operation on the log.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// TransactionsInRange returns a member's transactions posted in
	// [from, to], ordered by posting date.
	TransactionsInRange(ctx context.Context, id MemberID, from, to Date) ([]Transaction, error)

	// ListTransactions returns the log most-recent-first, for one member or,
	// with an empty id, for all members.
	ListTransactions(ctx context.Context, id MemberID) ([]Transaction, error)

	// SumByTypeUpTo returns the signed sum of a member's amounts for the
	// given types, posted on or before date. No matching rows sums to zero.
	SumByTypeUpTo(ctx context.Context, id MemberID, date Date, types []TransactionType) (decimal.Decimal, error)

	// SumByType is the lifetime variant of SumByTypeUpTo, with no date bound.
	SumByType(ctx context.Context, id MemberID, types []TransactionType) (decimal.Decimal, error)

	// EarliestTransactionDate returns the member's first posting date;
	// ok is false when the member has no transactions.
	EarliestTransactionDate(ctx context.Context, id MemberID) (d Date, ok bool, err error)

	// --- daily snapshots (derived) ---

	// UpsertSnapshots writes the given snapshots, replacing any prior row
	// for the same (member, day) key.
	UpsertSnapshots(ctx context.Context, snaps []DailySnapshot) error

	// SnapshotOn returns the snapshot for (member, day), or nil if none.
	SnapshotOn(ctx context.Context, id MemberID, day Date) (*DailySnapshot, error)

	// LatestSnapshotDate returns the last day of the member's computed run;
	// ok is false when the member has no snapshots.
	LatestSnapshotDate(ctx context.Context, id MemberID) (d Date, ok bool, err error)

	// SnapshotsByMember returns all of a member's snapshots, most recent day
	// first.
	SnapshotsByMember(ctx context.Context, id MemberID) ([]DailySnapshot, error)
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic append + recompute
// =============================================================================

// TxStore wraps Store with transaction support. Appending a transaction and
// rewriting the snapshots it invalidates is one logical unit; WithTx keeps a
// crash from leaving it half applied.
type TxStore interface {
	Store

	// WithTx executes fn within a storage transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
