/*
facade.go - Per-member ledger operations

PURPOSE:
  The facade is what the presentation layer talks to. It orchestrates the
  calendar adapter, validation rules, transaction store and accrual engine:
  register a member, record a (possibly backdated) transaction, report
  totals, report the full daily history, total the fund.

ATOMICITY:
  Recording a transaction and rewriting the snapshots it invalidates is one
  logical unit. The facade runs both inside a single WithTx, so a crash
  mid-recompute rolls the append back too; the log stays the sole durable
  source of truth and a retry converges to the same state.

CREDENTIALS:
  Member secrets are stored as bcrypt hashes, never plaintext. The facade
  only exposes a comparison (Authenticate); session handling belongs to the
  presentation layer.

SEE ALSO:
  - engine.go: the recompute invoked after every append
  - rules.go: per-type amount validation
*/
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// CALENDAR ADAPTER - Boundary between display calendar and canonical dates
// =============================================================================

// CalendarAdapter converts between the local display calendar and the
// canonical Date. Both directions are pure; ToCanonical fails with
// ErrInvalidDate on strings that do not denote a valid local calendar day.
type CalendarAdapter interface {
	ToCanonical(local string) (Date, error)
	ToLocal(d Date) string
}

// =============================================================================
// FACADE
// =============================================================================

// Facade exposes the per-member ledger operations. It owns the injected
// store handle; no component underneath opens its own connection.
type Facade struct {
	store    TxStore
	engine   *Engine
	calendar CalendarAdapter
}

// NewFacade wires the facade over a transactional store, an accrual engine
// bound to the same store, and a calendar adapter.
func NewFacade(store TxStore, engine *Engine, calendar CalendarAdapter) *Facade {
	return &Facade{store: store, engine: engine, calendar: calendar}
}

// Calendar returns the adapter, for presentation-side date labelling.
func (f *Facade) Calendar() CalendarAdapter { return f.calendar }

// =============================================================================
// REGISTRATION
// =============================================================================

// Register enrolls a new member. The enrollment date arrives in the local
// calendar. Fails with ErrDuplicateMember when the name or username is
// taken, ErrInvalidDate when the date does not parse.
func (f *Facade) Register(ctx context.Context, name, enrollmentLocal, username, credential string) (MemberID, error) {
	enrolledOn, err := f.calendar.ToCanonical(enrollmentLocal)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}

	m := Member{
		ID:             MemberID("mbr-" + username),
		Name:           name,
		Username:       username,
		EnrolledOn:     enrolledOn,
		InitialCapital: decimal.Zero,
		CurrentBalance: decimal.Zero,
		CredentialHash: string(hash),
	}
	if err := f.store.CreateMember(ctx, m); err != nil {
		return "", WrapStorage("create member", err)
	}
	return m.ID, nil
}

// Authenticate compares a credential against the stored hash. ok is false
// for an unknown username or a mismatch; err reports storage failures only.
func (f *Facade) Authenticate(ctx context.Context, username, credential string) (m *Member, ok bool, err error) {
	m, err = f.store.MemberByUsername(ctx, username)
	if err != nil {
		return nil, false, WrapStorage("load member", err)
	}
	if m == nil {
		return nil, false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(m.CredentialHash), []byte(credential)) != nil {
		return nil, false, nil
	}
	return m, true, nil
}

// =============================================================================
// RECORDING
// =============================================================================

// RecordTransaction validates, appends and recomputes in one storage
// transaction. The posting date arrives in the local calendar; snapshots
// from that date through today are rewritten before the call returns.
func (f *Facade) RecordTransaction(ctx context.Context, memberName, localDate string, amount decimal.Decimal, txType TransactionType, description, trackingCode string) (TransactionID, error) {
	if trackingCode == "" {
		return "", ErrTrackingCodeRequired
	}
	if err := ValidateAmount(txType, amount); err != nil {
		return "", err
	}
	postedOn, err := f.calendar.ToCanonical(localDate)
	if err != nil {
		return "", err
	}

	m, err := f.store.MemberByName(ctx, memberName)
	if err != nil {
		return "", WrapStorage("load member", err)
	}
	if m == nil {
		return "", fmt.Errorf("record for %q: %w", memberName, ErrMemberNotFound)
	}

	tx := Transaction{
		ID:           TransactionID("txn-" + trackingCode),
		MemberID:     m.ID,
		PostedOn:     postedOn,
		Amount:       amount,
		Type:         txType,
		Description:  description,
		TrackingCode: trackingCode,
		CreatedAt:    f.engine.Today(),
	}

	err = f.store.WithTx(ctx, func(s Store) error {
		if err := s.AppendTransaction(ctx, tx); err != nil {
			return WrapStorage("append transaction", err)
		}
		return f.engine.withStore(s).RecomputeRange(ctx, m.ID, postedOn, Date{})
	})
	if err != nil {
		return "", err
	}
	return tx.ID, nil
}

// =============================================================================
// REPORTING
// =============================================================================

// Member returns a member by id, failing with ErrMemberNotFound.
func (f *Facade) Member(ctx context.Context, id MemberID) (*Member, error) {
	m, err := f.store.MemberByID(ctx, id)
	if err != nil {
		return nil, WrapStorage("load member", err)
	}
	if m == nil {
		return nil, fmt.Errorf("member %s: %w", id, ErrMemberNotFound)
	}
	return m, nil
}

// Totals returns the member's lifetime per-type sums, aggregated straight
// from the transaction log, independent of snapshots.
func (f *Facade) Totals(ctx context.Context, id MemberID) (MemberTotals, error) {
	if _, err := f.Member(ctx, id); err != nil {
		return MemberTotals{}, err
	}
	contributed, err := f.store.SumByType(ctx, id, []TransactionType{TxCapitalContribution})
	if err != nil {
		return MemberTotals{}, WrapStorage("sum contributions", err)
	}
	dues, err := f.store.SumByType(ctx, id, []TransactionType{TxRecurringDue})
	if err != nil {
		return MemberTotals{}, WrapStorage("sum dues", err)
	}
	return MemberTotals{CapitalContributed: contributed, RecurringDuesPaid: dues}, nil
}

// HistoryEntry is a daily snapshot with its local-calendar date label.
type HistoryEntry struct {
	DailySnapshot
	LocalDay string
}

// DailyHistory refreshes the member's snapshot run through today and
// returns it most-recent-first, labelled with local dates. The refresh runs
// in its own storage transaction so a crash cannot leave a partial run.
func (f *Facade) DailyHistory(ctx context.Context, id MemberID) ([]HistoryEntry, error) {
	var snaps []DailySnapshot
	err := f.store.WithTx(ctx, func(s Store) error {
		var err error
		snaps, err = f.engine.withStore(s).DailyHistory(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, len(snaps))
	for i, snap := range snaps {
		entries[i] = HistoryEntry{DailySnapshot: snap, LocalDay: f.calendar.ToLocal(snap.Day)}
	}
	return entries, nil
}

// FundTotalBalance sums every member's cached balance (plus any legacy
// initial capital) on demand. Never cached beyond the call.
func (f *Facade) FundTotalBalance(ctx context.Context) (decimal.Decimal, error) {
	members, err := f.store.ListMembers(ctx)
	if err != nil {
		return decimal.Zero, WrapStorage("list members", err)
	}
	total := decimal.Zero
	for _, m := range members {
		total = total.Add(m.CurrentBalance).Add(m.InitialCapital)
	}
	return total, nil
}

// ListMembers returns all members ordered by name.
func (f *Facade) ListMembers(ctx context.Context) ([]Member, error) {
	members, err := f.store.ListMembers(ctx)
	if err != nil {
		return nil, WrapStorage("list members", err)
	}
	return members, nil
}

// ListTransactions returns the log most-recent-first; an empty id lists
// every member's transactions.
func (f *Facade) ListTransactions(ctx context.Context, id MemberID) ([]Transaction, error) {
	if id != "" {
		if _, err := f.Member(ctx, id); err != nil {
			return nil, err
		}
	}
	txs, err := f.store.ListTransactions(ctx, id)
	if err != nil {
		return nil, WrapStorage("list transactions", err)
	}
	return txs, nil
}
