/*
engine.go - Accrual engine: derives daily snapshots from the transaction log

PURPOSE:
  Computes balance-as-of-day from the append-only log, derives the points
  earned each day from that balance, and maintains the cumulative point
  total by walking forward from the last known snapshot.

WHY A FORWARD WALK?
  A backdated transaction changes balance(d) for every day from its posting
  date onward, and cumulative(d) depends on cumulative(d-1) by construction.
  Point totals are therefore not independently recomputable per day: the
  engine must replay days in ascending order from the earliest affected one.
  The per-day balances themselves come from one opening-sum query plus one
  range query, folded in memory - not a storage round trip per day.

IDEMPOTENCE:
  RecomputeRange is a pure function of the transaction log: running it again
  with no intervening transactions rewrites byte-identical snapshot rows.
  That makes it safe to re-run from any starting point after a crash.

ACCRUAL RULE:
  earned(d) = balance(d) / TierSize, integer division. Balances below one
  tier earn nothing that day. A drawdown can technically push a balance
  negative; a negative balance earns zero rather than negative points, which
  keeps the cumulative total monotonic.

SEE ALSO:
  - store.go: SumByTypeUpTo, UpsertSnapshots, UpdateMemberProjection
  - facade.go: runs the engine inside the same WithTx as the append
*/
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTierSize is the balance increment, in Toman, that yields one
// loyalty point per day.
const DefaultTierSize int64 = 50_000

// =============================================================================
// ENGINE
// =============================================================================

// Engine recomputes daily snapshots and the member projection from the
// transaction log. It is the only writer of daily_snapshots and of
// Member.CurrentBalance / Member.Points.
type Engine struct {
	store Store
	tier  int64
	now   func() Date
}

// NewEngine creates an accrual engine over the given store. A tierSize of
// zero selects DefaultTierSize.
func NewEngine(store Store, tierSize int64) *Engine {
	if tierSize <= 0 {
		tierSize = DefaultTierSize
	}
	return &Engine{store: store, tier: tierSize, now: Today}
}

// WithClock overrides the engine's notion of "today". Tests use this to pin
// the recomputation horizon.
func (e *Engine) WithClock(now func() Date) *Engine {
	e.now = now
	return e
}

// Today returns the engine's current date.
func (e *Engine) Today() Date { return e.now() }

// withStore returns a shallow copy bound to s, so a recompute can run
// against a transactional store view.
func (e *Engine) withStore(s Store) *Engine {
	c := *e
	c.store = s
	return &c
}

// =============================================================================
// RECOMPUTATION
// =============================================================================

// RecomputeRange rewrites the member's snapshots for every day in
// [from, to], then refreshes the cached balance/points projection.
//
// The range is clamped: it never starts before max(enrollment date, first
// transaction date), never starts after the day following the last computed
// snapshot (so the run stays contiguous), and never extends past today. A
// zero from recomputes from the start of the member's run; a zero to means
// today.
func (e *Engine) RecomputeRange(ctx context.Context, id MemberID, from, to Date) error {
	m, err := e.store.MemberByID(ctx, id)
	if err != nil {
		return WrapStorage("load member", err)
	}
	if m == nil {
		return fmt.Errorf("recompute %s: %w", id, ErrMemberNotFound)
	}

	start := m.EnrolledOn
	earliest, ok, err := e.store.EarliestTransactionDate(ctx, id)
	if err != nil {
		return WrapStorage("earliest transaction date", err)
	}
	if ok {
		start = MaxDate(start, earliest)
	}

	today := e.now()
	if from.IsZero() || from.Before(start) {
		from = start
	}
	// Snapshot days form a contiguous run: the walk must begin no later than
	// the day after the last computed snapshot, or a quiet period would leave
	// a gap and the cumulative total would restart from zero.
	last, haveRun, err := e.store.LatestSnapshotDate(ctx, id)
	if err != nil {
		return WrapStorage("latest snapshot date", err)
	}
	if !haveRun {
		from = start
	} else if next := last.AddDays(1); next.Before(from) {
		from = next
	}
	if to.IsZero() || to.After(today) {
		to = today
	}
	if to.Before(from) {
		// Nothing computable yet (e.g. enrollment date in the future).
		return nil
	}

	// Opening state: balance and cumulative points as of the day before the
	// range. On the first day of the run both are zero.
	prevDay := from.AddDays(-1)
	balance, err := e.balanceUpTo(ctx, id, prevDay)
	if err != nil {
		return err
	}
	var cumulative int64
	if from.After(start) {
		prev, err := e.store.SnapshotOn(ctx, id, prevDay)
		if err != nil {
			return WrapStorage("load prior snapshot", err)
		}
		if prev != nil {
			cumulative = prev.Cumulative
		}
	}

	txs, err := e.store.TransactionsInRange(ctx, id, from, to)
	if err != nil {
		return WrapStorage("load transactions", err)
	}
	deltas := make(map[string]decimal.Decimal, len(txs))
	for _, tx := range txs {
		key := tx.PostedOn.String()
		deltas[key] = deltas[key].Add(signedAmount(tx))
	}

	snaps := make([]DailySnapshot, 0, DaysBetween(from, to)+1)
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		balance = balance.Add(deltas[d.String()])
		earned := e.pointsFor(balance)
		cumulative += earned
		snaps = append(snaps, DailySnapshot{
			MemberID:   id,
			Day:        d,
			Balance:    balance,
			Earned:     earned,
			Cumulative: cumulative,
		})
	}

	if err := e.store.UpsertSnapshots(ctx, snaps); err != nil {
		return WrapStorage("upsert snapshots", err)
	}
	if err := e.store.UpdateMemberProjection(ctx, id, balance, cumulative); err != nil {
		return WrapStorage("update member projection", err)
	}
	return nil
}

// RecomputeAll rewrites the member's full snapshot run through today.
func (e *Engine) RecomputeAll(ctx context.Context, id MemberID) error {
	return e.RecomputeRange(ctx, id, Date{}, Date{})
}

// DailyHistory recomputes the full run (so the view is fresh through today)
// and returns the member's snapshots, most recent day first.
func (e *Engine) DailyHistory(ctx context.Context, id MemberID) ([]DailySnapshot, error) {
	if err := e.RecomputeAll(ctx, id); err != nil {
		return nil, err
	}
	snaps, err := e.store.SnapshotsByMember(ctx, id)
	if err != nil {
		return nil, WrapStorage("load snapshots", err)
	}
	return snaps, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// balanceUpTo returns credits minus debits posted on or before date.
func (e *Engine) balanceUpTo(ctx context.Context, id MemberID, date Date) (decimal.Decimal, error) {
	credits, err := e.store.SumByTypeUpTo(ctx, id, date, CreditTypes)
	if err != nil {
		return decimal.Zero, WrapStorage("sum credits", err)
	}
	debits, err := e.store.SumByTypeUpTo(ctx, id, date, DebitTypes)
	if err != nil {
		return decimal.Zero, WrapStorage("sum debits", err)
	}
	return credits.Sub(debits), nil
}

// pointsFor returns the points one day at the given balance earns.
func (e *Engine) pointsFor(balance decimal.Decimal) int64 {
	if balance.Sign() <= 0 {
		return 0
	}
	return balance.IntPart() / e.tier
}

// signedAmount maps a transaction to its effect on the balance.
func signedAmount(tx Transaction) decimal.Decimal {
	if tx.Type == TxDrawdown {
		return tx.Amount.Neg()
	}
	return tx.Amount
}
