package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sandogh/fund-engine/ledger"
	"github.com/sandogh/fund-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) ledger.Date {
	return ledger.NewDate(year, month, day)
}

func testMember(id, name string) ledger.Member {
	return ledger.Member{
		ID:             ledger.MemberID(id),
		Name:           name,
		Username:       name,
		EnrolledOn:     date(2025, time.March, 1),
		InitialCapital: decimal.Zero,
		CurrentBalance: decimal.Zero,
		CredentialHash: "hash",
	}
}

func testTx(id, member, code string, day ledger.Date, amount int64, txType ledger.TransactionType) ledger.Transaction {
	return ledger.Transaction{
		ID:           ledger.TransactionID(id),
		MemberID:     ledger.MemberID(member),
		PostedOn:     day,
		Amount:       decimal.NewFromInt(amount),
		Type:         txType,
		TrackingCode: code,
		CreatedAt:    day,
	}
}

// =============================================================================
// MEMBERS
// =============================================================================

func TestMembers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	byID, err := s.MemberByID(ctx, "mbr-leila")
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, "leila", byID.Name)
	require.True(t, byID.EnrolledOn.Equal(date(2025, time.March, 1)))

	byName, err := s.MemberByName(ctx, "leila")
	require.NoError(t, err)
	require.NotNil(t, byName)

	byUser, err := s.MemberByUsername(ctx, "leila")
	require.NoError(t, err)
	require.NotNil(t, byUser)

	missing, err := s.MemberByID(ctx, "mbr-ghost")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMembers_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	err := s.CreateMember(ctx, testMember("mbr-leila2", "leila"))
	require.ErrorIs(t, err, ledger.ErrDuplicateMember)
}

func TestMembers_ProjectionUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	require.NoError(t, s.UpdateMemberProjection(ctx, "mbr-leila", decimal.NewFromInt(5_250_000), 510))

	m, err := s.MemberByID(ctx, "mbr-leila")
	require.NoError(t, err)
	require.EqualValues(t, 5_250_000, m.CurrentBalance.IntPart())
	require.EqualValues(t, 510, m.Points)

	err = s.UpdateMemberProjection(ctx, "mbr-ghost", decimal.Zero, 0)
	require.ErrorIs(t, err, ledger.ErrMemberNotFound)
}

// =============================================================================
// TRANSACTION LOG
// =============================================================================

func TestTransactions_AppendAndQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	day0 := date(2025, time.March, 1)
	require.NoError(t, s.AppendTransaction(ctx, testTx("t1", "mbr-leila", "trk-1", day0, 10_000_000, ledger.TxCapitalContribution)))
	require.NoError(t, s.AppendTransaction(ctx, testTx("t2", "mbr-leila", "trk-2", day0.AddDays(1), 250_000, ledger.TxRecurringDue)))
	require.NoError(t, s.AppendTransaction(ctx, testTx("t3", "mbr-leila", "trk-3", day0.AddDays(5), 1_000_000, ledger.TxDrawdown)))

	// Range query is inclusive on both ends and oldest-first.
	inRange, err := s.TransactionsInRange(ctx, "mbr-leila", day0, day0.AddDays(1))
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	require.EqualValues(t, "t1", inRange[0].ID)
	require.EqualValues(t, 10_000_000, inRange[0].Amount.IntPart())
	require.True(t, inRange[0].CreatedAt.Equal(day0), "created_at round-trips")

	// Listing is newest-first.
	all, err := s.ListTransactions(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.EqualValues(t, "t3", all[0].ID)

	earliest, ok, err := s.EarliestTransactionDate(ctx, "mbr-leila")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, earliest.Equal(day0))

	_, ok, err = s.EarliestTransactionDate(ctx, "mbr-ghost")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTransactions_DuplicateTrackingCodeRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	day0 := date(2025, time.March, 1)
	require.NoError(t, s.AppendTransaction(ctx, testTx("t1", "mbr-leila", "trk-1", day0, 5_000_000, ledger.TxCapitalContribution)))

	err := s.AppendTransaction(ctx, testTx("t2", "mbr-leila", "trk-1", day0.AddDays(1), 250_000, ledger.TxRecurringDue))
	require.ErrorIs(t, err, ledger.ErrDuplicateTrackingCode)

	var dup *ledger.DuplicateTrackingCodeError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "trk-1", dup.TrackingCode)
}

func TestTransactions_SumByType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	day0 := date(2025, time.March, 1)
	require.NoError(t, s.AppendTransaction(ctx, testTx("t1", "mbr-leila", "trk-1", day0, 10_000_000, ledger.TxCapitalContribution)))
	require.NoError(t, s.AppendTransaction(ctx, testTx("t2", "mbr-leila", "trk-2", day0.AddDays(1), 250_000, ledger.TxRecurringDue)))
	require.NoError(t, s.AppendTransaction(ctx, testTx("t3", "mbr-leila", "trk-3", day0.AddDays(2), 1_000_000, ledger.TxDrawdown)))

	credits, err := s.SumByTypeUpTo(ctx, "mbr-leila", day0.AddDays(1), ledger.CreditTypes)
	require.NoError(t, err)
	require.EqualValues(t, 10_250_000, credits.IntPart())

	// The drawdown on day 2 is outside the cutoff.
	debits, err := s.SumByTypeUpTo(ctx, "mbr-leila", day0.AddDays(1), ledger.DebitTypes)
	require.NoError(t, err)
	require.True(t, debits.IsZero())

	lifetime, err := s.SumByType(ctx, "mbr-leila", ledger.DebitTypes)
	require.NoError(t, err)
	require.EqualValues(t, 1_000_000, lifetime.IntPart())
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestSnapshots_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	day0 := date(2025, time.March, 1)
	run := []ledger.DailySnapshot{
		{MemberID: "mbr-leila", Day: day0, Balance: decimal.NewFromInt(10_000_000), Earned: 200, Cumulative: 200},
		{MemberID: "mbr-leila", Day: day0.AddDays(1), Balance: decimal.NewFromInt(10_250_000), Earned: 205, Cumulative: 405},
	}
	require.NoError(t, s.UpsertSnapshots(ctx, run))

	// Rewriting the same days replaces rather than duplicates.
	run[1].Balance = decimal.NewFromInt(5_250_000)
	run[1].Earned = 105
	run[1].Cumulative = 305
	require.NoError(t, s.UpsertSnapshots(ctx, run))

	snaps, err := s.SnapshotsByMember(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	require.EqualValues(t, 5_250_000, snaps[0].Balance.IntPart())
	require.EqualValues(t, 305, snaps[0].Cumulative)

	snap, err := s.SnapshotOn(ctx, "mbr-leila", day0)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.EqualValues(t, 200, snap.Earned)

	missing, err := s.SnapshotOn(ctx, "mbr-leila", day0.AddDays(9))
	require.NoError(t, err)
	require.Nil(t, missing)
}

// =============================================================================
// TRANSACTIONAL SEMANTICS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: an append inside WithTx
	// WHEN:  the callback fails afterwards
	// THEN:  the append is rolled back

	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(view ledger.Store) error {
		tx := testTx("t1", "mbr-leila", "trk-1", date(2025, time.March, 1), 5_000_000, ledger.TxCapitalContribution)
		if err := view.AppendTransaction(ctx, tx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	txs, err := s.ListTransactions(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestWithTx_UncommittedAppendVisibleInside(t *testing.T) {
	// The recompute that follows an append must see it before commit.
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateMember(ctx, testMember("mbr-leila", "leila")))

	day0 := date(2025, time.March, 1)
	err := s.WithTx(ctx, func(view ledger.Store) error {
		tx := testTx("t1", "mbr-leila", "trk-1", day0, 5_000_000, ledger.TxCapitalContribution)
		if err := view.AppendTransaction(ctx, tx); err != nil {
			return err
		}
		sum, err := view.SumByTypeUpTo(ctx, "mbr-leila", day0, ledger.CreditTypes)
		if err != nil {
			return err
		}
		require.EqualValues(t, 5_000_000, sum.IntPart())
		return nil
	})
	require.NoError(t, err)

	// And it persists after commit.
	txs, err := s.ListTransactions(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, txs, 1)
}
