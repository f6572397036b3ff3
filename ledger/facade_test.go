package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sandogh/fund-engine/ledger"
	memstore "github.com/sandogh/fund-engine/ledger/store"
)

// passthrough implements ledger.CalendarAdapter with canonical dates on
// both sides, keeping these tests independent of any display calendar.
type passthrough struct{}

func (passthrough) ToCanonical(local string) (ledger.Date, error) {
	d, err := ledger.ParseDate(local)
	if err != nil {
		return ledger.Date{}, &ledger.InvalidDateError{Input: local, Reason: "want YYYY-MM-DD"}
	}
	return d, nil
}

func (passthrough) ToLocal(d ledger.Date) string { return d.String() }

func newTestFacade(t *testing.T, today ledger.Date) (*ledger.Facade, *memstore.Memory) {
	t.Helper()
	s := memstore.NewMemory()
	e := pinnedEngine(s, today)
	return ledger.NewFacade(s, e, passthrough{}), s
}

// =============================================================================
// REGISTRATION AND AUTHENTICATION
// =============================================================================

func TestRegister_And_Authenticate(t *testing.T) {
	// GIVEN: a registered member
	// WHEN:  authenticating with the right and wrong credentials
	// THEN:  only the right one succeeds; the hash is never the plaintext

	ctx := context.Background()
	f, s := newTestFacade(t, date(2025, time.March, 10))

	id, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "s3cret")
	require.NoError(t, err)
	require.EqualValues(t, "mbr-leila", id)

	stored, err := s.MemberByUsername(ctx, "leila")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotEqual(t, "s3cret", stored.CredentialHash)

	m, ok, err := f.Authenticate(ctx, "leila", "s3cret")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, m.ID)

	_, ok, err = f.Authenticate(ctx, "leila", "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = f.Authenticate(ctx, "nobody", "s3cret")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegister_DuplicateMember(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, date(2025, time.March, 10))

	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)

	_, err = f.Register(ctx, "Leila", "2025-03-02", "leila2", "pw")
	require.ErrorIs(t, err, ledger.ErrDuplicateMember)

	_, err = f.Register(ctx, "Leila Too", "2025-03-02", "leila", "pw")
	require.ErrorIs(t, err, ledger.ErrDuplicateMember)
}

func TestRegister_InvalidDate(t *testing.T) {
	_, err := newTestFacadeRegister(t, "not-a-date")
	require.ErrorIs(t, err, ledger.ErrInvalidDate)
}

func newTestFacadeRegister(t *testing.T, enrollment string) (ledger.MemberID, error) {
	t.Helper()
	f, _ := newTestFacade(t, date(2025, time.March, 10))
	return f.Register(context.Background(), "Leila", enrollment, "leila", "pw")
}

// =============================================================================
// RECORDING
// =============================================================================

func TestRecordTransaction_UpdatesProjection(t *testing.T) {
	// GIVEN: a registered member
	// WHEN:  recording a contribution dated three days back
	// THEN:  the snapshots through today exist and the cached projection
	//        matches the final day

	ctx := context.Background()
	today := date(2025, time.March, 4)
	f, s := newTestFacade(t, today)

	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)

	txID, err := f.RecordTransaction(ctx, "Leila", "2025-03-01",
		decimal.NewFromInt(10_000_000), ledger.TxCapitalContribution, "first deposit", "trk-1")
	require.NoError(t, err)
	require.EqualValues(t, "txn-trk-1", txID)

	snaps, err := s.SnapshotsByMember(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, snaps, 4)

	m, err := f.Member(ctx, "mbr-leila")
	require.NoError(t, err)
	require.EqualValues(t, 10_000_000, m.CurrentBalance.IntPart())
	require.EqualValues(t, 800, m.Points)
}

func TestRecordTransaction_Rejections(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, date(2025, time.March, 4))
	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)

	// Missing tracking code.
	_, err = f.RecordTransaction(ctx, "Leila", "2025-03-01",
		decimal.NewFromInt(5_000_000), ledger.TxCapitalContribution, "", "")
	require.ErrorIs(t, err, ledger.ErrTrackingCodeRequired)

	// Amount rule violation.
	_, err = f.RecordTransaction(ctx, "Leila", "2025-03-01",
		decimal.NewFromInt(1_000), ledger.TxCapitalContribution, "", "trk-1")
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	// Bad date.
	_, err = f.RecordTransaction(ctx, "Leila", "01.03.2025",
		decimal.NewFromInt(5_000_000), ledger.TxCapitalContribution, "", "trk-1")
	require.ErrorIs(t, err, ledger.ErrInvalidDate)

	// Unknown member.
	_, err = f.RecordTransaction(ctx, "Nobody", "2025-03-01",
		decimal.NewFromInt(5_000_000), ledger.TxCapitalContribution, "", "trk-1")
	require.ErrorIs(t, err, ledger.ErrMemberNotFound)
}

func TestRecordTransaction_DuplicateTrackingCodeRollsBack(t *testing.T) {
	// GIVEN: a recorded transaction
	// WHEN:  a second transaction reuses its tracking code
	// THEN:  the call fails and neither the log nor the snapshots change

	ctx := context.Background()
	f, s := newTestFacade(t, date(2025, time.March, 4))
	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)

	_, err = f.RecordTransaction(ctx, "Leila", "2025-03-01",
		decimal.NewFromInt(10_000_000), ledger.TxCapitalContribution, "", "trk-1")
	require.NoError(t, err)

	before, err := s.SnapshotsByMember(ctx, "mbr-leila")
	require.NoError(t, err)

	_, err = f.RecordTransaction(ctx, "Leila", "2025-03-02",
		decimal.NewFromInt(250_000), ledger.TxRecurringDue, "", "trk-1")
	require.ErrorIs(t, err, ledger.ErrDuplicateTrackingCode)

	after, err := s.SnapshotsByMember(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Equal(t, before, after)

	txs, err := f.ListTransactions(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestRecordTransaction_AfterQuietPeriodKeepsPoints(t *testing.T) {
	// GIVEN: a contribution recorded, then ten days without activity
	// WHEN:  the next due is recorded
	// THEN:  the cached points include the quiet days' accrual rather than
	//        restarting from the new transaction's date

	ctx := context.Background()
	s := memstore.NewMemory()
	now := date(2025, time.March, 1)
	e := ledger.NewEngine(s, 0).WithClock(func() ledger.Date { return now })
	f := ledger.NewFacade(s, e, passthrough{})

	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)
	mustRecord(t, f, "Leila", "2025-03-01", 10_000_000, ledger.TxCapitalContribution, "t1")

	now = date(2025, time.March, 11)
	mustRecord(t, f, "Leila", "2025-03-11", 250_000, ledger.TxRecurringDue, "t2")

	m, err := f.Member(ctx, "mbr-leila")
	require.NoError(t, err)
	require.EqualValues(t, 2205, m.Points)

	entries, err := f.DailyHistory(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, entries, 11)
}

// =============================================================================
// REPORTING
// =============================================================================

func TestTotals_SumsPerType(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, date(2025, time.March, 10))
	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)

	mustRecord(t, f, "Leila", "2025-03-01", 10_000_000, ledger.TxCapitalContribution, "t1")
	mustRecord(t, f, "Leila", "2025-03-02", 250_000, ledger.TxRecurringDue, "t2")
	mustRecord(t, f, "Leila", "2025-03-03", 500_000, ledger.TxRecurringDue, "t3")
	mustRecord(t, f, "Leila", "2025-03-04", 1_000_000, ledger.TxDrawdown, "t4")

	totals, err := f.Totals(ctx, "mbr-leila")
	require.NoError(t, err)
	require.EqualValues(t, 10_000_000, totals.CapitalContributed.IntPart())
	require.EqualValues(t, 750_000, totals.RecurringDuesPaid.IntPart())

	_, err = f.Totals(ctx, "mbr-ghost")
	require.ErrorIs(t, err, ledger.ErrMemberNotFound)
}

func TestDailyHistory_LabelsLocalDates(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, date(2025, time.March, 3))
	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)
	mustRecord(t, f, "Leila", "2025-03-01", 5_000_000, ledger.TxCapitalContribution, "t1")

	entries, err := f.DailyHistory(ctx, "mbr-leila")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "2025-03-03", entries[0].LocalDay)
	require.Equal(t, "2025-03-01", entries[2].LocalDay)
}

func TestFundTotalBalance_SumsMembers(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, date(2025, time.March, 5))

	_, err := f.Register(ctx, "Leila", "2025-03-01", "leila", "pw")
	require.NoError(t, err)
	_, err = f.Register(ctx, "Reza", "2025-03-01", "reza", "pw")
	require.NoError(t, err)

	mustRecord(t, f, "Leila", "2025-03-01", 10_000_000, ledger.TxCapitalContribution, "t1")
	mustRecord(t, f, "Reza", "2025-03-02", 5_000_000, ledger.TxCapitalContribution, "t2")
	mustRecord(t, f, "Reza", "2025-03-03", 1_000_000, ledger.TxDrawdown, "t3")

	total, err := f.FundTotalBalance(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 14_000_000, total.IntPart())
}

func mustRecord(t *testing.T, f *ledger.Facade, name, day string, amount int64, txType ledger.TransactionType, code string) {
	t.Helper()
	_, err := f.RecordTransaction(context.Background(), name, day,
		decimal.NewFromInt(amount), txType, "", code)
	require.NoError(t, err)
}
