/*
Package sqlite provides the SQLite-backed implementation of the ledger
storage interfaces.

PURPOSE:
  Implements ledger.Store and ledger.TxStore over SQLite. The same SQL
  patterns apply to PostgreSQL with minor dialect differences.

KEY TABLES:
  members:          identity, enrollment, cached balance/points projection
  transactions:     immutable append-only log of capital movements
  daily_snapshots:  derived (member, day) accrual rows, upserted

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statement touches the transactions table. The single
  INSERT is guarded by a UNIQUE index on tracking_code, which doubles as the
  log's idempotency key; violations map to ErrDuplicateTrackingCode.

DATES AND AMOUNTS:
  Dates are stored as canonical YYYY-MM-DD strings, so lexicographic
  comparison in SQL matches chronological order. Amounts are whole Toman
  stored as INTEGER, so SUM aggregates run server-side; the domain reads
  them back as decimals.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery
  sync.RWMutex serializes access within the process.

USAGE:
  store, err := sqlite.New("./data/fund.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/sandogh/fund-engine/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite allows a single writer, and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Members (identity + cached projection)
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		enrolled_on TEXT NOT NULL,
		initial_capital INTEGER NOT NULL DEFAULT 0,
		current_balance INTEGER NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		credential_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Transactions (append-only; tracking_code is the idempotency key)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES members(id),
		posted_on TEXT NOT NULL,
		amount INTEGER NOT NULL,
		tx_type TEXT NOT NULL,
		description TEXT,
		tracking_code TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	-- Balance walk (hot path): member + posting date
	CREATE INDEX IF NOT EXISTS idx_transactions_member_date
		ON transactions(member_id, posted_on);

	-- Per-type opening sums
	CREATE INDEX IF NOT EXISTS idx_transactions_member_type_date
		ON transactions(member_id, tx_type, posted_on);

	-- Daily snapshots (derived; one row per member-day, upserted)
	CREATE TABLE IF NOT EXISTS daily_snapshots (
		member_id TEXT NOT NULL REFERENCES members(id),
		day TEXT NOT NULL,
		balance INTEGER NOT NULL,
		earned INTEGER NOT NULL,
		cumulative INTEGER NOT NULL,
		computed_at TEXT NOT NULL,
		PRIMARY KEY (member_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_member_day
		ON daily_snapshots(member_id, day DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every query helper can
// run against the pool or inside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// MEMBERS
// =============================================================================

func (s *Store) CreateMember(ctx context.Context, m ledger.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createMember(ctx, s.db, m)
}

func createMember(ctx context.Context, db dbtx, m ledger.Member) error {
	query := `
		INSERT INTO members
		(id, name, username, enrolled_on, initial_capital, current_balance, points, credential_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		m.ID,
		m.Name,
		m.Username,
		m.EnrolledOn.String(),
		m.InitialCapital.IntPart(),
		m.CurrentBalance.IntPart(),
		m.Points,
		m.CredentialHash,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateMember
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

const memberColumns = `id, name, username, enrolled_on, initial_capital, current_balance, points, credential_hash`

func (s *Store) MemberByID(ctx context.Context, id ledger.MemberID) (*ledger.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memberBy(ctx, s.db, "id", string(id))
}

func (s *Store) MemberByName(ctx context.Context, name string) (*ledger.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memberBy(ctx, s.db, "name", name)
}

func (s *Store) MemberByUsername(ctx context.Context, username string) (*ledger.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memberBy(ctx, s.db, "username", username)
}

func memberBy(ctx context.Context, db dbtx, column, value string) (*ledger.Member, error) {
	// column is one of three fixed lookup keys, never caller input.
	query := fmt.Sprintf("SELECT %s FROM members WHERE %s = ?", memberColumns, column)
	m, err := scanMember(db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]ledger.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMembers(ctx, s.db)
}

func listMembers(ctx context.Context, db dbtx) ([]ledger.Member, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+memberColumns+" FROM members ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []ledger.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMember(row rowScanner) (ledger.Member, error) {
	var (
		m              ledger.Member
		enrolledOn     string
		initialCapital int64
		currentBalance int64
	)
	err := row.Scan(&m.ID, &m.Name, &m.Username, &enrolledOn,
		&initialCapital, &currentBalance, &m.Points, &m.CredentialHash)
	if err != nil {
		return m, err
	}
	m.EnrolledOn, err = ledger.ParseDate(enrolledOn)
	if err != nil {
		return m, fmt.Errorf("failed to scan member %s: %w", m.ID, err)
	}
	m.InitialCapital = decimal.NewFromInt(initialCapital)
	m.CurrentBalance = decimal.NewFromInt(currentBalance)
	return m, nil
}

func (s *Store) UpdateMemberProjection(ctx context.Context, id ledger.MemberID, balance decimal.Decimal, points int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateMemberProjection(ctx, s.db, id, balance, points)
}

func updateMemberProjection(ctx context.Context, db dbtx, id ledger.MemberID, balance decimal.Decimal, points int64) error {
	res, err := db.ExecContext(ctx,
		"UPDATE members SET current_balance = ?, points = ? WHERE id = ?",
		balance.IntPart(), points, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update member projection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrMemberNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTION LOG (append-only)
// =============================================================================

func (s *Store) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendTransaction(ctx, s.db, tx)
}

func appendTransaction(ctx context.Context, db dbtx, tx ledger.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, member_id, posted_on, amount, tx_type, description, tracking_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		tx.ID,
		tx.MemberID,
		tx.PostedOn.String(),
		tx.Amount.IntPart(),
		tx.Type,
		tx.Description,
		tx.TrackingCode,
		tx.CreatedAt.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &ledger.DuplicateTrackingCodeError{TrackingCode: tx.TrackingCode}
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

const transactionColumns = `id, member_id, posted_on, amount, tx_type, description, tracking_code, created_at`

func (s *Store) TransactionsInRange(ctx context.Context, id ledger.MemberID, from, to ledger.Date) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionsInRange(ctx, s.db, id, from, to)
}

func transactionsInRange(ctx context.Context, db dbtx, id ledger.MemberID, from, to ledger.Date) ([]ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE member_id = ? AND posted_on >= ? AND posted_on <= ?
		ORDER BY posted_on ASC, created_at ASC
	`
	return queryTransactions(ctx, db, query, id, from.String(), to.String())
}

func (s *Store) ListTransactions(ctx context.Context, id ledger.MemberID) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTransactions(ctx, s.db, id)
}

func listTransactions(ctx context.Context, db dbtx, id ledger.MemberID) ([]ledger.Transaction, error) {
	if id != "" {
		query := `
			SELECT ` + transactionColumns + `
			FROM transactions
			WHERE member_id = ?
			ORDER BY posted_on DESC, created_at DESC
		`
		return queryTransactions(ctx, db, query, id)
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY posted_on DESC, created_at DESC
	`
	return queryTransactions(ctx, db, query)
}

func (s *Store) SumByTypeUpTo(ctx context.Context, id ledger.MemberID, date ledger.Date, types []ledger.TransactionType) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumByType(ctx, s.db, id, &date, types)
}

func (s *Store) SumByType(ctx context.Context, id ledger.MemberID, types []ledger.TransactionType) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumByType(ctx, s.db, id, nil, types)
}

func sumByType(ctx context.Context, db dbtx, id ledger.MemberID, upTo *ledger.Date, types []ledger.TransactionType) (decimal.Decimal, error) {
	if len(types) == 0 {
		return decimal.Zero, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(types)), ",")
	query := "SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE member_id = ? AND tx_type IN (" + placeholders + ")"
	args := []any{id}
	for _, t := range types {
		args = append(args, t)
	}
	if upTo != nil {
		query += " AND posted_on <= ?"
		args = append(args, upTo.String())
	}

	var sum int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return decimal.NewFromInt(sum), nil
}

func (s *Store) EarliestTransactionDate(ctx context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return earliestTransactionDate(ctx, s.db, id)
}

func earliestTransactionDate(ctx context.Context, db dbtx, id ledger.MemberID) (ledger.Date, bool, error) {
	var day sql.NullString
	err := db.QueryRowContext(ctx,
		"SELECT MIN(posted_on) FROM transactions WHERE member_id = ?", id,
	).Scan(&day)
	if err != nil {
		return ledger.Date{}, false, fmt.Errorf("failed to find earliest transaction: %w", err)
	}
	if !day.Valid {
		return ledger.Date{}, false, nil
	}
	d, err := ledger.ParseDate(day.String)
	if err != nil {
		return ledger.Date{}, false, err
	}
	return d, true, nil
}

func queryTransactions(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (ledger.Transaction, error) {
	var (
		tx          ledger.Transaction
		postedOn    string
		amount      int64
		description sql.NullString
		createdAt   string
	)
	err := rows.Scan(&tx.ID, &tx.MemberID, &postedOn, &amount, &tx.Type, &description, &tx.TrackingCode, &createdAt)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}
	tx.PostedOn, err = ledger.ParseDate(postedOn)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction %s: %w", tx.ID, err)
	}
	tx.CreatedAt, err = ledger.ParseDate(createdAt)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction %s: %w", tx.ID, err)
	}
	tx.Amount = decimal.NewFromInt(amount)
	tx.Description = description.String
	return tx, nil
}

// =============================================================================
// DAILY SNAPSHOTS (derived, upserted)
// =============================================================================

func (s *Store) UpsertSnapshots(ctx context.Context, snaps []ledger.DailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertSnapshots(ctx, s.db, snaps)
}

func upsertSnapshots(ctx context.Context, db dbtx, snaps []ledger.DailySnapshot) error {
	query := `
		INSERT INTO daily_snapshots (member_id, day, balance, earned, cumulative, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(member_id, day) DO UPDATE SET
			balance = excluded.balance,
			earned = excluded.earned,
			cumulative = excluded.cumulative,
			computed_at = excluded.computed_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, snap := range snaps {
		_, err := db.ExecContext(ctx, query,
			snap.MemberID,
			snap.Day.String(),
			snap.Balance.IntPart(),
			snap.Earned,
			snap.Cumulative,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert snapshot %s/%s: %w", snap.MemberID, snap.Day, err)
		}
	}
	return nil
}

const snapshotColumns = `member_id, day, balance, earned, cumulative`

func (s *Store) SnapshotOn(ctx context.Context, id ledger.MemberID, day ledger.Date) (*ledger.DailySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotOn(ctx, s.db, id, day)
}

func snapshotOn(ctx context.Context, db dbtx, id ledger.MemberID, day ledger.Date) (*ledger.DailySnapshot, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM daily_snapshots WHERE member_id = ? AND day = ?",
		id, day.String(),
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}

func (s *Store) LatestSnapshotDate(ctx context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latestSnapshotDate(ctx, s.db, id)
}

func latestSnapshotDate(ctx context.Context, db dbtx, id ledger.MemberID) (ledger.Date, bool, error) {
	var day sql.NullString
	err := db.QueryRowContext(ctx,
		"SELECT MAX(day) FROM daily_snapshots WHERE member_id = ?", id,
	).Scan(&day)
	if err != nil {
		return ledger.Date{}, false, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	if !day.Valid {
		return ledger.Date{}, false, nil
	}
	d, err := ledger.ParseDate(day.String)
	if err != nil {
		return ledger.Date{}, false, err
	}
	return d, true, nil
}

func (s *Store) SnapshotsByMember(ctx context.Context, id ledger.MemberID) ([]ledger.DailySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotsByMember(ctx, s.db, id)
}

func snapshotsByMember(ctx context.Context, db dbtx, id ledger.MemberID) ([]ledger.DailySnapshot, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+snapshotColumns+" FROM daily_snapshots WHERE member_id = ? ORDER BY day DESC",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []ledger.DailySnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func scanSnapshot(row rowScanner) (ledger.DailySnapshot, error) {
	var (
		snap    ledger.DailySnapshot
		day     string
		balance int64
	)
	err := row.Scan(&snap.MemberID, &day, &balance, &snap.Earned, &snap.Cumulative)
	if err != nil {
		return snap, err
	}
	snap.Day, err = ledger.ParseDate(day)
	if err != nil {
		return snap, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	snap.Balance = decimal.NewFromInt(balance)
	return snap, nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction. The view handed to fn
// reads through the same *sql.Tx, so an uncommitted append is visible to
// the recompute that follows it.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txView{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txView implements ledger.Store against an open *sql.Tx. It never touches
// the store mutex; WithTx already holds it.
type txView struct {
	tx *sql.Tx
}

func (v *txView) CreateMember(ctx context.Context, m ledger.Member) error {
	return createMember(ctx, v.tx, m)
}

func (v *txView) MemberByID(ctx context.Context, id ledger.MemberID) (*ledger.Member, error) {
	return memberBy(ctx, v.tx, "id", string(id))
}

func (v *txView) MemberByName(ctx context.Context, name string) (*ledger.Member, error) {
	return memberBy(ctx, v.tx, "name", name)
}

func (v *txView) MemberByUsername(ctx context.Context, username string) (*ledger.Member, error) {
	return memberBy(ctx, v.tx, "username", username)
}

func (v *txView) ListMembers(ctx context.Context) ([]ledger.Member, error) {
	return listMembers(ctx, v.tx)
}

func (v *txView) UpdateMemberProjection(ctx context.Context, id ledger.MemberID, balance decimal.Decimal, points int64) error {
	return updateMemberProjection(ctx, v.tx, id, balance, points)
}

func (v *txView) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	return appendTransaction(ctx, v.tx, tx)
}

func (v *txView) TransactionsInRange(ctx context.Context, id ledger.MemberID, from, to ledger.Date) ([]ledger.Transaction, error) {
	return transactionsInRange(ctx, v.tx, id, from, to)
}

func (v *txView) ListTransactions(ctx context.Context, id ledger.MemberID) ([]ledger.Transaction, error) {
	return listTransactions(ctx, v.tx, id)
}

func (v *txView) SumByTypeUpTo(ctx context.Context, id ledger.MemberID, date ledger.Date, types []ledger.TransactionType) (decimal.Decimal, error) {
	return sumByType(ctx, v.tx, id, &date, types)
}

func (v *txView) SumByType(ctx context.Context, id ledger.MemberID, types []ledger.TransactionType) (decimal.Decimal, error) {
	return sumByType(ctx, v.tx, id, nil, types)
}

func (v *txView) EarliestTransactionDate(ctx context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	return earliestTransactionDate(ctx, v.tx, id)
}

func (v *txView) UpsertSnapshots(ctx context.Context, snaps []ledger.DailySnapshot) error {
	return upsertSnapshots(ctx, v.tx, snaps)
}

func (v *txView) SnapshotOn(ctx context.Context, id ledger.MemberID, day ledger.Date) (*ledger.DailySnapshot, error) {
	return snapshotOn(ctx, v.tx, id, day)
}

func (v *txView) LatestSnapshotDate(ctx context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	return latestSnapshotDate(ctx, v.tx, id)
}

func (v *txView) SnapshotsByMember(ctx context.Context, id ledger.MemberID) ([]ledger.DailySnapshot, error) {
	return snapshotsByMember(ctx, v.tx, id)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"daily_snapshots", "transactions", "members"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
