// Package store provides an in-memory TxStore implementation (tests/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sandogh/fund-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	members    map[ledger.MemberID]ledger.Member
	byName     map[string]ledger.MemberID
	byUsername map[string]ledger.MemberID
	txs        map[ledger.MemberID][]ledger.Transaction
	tracking   map[string]bool
	snaps      map[ledger.MemberID]map[string]ledger.DailySnapshot
}

func NewMemory() *Memory {
	return &Memory{
		members:    make(map[ledger.MemberID]ledger.Member),
		byName:     make(map[string]ledger.MemberID),
		byUsername: make(map[string]ledger.MemberID),
		txs:        make(map[ledger.MemberID][]ledger.Transaction),
		tracking:   make(map[string]bool),
		snaps:      make(map[ledger.MemberID]map[string]ledger.DailySnapshot),
	}
}

// =============================================================================
// MEMBERS
// =============================================================================

func (m *Memory) CreateMember(_ context.Context, member ledger.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createMemberLocked(member)
}

func (m *Memory) createMemberLocked(member ledger.Member) error {
	if _, exists := m.members[member.ID]; exists {
		return ledger.ErrDuplicateMember
	}
	if _, exists := m.byName[member.Name]; exists {
		return ledger.ErrDuplicateMember
	}
	if _, exists := m.byUsername[member.Username]; exists {
		return ledger.ErrDuplicateMember
	}
	m.members[member.ID] = member
	m.byName[member.Name] = member.ID
	m.byUsername[member.Username] = member.ID
	return nil
}

func (m *Memory) MemberByID(_ context.Context, id ledger.MemberID) (*ledger.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if member, ok := m.members[id]; ok {
		return &member, nil
	}
	return nil, nil
}

func (m *Memory) MemberByName(_ context.Context, name string) (*ledger.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byName[name]; ok {
		member := m.members[id]
		return &member, nil
	}
	return nil, nil
}

func (m *Memory) MemberByUsername(_ context.Context, username string) (*ledger.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byUsername[username]; ok {
		member := m.members[id]
		return &member, nil
	}
	return nil, nil
}

func (m *Memory) ListMembers(_ context.Context) ([]ledger.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]ledger.Member, 0, len(m.members))
	for _, member := range m.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (m *Memory) UpdateMemberProjection(_ context.Context, id ledger.MemberID, balance decimal.Decimal, points int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateProjectionLocked(id, balance, points)
}

func (m *Memory) updateProjectionLocked(id ledger.MemberID, balance decimal.Decimal, points int64) error {
	member, ok := m.members[id]
	if !ok {
		return ledger.ErrMemberNotFound
	}
	member.CurrentBalance = balance
	member.Points = points
	m.members[id] = member
	return nil
}

// =============================================================================
// TRANSACTION LOG (append-only)
// =============================================================================

func (m *Memory) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(tx)
}

func (m *Memory) appendLocked(tx ledger.Transaction) error {
	if m.tracking[tx.TrackingCode] {
		return &ledger.DuplicateTrackingCodeError{TrackingCode: tx.TrackingCode}
	}

	txs := m.txs[tx.MemberID]
	// Keep the slice ordered by posting date.
	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].PostedOn.After(tx.PostedOn)
	})
	txs = append(txs, ledger.Transaction{})
	copy(txs[i+1:], txs[i:])
	txs[i] = tx
	m.txs[tx.MemberID] = txs
	m.tracking[tx.TrackingCode] = true
	return nil
}

func (m *Memory) TransactionsInRange(_ context.Context, id ledger.MemberID, from, to ledger.Date) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []ledger.Transaction
	for _, tx := range m.txs[id] {
		if from.BeforeOrEqual(tx.PostedOn) && tx.PostedOn.BeforeOrEqual(to) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *Memory) ListTransactions(_ context.Context, id ledger.MemberID) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []ledger.Transaction
	if id != "" {
		result = append(result, m.txs[id]...)
	} else {
		for _, txs := range m.txs {
			result = append(result, txs...)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[j].PostedOn.Before(result[i].PostedOn) })
	return result, nil
}

func (m *Memory) SumByTypeUpTo(_ context.Context, id ledger.MemberID, date ledger.Date, types []ledger.TransactionType) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, tx := range m.txs[id] {
		if tx.PostedOn.After(date) {
			break
		}
		if typeIn(tx.Type, types) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) SumByType(_ context.Context, id ledger.MemberID, types []ledger.TransactionType) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, tx := range m.txs[id] {
		if typeIn(tx.Type, types) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) EarliestTransactionDate(_ context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := m.txs[id]
	if len(txs) == 0 {
		return ledger.Date{}, false, nil
	}
	return txs[0].PostedOn, true, nil
}

func typeIn(t ledger.TransactionType, types []ledger.TransactionType) bool {
	for _, candidate := range types {
		if t == candidate {
			return true
		}
	}
	return false
}

// =============================================================================
// DAILY SNAPSHOTS (derived, upserted)
// =============================================================================

func (m *Memory) UpsertSnapshots(_ context.Context, snaps []ledger.DailySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertSnapshotsLocked(snaps)
	return nil
}

func (m *Memory) upsertSnapshotsLocked(snaps []ledger.DailySnapshot) {
	for _, snap := range snaps {
		byDay := m.snaps[snap.MemberID]
		if byDay == nil {
			byDay = make(map[string]ledger.DailySnapshot)
			m.snaps[snap.MemberID] = byDay
		}
		byDay[snap.Day.String()] = snap
	}
}

func (m *Memory) SnapshotOn(_ context.Context, id ledger.MemberID, day ledger.Date) (*ledger.DailySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if snap, ok := m.snaps[id][day.String()]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (m *Memory) SnapshotsByMember(_ context.Context, id ledger.MemberID) ([]ledger.DailySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := make([]ledger.DailySnapshot, 0, len(m.snaps[id]))
	for _, snap := range m.snaps[id] {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[j].Day.Before(snaps[i].Day) })
	return snaps, nil
}

func (m *Memory) LatestSnapshotDate(_ context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latestSnapshotLocked(id)
}

func (m *Memory) latestSnapshotLocked(id ledger.MemberID) (ledger.Date, bool, error) {
	var latest ledger.Date
	found := false
	for _, snap := range m.snaps[id] {
		if !found || snap.Day.After(latest) {
			latest = snap.Day
			found = true
		}
	}
	return latest, found, nil
}

// =============================================================================
// TRANSACTIONAL VIEW - snapshot + rollback on error
// =============================================================================

// WithTx executes fn against a view of the store, restoring the prior state
// if fn fails. Simulates the sqlite store's rollback semantics.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.snapshotState()
	if err := fn(&memView{parent: m}); err != nil {
		m.restoreState(saved)
		return err
	}
	return nil
}

type memoryState struct {
	members    map[ledger.MemberID]ledger.Member
	byName     map[string]ledger.MemberID
	byUsername map[string]ledger.MemberID
	txs        map[ledger.MemberID][]ledger.Transaction
	tracking   map[string]bool
	snaps      map[ledger.MemberID]map[string]ledger.DailySnapshot
}

func (m *Memory) snapshotState() memoryState {
	s := memoryState{
		members:    make(map[ledger.MemberID]ledger.Member, len(m.members)),
		byName:     make(map[string]ledger.MemberID, len(m.byName)),
		byUsername: make(map[string]ledger.MemberID, len(m.byUsername)),
		txs:        make(map[ledger.MemberID][]ledger.Transaction, len(m.txs)),
		tracking:   make(map[string]bool, len(m.tracking)),
		snaps:      make(map[ledger.MemberID]map[string]ledger.DailySnapshot, len(m.snaps)),
	}
	for k, v := range m.members {
		s.members[k] = v
	}
	for k, v := range m.byName {
		s.byName[k] = v
	}
	for k, v := range m.byUsername {
		s.byUsername[k] = v
	}
	for k, v := range m.txs {
		s.txs[k] = append([]ledger.Transaction{}, v...)
	}
	for k, v := range m.tracking {
		s.tracking[k] = v
	}
	for k, v := range m.snaps {
		byDay := make(map[string]ledger.DailySnapshot, len(v))
		for day, snap := range v {
			byDay[day] = snap
		}
		s.snaps[k] = byDay
	}
	return s
}

func (m *Memory) restoreState(s memoryState) {
	m.members = s.members
	m.byName = s.byName
	m.byUsername = s.byUsername
	m.txs = s.txs
	m.tracking = s.tracking
	m.snaps = s.snaps
}

// memView operates on the parent's state while the parent's lock is held.
type memView struct {
	parent *Memory
}

func (v *memView) CreateMember(_ context.Context, member ledger.Member) error {
	return v.parent.createMemberLocked(member)
}

func (v *memView) MemberByID(_ context.Context, id ledger.MemberID) (*ledger.Member, error) {
	if member, ok := v.parent.members[id]; ok {
		return &member, nil
	}
	return nil, nil
}

func (v *memView) MemberByName(_ context.Context, name string) (*ledger.Member, error) {
	if id, ok := v.parent.byName[name]; ok {
		member := v.parent.members[id]
		return &member, nil
	}
	return nil, nil
}

func (v *memView) MemberByUsername(_ context.Context, username string) (*ledger.Member, error) {
	if id, ok := v.parent.byUsername[username]; ok {
		member := v.parent.members[id]
		return &member, nil
	}
	return nil, nil
}

func (v *memView) ListMembers(ctx context.Context) ([]ledger.Member, error) {
	members := make([]ledger.Member, 0, len(v.parent.members))
	for _, member := range v.parent.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (v *memView) UpdateMemberProjection(_ context.Context, id ledger.MemberID, balance decimal.Decimal, points int64) error {
	return v.parent.updateProjectionLocked(id, balance, points)
}

func (v *memView) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	return v.parent.appendLocked(tx)
}

func (v *memView) TransactionsInRange(_ context.Context, id ledger.MemberID, from, to ledger.Date) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	for _, tx := range v.parent.txs[id] {
		if from.BeforeOrEqual(tx.PostedOn) && tx.PostedOn.BeforeOrEqual(to) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (v *memView) ListTransactions(_ context.Context, id ledger.MemberID) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	if id != "" {
		result = append(result, v.parent.txs[id]...)
	} else {
		for _, txs := range v.parent.txs {
			result = append(result, txs...)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[j].PostedOn.Before(result[i].PostedOn) })
	return result, nil
}

func (v *memView) SumByTypeUpTo(_ context.Context, id ledger.MemberID, date ledger.Date, types []ledger.TransactionType) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range v.parent.txs[id] {
		if tx.PostedOn.After(date) {
			break
		}
		if typeIn(tx.Type, types) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (v *memView) SumByType(_ context.Context, id ledger.MemberID, types []ledger.TransactionType) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range v.parent.txs[id] {
		if typeIn(tx.Type, types) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (v *memView) EarliestTransactionDate(_ context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	txs := v.parent.txs[id]
	if len(txs) == 0 {
		return ledger.Date{}, false, nil
	}
	return txs[0].PostedOn, true, nil
}

func (v *memView) UpsertSnapshots(_ context.Context, snaps []ledger.DailySnapshot) error {
	v.parent.upsertSnapshotsLocked(snaps)
	return nil
}

func (v *memView) SnapshotOn(_ context.Context, id ledger.MemberID, day ledger.Date) (*ledger.DailySnapshot, error) {
	if snap, ok := v.parent.snaps[id][day.String()]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (v *memView) LatestSnapshotDate(_ context.Context, id ledger.MemberID) (ledger.Date, bool, error) {
	return v.parent.latestSnapshotLocked(id)
}

func (v *memView) SnapshotsByMember(_ context.Context, id ledger.MemberID) ([]ledger.DailySnapshot, error) {
	snaps := make([]ledger.DailySnapshot, 0, len(v.parent.snaps[id]))
	for _, snap := range v.parent.snaps[id] {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[j].Day.Before(snaps[i].Day) })
	return snaps, nil
}
