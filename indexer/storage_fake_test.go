package indexer

import (
	"math/big"

	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/runes"
	"github.com/btcrunes/runeindexer/storage"
)

// fakeStore is an in-memory storage.Store used to exercise the processor
// without a real MySQL backend.
type fakeStore struct {
	entries     map[runes.Id]*runes.Entry
	entryByRune map[string]runes.Id
	balances    map[string][]runes.Balance // keyed by outpoint.String()
	maxNumber   *uint64
	lastBatch   *fakeBatch // most recent batch returned by Begin, for test inspection
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:     map[runes.Id]*runes.Entry{},
		entryByRune: map[string]runes.Id{},
		balances:    map[string][]runes.Balance{},
	}
}

func (s *fakeStore) LoadEntry(id runes.Id) (*runes.Entry, er.R) {
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (s *fakeStore) LoadEntryByRune(r runes.Rune) (*runes.Entry, er.R) {
	id, ok := s.entryByRune[r.Value().String()]
	if !ok {
		return nil, nil
	}
	return s.LoadEntry(id)
}

func (s *fakeStore) LoadBalancesByOutpoint(outpoint wire.OutPoint) ([]runes.Balance, er.R) {
	return s.balances[outpoint.String()], nil
}

func (s *fakeStore) MaxRuneNumber() (*uint64, er.R) {
	return s.maxNumber, nil
}

func (s *fakeStore) Begin() (storage.Batch, er.R) {
	b := &fakeBatch{store: s}
	s.lastBatch = b
	return b, nil
}

func (s *fakeStore) putEntry(e *runes.Entry) {
	s.entries[e.Id] = e
	s.entryByRune[e.SpacedRune.Rune.Value().String()] = e.Id
	n := e.Number
	if s.maxNumber == nil || n > *s.maxNumber {
		s.maxNumber = &n
	}
}

func (s *fakeStore) putBalance(b runes.Balance) {
	key := b.Outpoint.String()
	s.balances[key] = append(s.balances[key], b)
}

// fakeBatch stages mutations directly into the backing fakeStore on Commit;
// Rollback simply discards them.
type fakeBatch struct {
	store        *fakeStore
	spent        []wire.OutPoint
	newEntries   map[runes.Id]*runes.Entry
	mintUpdates  map[runes.Id]*big.Int
	burnUpdates  map[runes.Id]*big.Int
	newBalances  []runes.Balance
	events       []runes.Event
	rawRunestone string
	committed    bool
	rolledBack   bool
}

func (b *fakeBatch) MarkOutpointSpent(outpoint wire.OutPoint) er.R {
	b.spent = append(b.spent, outpoint)
	return nil
}

func (b *fakeBatch) StoreEntry(id runes.Id, entry *runes.Entry) er.R {
	if b.newEntries == nil {
		b.newEntries = map[runes.Id]*runes.Entry{}
	}
	b.newEntries[id] = entry
	return nil
}

func (b *fakeBatch) UpdateMints(id runes.Id, mints *big.Int) er.R {
	if b.mintUpdates == nil {
		b.mintUpdates = map[runes.Id]*big.Int{}
	}
	b.mintUpdates[id] = mints
	return nil
}

func (b *fakeBatch) UpdateBurned(id runes.Id, burned *big.Int) er.R {
	if b.burnUpdates == nil {
		b.burnUpdates = map[runes.Id]*big.Int{}
	}
	b.burnUpdates[id] = burned
	return nil
}

func (b *fakeBatch) StoreBalances(balances []runes.Balance) er.R {
	b.newBalances = append(b.newBalances, balances...)
	return nil
}

func (b *fakeBatch) StoreEvents(events []runes.Event, rawRunestoneJSON string) er.R {
	b.events = append(b.events, events...)
	b.rawRunestone = rawRunestoneJSON
	return nil
}

func (b *fakeBatch) Commit() er.R {
	b.committed = true
	for _, op := range b.spent {
		bals := b.store.balances[op.String()]
		for i := range bals {
			bals[i].Spent = true
		}
	}
	for id, e := range b.newEntries {
		b.store.putEntry(e)
		_ = id
	}
	for id, mints := range b.mintUpdates {
		if e, ok := b.store.entries[id]; ok {
			e.Mints = mints
		}
	}
	for id, burned := range b.burnUpdates {
		if e, ok := b.store.entries[id]; ok {
			e.Burned = burned
		}
	}
	for _, bal := range b.newBalances {
		b.store.putBalance(bal)
	}
	return nil
}

func (b *fakeBatch) Rollback() er.R {
	b.rolledBack = true
	return nil
}
