package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vinoteca/vinoteca-backend/pkg/logger"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

// WorkingKey is the durable key of the anonymous working cart.
const WorkingKey = "cart"

// SnapshotKey returns the durable key of a per-identity cart snapshot.
func SnapshotKey(userKey string) string {
	return fmt.Sprintf("cart_%s", userKey)
}

// Store is the working cart: an in-memory ordered line list mirrored to a
// durable key-value backend on every mutation. Durable failures never reach
// the caller; the store degrades to in-memory-only and logs the problem.
type Store struct {
	mu    sync.Mutex
	lines types.CartLines
	kv    KV
	logg  *logger.Logger
	subs  []func(types.CartLines)
}

// New builds a store and restores the anonymous working cart from the durable
// backend when a stored value exists.
func New(ctx context.Context, kv KV, logg *logger.Logger) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv backend required")
	}
	s := &Store{kv: kv, logg: logg}
	if raw, ok, err := kv.Get(ctx, WorkingKey); err != nil {
		s.warn(ctx, "restore working cart", err)
	} else if ok {
		var lines types.CartLines
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			s.warn(ctx, "decode working cart", err)
		} else {
			s.lines = lines
		}
	}
	return s, nil
}

// AddLine merges the product into the cart: an existing line for the same id
// has its qty incremented, otherwise a new line is appended. qty below one
// defaults to one.
func (s *Store) AddLine(ctx context.Context, product types.CartLine, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ID == product.ID {
			s.lines[i].Qty += qty
			merged = true
			break
		}
	}
	if !merged {
		product.Qty = qty
		s.lines = append(s.lines, product)
	}
	s.persistLocked(ctx)
	lines := s.lines.Clone()
	s.mu.Unlock()
	s.notify(lines)
}

// RemoveLine deletes the line with the given id. Absent ids are a no-op.
func (s *Store) RemoveLine(ctx context.Context, id int64) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ID != id {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.persistLocked(ctx)
	lines := s.lines.Clone()
	s.mu.Unlock()
	s.notify(lines)
}

// SetQty sets the quantity of the line with the given id directly. Values at
// or below zero are stored as-is; keeping them out is the caller's concern.
func (s *Store) SetQty(ctx context.Context, id int64, qty int) {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Qty = qty
			break
		}
	}
	s.persistLocked(ctx)
	lines := s.lines.Clone()
	s.mu.Unlock()
	s.notify(lines)
}

// Clear empties the working cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify(nil)
}

// Replace swaps the whole working list, used when a remote cart becomes
// authoritative after sign-in.
func (s *Store) Replace(ctx context.Context, lines types.CartLines) {
	s.mu.Lock()
	s.lines = lines.Clone()
	s.persistLocked(ctx)
	out := s.lines.Clone()
	s.mu.Unlock()
	s.notify(out)
}

// Lines returns a copy of the current working list.
func (s *Store) Lines() types.CartLines {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Clone()
}

// SnapshotFor writes the current list to the per-identity durable key.
func (s *Store) SnapshotFor(ctx context.Context, userKey string) {
	if userKey == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(nonNil(s.lines))
	if err != nil {
		s.warn(ctx, "encode cart snapshot", err)
		return
	}
	if err := s.kv.Set(ctx, SnapshotKey(userKey), string(raw)); err != nil {
		s.warn(ctx, "write cart snapshot", err)
	}
}

// RestoreFor replaces the working list with the per-identity snapshot when
// one exists; otherwise it is a no-op.
func (s *Store) RestoreFor(ctx context.Context, userKey string) {
	if userKey == "" {
		return
	}
	raw, ok, err := s.kv.Get(ctx, SnapshotKey(userKey))
	if err != nil {
		s.warn(ctx, "read cart snapshot", err)
		return
	}
	if !ok {
		return
	}
	var lines types.CartLines
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.warn(ctx, "decode cart snapshot", err)
		return
	}
	s.mu.Lock()
	s.lines = lines
	s.persistLocked(ctx)
	out := s.lines.Clone()
	s.mu.Unlock()
	s.notify(out)
}

// RemoveSnapshot deletes the per-identity snapshot key.
func (s *Store) RemoveSnapshot(ctx context.Context, userKey string) {
	if userKey == "" {
		return
	}
	if err := s.kv.Del(ctx, SnapshotKey(userKey)); err != nil {
		s.warn(ctx, "delete cart snapshot", err)
	}
}

// Subscribe registers a handler invoked synchronously after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(types.CartLines)) func() {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.subs[idx] = nil
		s.mu.Unlock()
	}
}

// persistLocked mirrors the full working list to the anonymous durable key.
// Whole-list writes keep the format trivially readable; O(n) serialization
// per mutation is fine at storefront cart sizes.
func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(nonNil(s.lines))
	if err != nil {
		s.warn(ctx, "encode working cart", err)
		return
	}
	if err := s.kv.Set(ctx, WorkingKey, string(raw)); err != nil {
		s.warn(ctx, "write working cart", err)
	}
}

func (s *Store) notify(lines types.CartLines) {
	s.mu.Lock()
	subs := make([]func(types.CartLines), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(lines)
		}
	}
}

func nonNil(lines types.CartLines) types.CartLines {
	if lines == nil {
		return types.CartLines{}
	}
	return lines
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cause", err.Error()), "cartstore: "+msg)
	}
}
