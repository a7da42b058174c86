package cartsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vinoteca/vinoteca-backend/internal/cartstore"
	"github.com/vinoteca/vinoteca-backend/internal/carts"
	"github.com/vinoteca/vinoteca-backend/internal/session"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/logger"
	"github.com/vinoteca/vinoteca-backend/pkg/metrics"
)

// State names the synchronizer's position in the login/logout cycle.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateSyncingIn     State = "syncing_in"
	StateAuthenticated State = "authenticated"
	StateSyncingOut    State = "syncing_out"
)

const (
	directionIn  = "in"
	directionOut = "out"
)

// Synchronizer reconciles the working cart with the remote per-user record
// across identity transitions. Remote failures are logged and counted but
// never block a transition: the cart UI stays usable and the local snapshot
// is the fallback of record.
//
// On sign-in a non-empty remote cart replaces the working cart outright.
// Guest lines present before login are discarded by that replacement; the
// behavior is kept for compatibility with the storefront it reimplements
// even though it can silently drop items (see DESIGN.md).
type Synchronizer struct {
	mu      sync.Mutex
	state   State
	gen     uint64
	current *session.Identity

	store   *cartstore.Store
	gateway carts.Gateway
	logg    *logger.Logger
	syncm   *metrics.SyncMetrics

	wg    sync.WaitGroup
	unsub func()
}

// New builds a synchronizer and subscribes it to the observer's identity
// stream.
func New(observer *session.Observer, store *cartstore.Store, gateway carts.Gateway, logg *logger.Logger, syncm *metrics.SyncMetrics) (*Synchronizer, error) {
	if observer == nil {
		return nil, fmt.Errorf("session observer required")
	}
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	s := &Synchronizer{
		state:   StateAnonymous,
		store:   store,
		gateway: gateway,
		logg:    logg,
		syncm:   syncm,
	}
	s.unsub = observer.Subscribe(s.handleTransition)
	return s, nil
}

// State returns the current machine state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until in-flight sync operations resolve.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// Close detaches the synchronizer from the identity stream and waits for
// in-flight work.
func (s *Synchronizer) Close() {
	if s.unsub != nil {
		s.unsub()
	}
	s.wg.Wait()
}

// handleTransition reacts to an identity change. Each transition bumps a
// monotonic generation; an async resolution carrying a stale generation is
// dropped so it cannot clobber state observed after a newer transition.
func (s *Synchronizer) handleTransition(identity *session.Identity) {
	s.mu.Lock()
	prev := s.current
	s.current = identity
	s.gen++
	gen := s.gen

	switch {
	case identity != nil:
		s.state = StateSyncingIn
		s.mu.Unlock()
		s.wg.Add(1)
		go s.syncIn(gen, identity)
	case prev != nil:
		s.state = StateSyncingOut
		s.mu.Unlock()
		s.wg.Add(1)
		go s.syncOut(gen, prev)
	default:
		s.state = StateAnonymous
		s.mu.Unlock()
	}
}

// syncIn fetches the remote cart after sign-in. A non-empty remote cart
// replaces the working cart; NotFound or an empty record leaves the working
// cart as-is to be pushed on the next logout or checkout.
func (s *Synchronizer) syncIn(gen uint64, identity *session.Identity) {
	defer s.wg.Done()
	ctx := context.Background()
	start := time.Now()

	lines, err := s.gateway.Fetch(ctx, identity.UID)
	s.syncm.ObserveDuration(directionIn, time.Since(start))

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.warnStale(ctx, directionIn)
		return
	}
	s.state = StateAuthenticated
	s.mu.Unlock()

	switch {
	case err == nil && len(lines) > 0:
		s.store.Replace(ctx, lines)
		s.syncm.IncSuccess(directionIn)
	case err == nil || pkgerrors.IsNotFound(err):
		// No remote cart: the working (possibly guest) cart stands.
		s.syncm.IncSuccess(directionIn)
	default:
		s.syncm.IncFailure(directionIn)
		if s.logg != nil {
			s.logg.Error(ctx, "cartsync: fetch remote cart failed", err)
		}
	}
}

// syncOut persists the outgoing user's cart after sign-out. The local
// snapshot is written before the remote upsert so a remote failure still
// leaves a durable copy; the working cart is cleared on resolution
// regardless of the remote outcome.
func (s *Synchronizer) syncOut(gen uint64, prev *session.Identity) {
	defer s.wg.Done()
	ctx := context.Background()
	start := time.Now()
	userKey := prev.UserKey()

	lines := s.store.Lines()

	var err error
	if len(lines) > 0 {
		s.store.SnapshotFor(ctx, userKey)
		err = s.gateway.Upsert(ctx, prev.UID, lines)
	} else {
		s.store.RemoveSnapshot(ctx, userKey)
		err = s.gateway.Delete(ctx, prev.UID)
	}
	s.syncm.ObserveDuration(directionOut, time.Since(start))

	if err != nil {
		s.syncm.IncFailure(directionOut)
		if s.logg != nil {
			s.logg.Error(ctx, "cartsync: persist remote cart failed", err)
		}
	} else {
		s.syncm.IncSuccess(directionOut)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.warnStale(ctx, directionOut)
		return
	}
	s.state = StateAnonymous
	s.mu.Unlock()
	s.store.Clear(ctx)
}

// Shutdown performs the best-effort teardown persist: a signed-in user's
// non-empty working cart is snapshotted locally and pushed remotely before
// the process exits. Delivery is not guaranteed.
func (s *Synchronizer) Shutdown(ctx context.Context) {
	s.wg.Wait()

	s.mu.Lock()
	identity := s.current
	s.mu.Unlock()
	if identity == nil {
		return
	}

	lines := s.store.Lines()
	if len(lines) == 0 {
		return
	}

	s.store.SnapshotFor(ctx, identity.UserKey())
	if err := s.gateway.Upsert(ctx, identity.UID, lines); err != nil {
		s.syncm.IncFailure(directionOut)
		if s.logg != nil {
			s.logg.Error(ctx, "cartsync: shutdown persist failed", err)
		}
		return
	}
	s.syncm.IncSuccess(directionOut)
}

func (s *Synchronizer) warnStale(ctx context.Context, direction string) {
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "direction", direction), "cartsync: dropped stale resolution")
	}
}
