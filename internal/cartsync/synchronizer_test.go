package cartsync

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinoteca/vinoteca-backend/internal/cartstore"
	"github.com/vinoteca/vinoteca-backend/internal/session"
	"github.com/vinoteca/vinoteca-backend/pkg/config"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/metrics"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

type fakeProvider struct {
	handler func(*session.Identity)
}

func (f *fakeProvider) Login(ctx context.Context) error  { return nil }
func (f *fakeProvider) Logout(ctx context.Context) error { return nil }

func (f *fakeProvider) Subscribe(fn func(*session.Identity)) func() {
	f.handler = fn
	return func() { f.handler = nil }
}

func (f *fakeProvider) IDToken(ctx context.Context) (string, error) { return "tok", nil }

func (f *fakeProvider) emit(identity *session.Identity) {
	if f.handler != nil {
		f.handler(identity)
	}
}

type fakeGateway struct {
	mu        sync.Mutex
	remote    map[string]types.CartLines
	fetchErr  error
	fetchGate chan struct{}
	upserts   []string
	deletes   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{remote: map[string]types.CartLines{}}
}

func (g *fakeGateway) Fetch(ctx context.Context, userID string) (types.CartLines, error) {
	if g.fetchGate != nil {
		<-g.fetchGate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	lines, ok := g.remote[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return lines, nil
}

func (g *fakeGateway) Upsert(ctx context.Context, userID string, lines types.CartLines) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remote[userID] = lines.Clone()
	g.upserts = append(g.upserts, userID)
	return nil
}

func (g *fakeGateway) Delete(ctx context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.remote, userID)
	g.deletes = append(g.deletes, userID)
	return nil
}

func (g *fakeGateway) upsertCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.upserts)
}

func (g *fakeGateway) deleteCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.deletes)
}

type harness struct {
	provider *fakeProvider
	observer *session.Observer
	store    *cartstore.Store
	kv       *cartstore.MemoryKV
	gateway  *fakeGateway
	sync     *Synchronizer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	kv := cartstore.NewMemoryKV()
	store, err := cartstore.New(ctx, kv, nil)
	require.NoError(t, err)

	provider := &fakeProvider{}
	observer, err := session.NewObserver(provider, config.AdminConfig{}, nil)
	require.NoError(t, err)

	gateway := newFakeGateway()
	syncm := metrics.NewSyncMetrics(nil)
	synchronizer, err := New(observer, store, gateway, nil, syncm)
	require.NoError(t, err)

	return &harness{
		provider: provider,
		observer: observer,
		store:    store,
		kv:       kv,
		gateway:  gateway,
		sync:     synchronizer,
	}
}

func tempranillo() types.CartLine {
	return types.CartLine{ID: 1, Name: "Tempranillo", Price: 1200, Qty: 1}
}

func garnacha() types.CartLine {
	return types.CartLine{ID: 2, Name: "Garnacha", Price: 990, Qty: 2}
}

func ana() *session.Identity {
	return &session.Identity{UID: "u1", Email: "ana@example.com"}
}

func TestLoginNonEmptyRemoteReplacesWorkingCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.AddLine(ctx, types.CartLine{ID: 9, Name: "Guest pick", Price: 500}, 1)
	h.gateway.remote["u1"] = types.CartLines{tempranillo(), garnacha()}

	h.provider.emit(ana())
	h.sync.Wait()

	lines := h.store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ID)
	assert.Equal(t, int64(2), lines[1].ID)
	assert.Equal(t, StateAuthenticated, h.sync.State())
}

func TestLoginWithoutRemoteCartKeepsWorkingCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.AddLine(ctx, tempranillo(), 1)

	h.provider.emit(ana())
	h.sync.Wait()

	lines := h.store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ID)
	assert.Equal(t, StateAuthenticated, h.sync.State())
}

func TestLoginFetchFailureNeverBlocksTransition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.AddLine(ctx, tempranillo(), 1)
	h.gateway.fetchErr = pkgerrors.New(pkgerrors.CodeTransient, "remote down")

	h.provider.emit(ana())
	h.sync.Wait()

	assert.Equal(t, StateAuthenticated, h.sync.State())
	assert.Len(t, h.store.Lines(), 1)
}

func TestLogoutPersistsNonEmptyCartToBothStoresThenClears(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.provider.emit(ana())
	h.sync.Wait()
	h.store.AddLine(ctx, tempranillo(), 2)

	h.provider.emit(nil)
	h.sync.Wait()

	raw, ok, err := h.kv.Get(ctx, cartstore.SnapshotKey("ana@example.com"))
	require.NoError(t, err)
	require.True(t, ok)
	var snapshot types.CartLines
	require.NoError(t, json.Unmarshal([]byte(raw), &snapshot))
	require.Len(t, snapshot, 1)
	assert.Equal(t, 2, snapshot[0].Qty)

	require.Equal(t, 1, h.gateway.upsertCount())
	remote := h.gateway.remote["u1"]
	require.Len(t, remote, 1)
	assert.Equal(t, 2, remote[0].Qty)

	assert.Empty(t, h.store.Lines())
	assert.Equal(t, StateAnonymous, h.sync.State())
}

func TestLogoutEmptyCartDeletesBothStores(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.AddLine(ctx, tempranillo(), 1)
	h.store.SnapshotFor(ctx, "ana@example.com")
	h.store.Clear(ctx)
	h.gateway.remote["u1"] = types.CartLines{tempranillo()}

	h.provider.emit(ana())
	h.sync.Wait()
	h.store.Clear(ctx)

	h.provider.emit(nil)
	h.sync.Wait()

	_, ok, err := h.kv.Get(ctx, cartstore.SnapshotKey("ana@example.com"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, h.gateway.deleteCount())
	assert.NotContains(t, h.gateway.remote, "u1")
	assert.Equal(t, StateAnonymous, h.sync.State())
}

func TestStaleFetchResolutionIsDropped(t *testing.T) {
	h := newHarness(t)

	gate := make(chan struct{})
	h.gateway.fetchGate = gate
	h.gateway.remote["u1"] = types.CartLines{tempranillo(), garnacha()}

	h.provider.emit(ana())
	h.provider.emit(nil)

	close(gate)
	h.sync.Wait()

	// The logout transition owns the final state; the late fetch must not
	// resurrect the remote lines.
	assert.Empty(t, h.store.Lines())
	assert.Equal(t, StateAnonymous, h.sync.State())
}

func TestShutdownPersistsSignedInCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.provider.emit(ana())
	h.sync.Wait()
	h.store.AddLine(ctx, garnacha(), 1)

	h.sync.Shutdown(ctx)

	require.Equal(t, 1, h.gateway.upsertCount())
	remote := h.gateway.remote["u1"]
	require.Len(t, remote, 1)
	assert.Equal(t, int64(2), remote[0].ID)

	raw, ok, err := h.kv.Get(ctx, cartstore.SnapshotKey("ana@example.com"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Garnacha")
}

func TestShutdownSignedOutIsNoOp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.AddLine(ctx, tempranillo(), 1)
	h.sync.Shutdown(ctx)

	assert.Equal(t, 0, h.gateway.upsertCount())
	assert.Equal(t, 0, h.gateway.deleteCount())
}
