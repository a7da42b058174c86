package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/vinoteca/vinoteca-backend/pkg/config"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/logger"
)

// Identity is the opaque pair the identity provider hands back for a
// signed-in user. A nil *Identity means signed out.
type Identity struct {
	UID   string
	Email string
}

// UserKey returns the local-storage namespace for the identity: email when
// present, uid otherwise.
func (i *Identity) UserKey() string {
	if i == nil {
		return ""
	}
	if i.Email != "" {
		return i.Email
	}
	return i.UID
}

// Provider is the external identity provider boundary. Emit delivers
// auth-state changes in provider order; Login/Logout only request the
// transition, and the resulting state change arrives through the subscription.
type Provider interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Subscribe(fn func(*Identity)) (unsubscribe func())
	IDToken(ctx context.Context) (string, error)
}

// Observer folds the provider's auth-state stream into a single current
// identity plus a loading flag that stays true until the first callback.
type Observer struct {
	mu       sync.Mutex
	current  *Identity
	loading  bool
	provider Provider
	admin    config.AdminConfig
	logg     *logger.Logger
	subs     []func(*Identity)
	unsub    func()
}

// NewObserver wires the observer onto the provider's auth-state stream.
func NewObserver(provider Provider, admin config.AdminConfig, logg *logger.Logger) (*Observer, error) {
	if provider == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	o := &Observer{
		provider: provider,
		admin:    admin,
		logg:     logg,
		loading:  true,
	}
	o.unsub = provider.Subscribe(o.handleAuthState)
	return o, nil
}

func (o *Observer) handleAuthState(identity *Identity) {
	o.mu.Lock()
	o.current = identity
	o.loading = false
	subs := make([]func(*Identity), len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	// Subscribers run synchronously so transitions reach them in
	// provider order.
	for _, fn := range subs {
		if fn != nil {
			fn(identity)
		}
	}
}

// Current returns the current identity, nil when signed out.
func (o *Observer) Current() *Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Loading reports whether the first auth-state callback is still pending.
func (o *Observer) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// IsAdmin tests the current identity's email against the fixed allow-list.
func (o *Observer) IsAdmin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return false
	}
	return o.admin.IsAdmin(o.current.Email)
}

// Login asks the provider to sign in. A failure is surfaced to the caller
// and leaves the current identity untouched.
func (o *Observer) Login(ctx context.Context) error {
	if err := o.provider.Login(ctx); err != nil {
		if o.logg != nil {
			o.logg.Error(ctx, "login failed", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "login failed")
	}
	return nil
}

// Logout requests sign-out; the nil-identity transition is observed
// asynchronously through the subscription, never returned here.
func (o *Observer) Logout(ctx context.Context) error {
	return o.provider.Logout(ctx)
}

// Token mints a short-lived bearer credential for the current identity.
func (o *Observer) Token(ctx context.Context) (string, error) {
	o.mu.Lock()
	signedIn := o.current != nil
	o.mu.Unlock()
	if !signedIn {
		return "", pkgerrors.New(pkgerrors.CodeUnauthenticated, "not signed in")
	}
	token, err := o.provider.IDToken(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "mint id token")
	}
	return token, nil
}

// Subscribe registers a handler for identity transitions. Handlers run in
// provider order. The returned function removes the subscription.
func (o *Observer) Subscribe(fn func(*Identity)) func() {
	o.mu.Lock()
	o.subs = append(o.subs, fn)
	idx := len(o.subs) - 1
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		o.subs[idx] = nil
		o.mu.Unlock()
	}
}

// Close detaches the observer from the provider stream.
func (o *Observer) Close() {
	if o.unsub != nil {
		o.unsub()
	}
}
