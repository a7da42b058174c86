package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinoteca/vinoteca-backend/pkg/config"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
)

type fakeProvider struct {
	loginErr  error
	logoutErr error
	tokenErr  error
	token     string
	handler   func(*Identity)
}

func (f *fakeProvider) Login(ctx context.Context) error  { return f.loginErr }
func (f *fakeProvider) Logout(ctx context.Context) error { return f.logoutErr }

func (f *fakeProvider) Subscribe(fn func(*Identity)) func() {
	f.handler = fn
	return func() { f.handler = nil }
}

func (f *fakeProvider) IDToken(ctx context.Context) (string, error) {
	return f.token, f.tokenErr
}

func (f *fakeProvider) emit(identity *Identity) {
	if f.handler != nil {
		f.handler(identity)
	}
}

func TestUserKeyPrefersEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", (&Identity{UID: "u1", Email: "ana@example.com"}).UserKey())
	assert.Equal(t, "u1", (&Identity{UID: "u1"}).UserKey())
	var none *Identity
	assert.Equal(t, "", none.UserKey())
}

func TestObserverLoadingUntilFirstCallback(t *testing.T) {
	provider := &fakeProvider{}
	obs, err := NewObserver(provider, config.AdminConfig{}, nil)
	require.NoError(t, err)

	assert.True(t, obs.Loading())
	assert.Nil(t, obs.Current())

	provider.emit(nil)
	assert.False(t, obs.Loading())
	assert.Nil(t, obs.Current())
}

func TestObserverTracksCurrentIdentity(t *testing.T) {
	provider := &fakeProvider{}
	obs, err := NewObserver(provider, config.AdminConfig{}, nil)
	require.NoError(t, err)

	provider.emit(&Identity{UID: "u1", Email: "ana@example.com"})
	require.NotNil(t, obs.Current())
	assert.Equal(t, "u1", obs.Current().UID)

	provider.emit(nil)
	assert.Nil(t, obs.Current())
}

func TestObserverDeliversTransitionsInProviderOrder(t *testing.T) {
	provider := &fakeProvider{}
	obs, err := NewObserver(provider, config.AdminConfig{}, nil)
	require.NoError(t, err)

	var seen []string
	obs.Subscribe(func(identity *Identity) {
		if identity == nil {
			seen = append(seen, "out")
			return
		}
		seen = append(seen, identity.UID)
	})

	provider.emit(&Identity{UID: "u1"})
	provider.emit(nil)
	provider.emit(&Identity{UID: "u2"})

	assert.Equal(t, []string{"u1", "out", "u2"}, seen)
}

func TestLoginFailureLeavesIdentityUntouched(t *testing.T) {
	provider := &fakeProvider{loginErr: errors.New("popup closed")}
	obs, err := NewObserver(provider, config.AdminConfig{}, nil)
	require.NoError(t, err)

	provider.emit(&Identity{UID: "u1"})

	err = obs.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthenticated, pkgerrors.As(err).Code())
	require.NotNil(t, obs.Current())
	assert.Equal(t, "u1", obs.Current().UID)
}

func TestIsAdminUsesAllowList(t *testing.T) {
	provider := &fakeProvider{}
	admin := config.AdminConfig{Emails: []string{"owner@vinoteca.test"}}
	obs, err := NewObserver(provider, admin, nil)
	require.NoError(t, err)

	assert.False(t, obs.IsAdmin())

	provider.emit(&Identity{UID: "u1", Email: "Owner@Vinoteca.Test"})
	assert.True(t, obs.IsAdmin())

	provider.emit(&Identity{UID: "u2", Email: "guest@vinoteca.test"})
	assert.False(t, obs.IsAdmin())
}

func TestTokenRequiresSignIn(t *testing.T) {
	provider := &fakeProvider{token: "tok-123"}
	obs, err := NewObserver(provider, config.AdminConfig{}, nil)
	require.NoError(t, err)

	_, err = obs.Token(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthenticated, pkgerrors.As(err).Code())

	provider.emit(&Identity{UID: "u1"})
	token, err := obs.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}
