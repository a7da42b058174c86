package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/vinoteca/vinoteca-backend/pkg/config"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
)

// Token is the verified subset of an identity-provider ID token.
type Token struct {
	UID   string
	Email string
}

// TokenVerifier checks a bearer credential against the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Token, error)
}

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client.
func InitializeFirebase(ctx context.Context, cfg config.FirebaseConfig) (*fbauth.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firebase auth client: %w", err)
	}

	return client, nil
}

// FirebaseVerifier adapts the Firebase Admin auth client to TokenVerifier.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier wraps the provided Firebase auth client.
func NewFirebaseVerifier(client *fbauth.Client) (*FirebaseVerifier, error) {
	if client == nil {
		return nil, fmt.Errorf("firebase auth client is required")
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify validates the ID token and extracts the caller's identity.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Token, error) {
	decoded, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "invalid token")
	}

	token := &Token{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		token.Email = email
	}
	return token, nil
}
