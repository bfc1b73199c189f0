package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Identity is the claim set extracted from a verified federated assertion.
type Identity struct {
	Email       string
	DisplayName string
	Subject     string
	Picture     string
}

// IdentityVerifier validates a third-party identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// FirebaseVerifier validates Google ID tokens through the Firebase Admin SDK.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Admin SDK from a service-account
// credentials JSON blob.
func NewFirebaseVerifier(ctx context.Context, credentialsJSON string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the assertion's signature, issuer, audience and expiry against
// Google's public keys, then extracts the profile claims.
func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	identity := &Identity{Subject: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if picture, ok := decoded.Claims["picture"].(string); ok {
		identity.Picture = picture
	}
	return identity, nil
}

var _ IdentityVerifier = (*FirebaseVerifier)(nil)
