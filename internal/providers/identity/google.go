package identity

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// FederatedClaims is what a federated provider vouches for.
type FederatedClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	Raw           map[string]any
}

type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*FederatedClaims, error)
}

// GoogleVerifier validates Google ID tokens issued for clientID.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*FederatedClaims, error) {
	if g.clientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID is not set")
	}
	p, err := idtoken.Validate(ctx, rawIDToken, g.clientID)
	if err != nil {
		return nil, err
	}

	c := &FederatedClaims{Subject: p.Subject, Raw: p.Claims}
	c.Email, _ = p.Claims["email"].(string)
	c.EmailVerified, _ = p.Claims["email_verified"].(bool)
	c.Name, _ = p.Claims["name"].(string)
	c.Picture, _ = p.Claims["picture"].(string)
	return c, nil
}
