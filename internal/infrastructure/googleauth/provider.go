package googleauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/oksasatya/go-ddd-todo/internal/application"
)

const exchangeTimeout = 10 * time.Second

var ErrEmailNotVerified = errors.New("google account email not verified")

// Provider runs the Google authorization code flow with PKCE.
type Provider struct {
	cfg *oauth2.Config
}

func NewProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{oauthapi.OpenIDScope, oauthapi.UserinfoEmailScope, oauthapi.UserinfoProfileScope},
		Endpoint:     google.Endpoint,
	}}
}

func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the code for a token and reads the userinfo profile.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*application.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	tok, err := p.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	svc, err := oauthapi.NewService(ctx, option.WithTokenSource(p.cfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	return toIdentity(info)
}

func toIdentity(info *oauthapi.Userinfo) (*application.ExternalIdentity, error) {
	verified := info.VerifiedEmail == nil || *info.VerifiedEmail
	if !verified {
		return nil, ErrEmailNotVerified
	}
	return &application.ExternalIdentity{
		Subject:  info.Id,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
		Verified: verified,
	}, nil
}

var _ application.IdentityProvider = (*Provider)(nil)
