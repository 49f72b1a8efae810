package googleauth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oauthapi "google.golang.org/api/oauth2/v2"
)

func TestAuthCodeURL_CarriesStateAndChallenge(t *testing.T) {
	p := NewProvider("client-id", "secret", "http://localhost:8080/api/auth/google/callback")

	raw := p.AuthCodeURL("st-1", "verifier-verifier-verifier-verifier-verifier")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestToIdentity(t *testing.T) {
	yes, no := true, false

	id, err := toIdentity(&oauthapi.Userinfo{Id: "1", Email: "a@example.com", Name: "A", Picture: "p", VerifiedEmail: &yes})
	require.NoError(t, err)
	assert.Equal(t, "1", id.Subject)
	assert.Equal(t, "a@example.com", id.Email)

	_, err = toIdentity(&oauthapi.Userinfo{Email: "b@example.com", VerifiedEmail: &no})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}
