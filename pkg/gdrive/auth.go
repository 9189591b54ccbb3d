package gdrive

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// ErrNoCredentials is returned when AuthConfig names no credential source.
var ErrNoCredentials = eris.New("gdrive: no credentials configured")

// AuthConfig selects how the client obtains bearer tokens. The first
// populated source wins: service account JSON, refresh token, static token.
type AuthConfig struct {
	CredentialsFile string
	CredentialsJSON string

	ClientID     string
	ClientSecret string
	RefreshToken string

	AccessToken string

	Scopes []string
}

// NewTokenSource builds a caching token source for cfg.
func NewTokenSource(ctx context.Context, cfg AuthConfig) (oauth2.TokenSource, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{drive.DriveReadonlyScope}
	}

	var ts oauth2.TokenSource
	switch {
	case cfg.CredentialsJSON != "" || cfg.CredentialsFile != "":
		data := []byte(cfg.CredentialsJSON)
		if len(data) == 0 {
			b, err := os.ReadFile(cfg.CredentialsFile)
			if err != nil {
				return nil, eris.Wrapf(err, "gdrive: read credentials file %s", cfg.CredentialsFile)
			}
			data = b
		}
		creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
		if err != nil {
			return nil, eris.Wrap(err, "gdrive: parse credentials")
		}
		ts = creds.TokenSource
	case cfg.RefreshToken != "":
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, eris.New("gdrive: refresh token requires client id and secret")
		}
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		}
		ts = oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	case cfg.AccessToken != "":
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	default:
		return nil, ErrNoCredentials
	}
	return oauth2.ReuseTokenSource(nil, ts), nil
}
