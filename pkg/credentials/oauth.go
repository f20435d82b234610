// Package credentials loads the user's OAuth2 credentials from the fixed
// per-user path written by google-oauthlib-tool and turns them into a
// refreshing token source for the gRPC channel.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/askehill/covis2/pkg/errorsx"
	"github.com/askehill/covis2/pkg/logging"
)

// Guidance is logged when loading fails, before the process exits.
const Guidance = "run google-oauthlib-tool to initialize new OAuth 2.0 credentials"

type userCredentials struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	Scopes       []string `json:"scopes"`
}

// DefaultPath is the fixed per-user credentials location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonCredentialsLoad)
	}
	return filepath.Join(home, "covis2", "credentials.json"), nil
}

// Load reads the credentials file and refreshes the access token eagerly so
// an invalid grant is caught at startup rather than mid-conversation.
func Load(ctx context.Context, path string, logger *slog.Logger) (oauth2.TokenSource, error) {
	log := logging.NewComponentLogger(logger, "credentials")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errorsx.Wrapf(err, errorsx.ReasonCredentialsLoad, "read %s", path)
	}

	var creds userCredentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, errorsx.Wrapf(err, errorsx.ReasonCredentialsLoad, "parse %s", path)
	}
	if creds.RefreshToken == "" || creds.ClientID == "" || creds.TokenURI == "" {
		return nil, errorsx.Wrapf(errMissingFields, errorsx.ReasonCredentialsLoad, "parse %s", path)
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       creds.Scopes,
		Endpoint:     oauth2.Endpoint{TokenURL: creds.TokenURI},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonCredentialsRefresh)
	}
	log.Info("credentials refreshed", slog.String("path", path))

	return oauth2.ReuseTokenSource(token, source), nil
}

var errMissingFields = errors.New("missing client_id, refresh_token or token_uri")
