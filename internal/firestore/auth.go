package firestore

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/welling-fm/fireinspect/internal/conf"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/httpclient"
)

// DatastoreScope grants read and write access to Firestore documents
const DatastoreScope = "https://www.googleapis.com/auth/datastore"

// HTTPClient returns the HTTP client and API key for the configured auth
// mode. All modes share one pooled transport sending userAgent. API key mode
// sends the key on every request; the other modes return an OAuth2 client and
// no key.
func HTTPClient(ctx context.Context, settings *conf.FirestoreSettings, userAgent string) (*http.Client, string, error) {
	if err := settings.RequireCredentials(); err != nil {
		return nil, "", err
	}
	base := httpclient.New(&httpclient.Config{UserAgent: userAgent})

	switch settings.Auth {
	case conf.AuthAPIKey:
		return base, settings.APIKey, nil

	case conf.AuthServiceAccount:
		rt, err := htransport.NewTransport(ctx, base.Transport,
			option.WithCredentialsFile(settings.CredentialsFile),
			option.WithScopes(DatastoreScope))
		if err != nil {
			return nil, "", errors.New(err).
				Component("firestore").
				Category(errors.CategoryConfiguration).
				Context("credentials_file", settings.CredentialsFile).
				Build()
		}
		return &http.Client{Transport: rt}, "", nil

	case conf.AuthToken:
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.Token, TokenType: "Bearer"})
		return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), src), "", nil

	default:
		return nil, "", errors.Newf("unsupported firestore auth mode %q", settings.Auth).
			Component("firestore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// NewClientFromSettings builds a Client from the firestore config section.
func NewClientFromSettings(ctx context.Context, settings *conf.FirestoreSettings, cfg Config) (*Client, error) {
	httpClient, apiKey, err := HTTPClient(ctx, settings, cfg.UserAgent)
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = settings.BaseURL
	cfg.Project = settings.Project
	cfg.APIKey = apiKey
	cfg.HTTPClient = httpClient
	cfg.Timeout = settings.Timeout
	cfg.PageSize = settings.PageSize
	cfg.CacheTTL = settings.CacheTTL
	cfg.MaxAttempts = settings.MaxAttempts
	return NewClient(cfg)
}
