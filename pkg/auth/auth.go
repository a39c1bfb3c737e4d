// Package auth builds an authenticated Google Sheets service from a
// service-account credential. The credential JSON comes either from the
// GOOGLE_SHEETS_CREDENTIALS environment variable (deployments) or from a
// key file on disk (local runs); the rest of the module does not care
// which.
package auth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// CredentialsEnv holds the service-account JSON directly when set.
const CredentialsEnv = "GOOGLE_SHEETS_CREDENTIALS"

// Scopes required to read and write the tracking spreadsheet.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// Error marks a credential failure. Fatal: the session cannot proceed.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("google sheets auth: %v", e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// LoadCredentials returns the raw service-account JSON. The environment
// variable wins over the key file.
func LoadCredentials(keyFile string) ([]byte, error) {
	if v := os.Getenv(CredentialsEnv); v != "" {
		return []byte(v), nil
	}
	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read credential file %s: %w", keyFile, err)}
	}
	return b, nil
}

// NewSheetsService authenticates with the given credential JSON and
// returns a Sheets API service.
func NewSheetsService(ctx context.Context, credJSON []byte) (*sheets.Service, error) {
	cfg, err := google.JWTConfigFromJSON(credJSON, Scopes...)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("parse service-account credential: %w", err)}
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return srv, nil
}
