package googlesheets

import (
	"context"
	"os"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewWithJSONKeyFile creates a Source using a service account JSON key file
func NewWithJSONKeyFile(ctx context.Context, config Config, jsonPath string) (*Source, error) {
	// If jsonPath is empty, try GOOGLE_APPLICATION_CREDENTIALS env var
	if jsonPath == "" {
		jsonPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if jsonPath == "" {
			return nil, errors.New("no JSON key file path provided and GOOGLE_APPLICATION_CREDENTIALS not set")
		}
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, errors.Errorf("failed to read JSON key file: %w", err)
	}

	return NewWithJSONKeyData(ctx, config, jsonData)
}

// NewWithJSONKeyData creates a Source using JSON key data
func NewWithJSONKeyData(ctx context.Context, config Config, jsonData []byte) (*Source, error) {
	creds, err := google.CredentialsFromJSON(ctx, jsonData, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, errors.Errorf("failed to parse credentials: %w", err)
	}

	return NewSource(ctx, config, option.WithCredentials(creds))
}

// NewWithDefaultCredentials creates a Source using Application Default Credentials
func NewWithDefaultCredentials(ctx context.Context, config Config) (*Source, error) {
	// This will use:
	// 1. GOOGLE_APPLICATION_CREDENTIALS environment variable if set
	// 2. gcloud auth application-default credentials if available
	// 3. GCE metadata service if running on Google Cloud
	tokenSource, err := google.DefaultTokenSource(ctx, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, errors.Errorf("failed to get default token source: %w", err)
	}

	return NewSource(ctx, config, option.WithTokenSource(tokenSource))
}
