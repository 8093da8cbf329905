// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheetsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/danielhkuo/applicant-reviewer/cliparse"
)

// Google reads spreadsheets through the Sheets API with a service account.
// Spreadsheets must be shared with the service account's email.
type Google struct {
	svc *sheets.Service
}

// NewGoogle builds a read-only Sheets client from a credentials file or
// from the service account email and private key.
func NewGoogle(ctx context.Context, cfg cliparse.Config, extra ...option.ClientOption) (*Google, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}

	switch {
	case cfg.SheetsCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.SheetsCredentialsFile))
	case cfg.SheetsClientEmail != "" && cfg.SheetsPrivateKey != "":
		creds, err := serviceAccountJSON(cfg.SheetsClientEmail, cfg.SheetsPrivateKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	case len(extra) == 0:
		return nil, errors.New("no Google Sheets credentials configured")
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Google{svc: svc}, nil
}

// serviceAccountJSON assembles a credentials document. Private keys copied
// into env files usually carry literal \n sequences.
func serviceAccountJSON(email, privateKey string) ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": email,
		"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}

func (g *Google) Title(ctx context.Context, externalID string) (string, error) {
	resp, err := g.svc.Spreadsheets.Get(externalID).
		IncludeGridData(false).
		Fields("properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", classify(err, "Failed to fetch spreadsheet")
	}
	if resp.Properties == nil {
		return "", nil
	}
	return resp.Properties.Title, nil
}

func (g *Google) Rows(ctx context.Context, externalID string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(externalID, FullRange).Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "Failed to fetch spreadsheet")
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				rows[i][j] = s
			} else {
				rows[i][j] = fmt.Sprint(v)
			}
		}
	}
	return rows, nil
}
