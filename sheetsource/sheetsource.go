// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheetsource

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"google.golang.org/api/googleapi"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/cliparse"
)

// FullRange covers every column the aggregation reads.
const FullRange = "A:Z"

// ErrInvalidURL means no spreadsheet id could be extracted from a URL.
var ErrInvalidURL = errors.New("invalid spreadsheet url")

func init() {
	apperr.Register(ErrInvalidURL, apperr.InvalidInput, "Invalid Google Sheets URL")
}

// Source reads spreadsheets by external id.
type Source interface {
	Title(ctx context.Context, externalID string) (string, error)
	Rows(ctx context.Context, externalID string) ([][]string, error)
}

var (
	urlPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	idPattern  = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
)

// ExtractSpreadsheetID returns the id segment of a Google Sheets URL.
func ExtractSpreadsheetID(sheetURL string) (string, error) {
	m := urlPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

// New picks the configured source: a local .xlsx directory when set,
// otherwise the Google Sheets API.
func New(ctx context.Context, cfg cliparse.Config) (Source, error) {
	if cfg.SheetsXLSXDir != "" {
		return NewXLSX(cfg.SheetsXLSXDir), nil
	}
	return NewGoogle(ctx, cfg)
}

const errNotShared = "Spreadsheet not found or not shared with the reader"

// classify maps a source error to the taxonomy. Missing or unshared
// spreadsheets are NotFound; anything else is a retryable fetch failure.
func classify(err error, message string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound, http.StatusForbidden:
			return apperr.Wrap(apperr.NotFound, errNotShared, err)
		case http.StatusBadRequest:
			return apperr.Wrap(apperr.InvalidInput, "Spreadsheet could not be read", err)
		}
	}
	return apperr.Wrap(apperr.SourceUnavailable, message, err)
}
