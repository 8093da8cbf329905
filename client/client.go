// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/models"
)

var (
	// ErrSessionExpired means the request was still unauthenticated after
	// one refresh. The user must sign in again.
	ErrSessionExpired = errors.New("session expired")
	// ErrAccessDenied means the signed-in identity is not allowed.
	ErrAccessDenied = errors.New("access denied")
)

const refreshPath = "/auth/refresh"

// Client calls the reviewer API with a cookie-held session. Every API call
// that comes back 401 triggers exactly one refresh and one retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL. A nil httpClient gets a default one
// with a cookie jar.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar, Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// HTTPClient returns the underlying client holding the session cookie.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Status reports whether the session is live. The client sends no refresh
// call of its own; the server slides a live session's expiry on every status
// check.
func (c *Client) Status(ctx context.Context) (models.AuthStatusResponse, error) {
	var out models.AuthStatusResponse
	resp, err := c.send(ctx, http.MethodGet, "/auth/status", nil)
	if err != nil {
		return out, fmt.Errorf("status: %w", err)
	}
	defer resp.Body.Close()
	if err := decode(resp, &out); err != nil {
		return out, fmt.Errorf("status: %w", err)
	}
	return out, nil
}

// Refresh slides the session expiry.
func (c *Client) Refresh(ctx context.Context) (models.RefreshResponse, error) {
	var out models.RefreshResponse
	resp, err := c.send(ctx, http.MethodPost, refreshPath, nil)
	if err != nil {
		return out, fmt.Errorf("refresh: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return out, ErrSessionExpired
	}
	if err := decode(resp, &out); err != nil {
		return out, fmt.Errorf("refresh: %w", err)
	}
	return out, nil
}

// Logout revokes the session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, nil)
}

func (c *Client) CreateSheet(ctx context.Context, req models.CreateSheetRequest) (models.Sheet, error) {
	var out models.Sheet
	err := c.do(ctx, http.MethodPost, "/api/sheets", req, &out)
	return out, err
}

func (c *Client) ListSheets(ctx context.Context) ([]models.Sheet, error) {
	var out []models.Sheet
	err := c.do(ctx, http.MethodGet, "/api/sheets", nil, &out)
	return out, err
}

func (c *Client) DeleteSheet(ctx context.Context, sheetID string) (models.DeleteSheetResponse, error) {
	var out models.DeleteSheetResponse
	err := c.do(ctx, http.MethodDelete, "/api/sheets/"+url.PathEscape(sheetID), nil, &out)
	return out, err
}

func (c *Client) Applicants(ctx context.Context, sheetID string) (models.ApplicantsResponse, error) {
	var out models.ApplicantsResponse
	err := c.do(ctx, http.MethodGet, "/api/sheets/"+url.PathEscape(sheetID)+"/applicants", nil, &out)
	return out, err
}

func (c *Client) Votes(ctx context.Context, sheetID string) (map[string][]string, error) {
	var out map[string][]string
	err := c.do(ctx, http.MethodGet, "/api/sheets/"+url.PathEscape(sheetID)+"/votes", nil, &out)
	return out, err
}

func (c *Client) AddVote(ctx context.Context, sheetID string, row int, voterName string) (models.AddVoteResponse, error) {
	var out models.AddVoteResponse
	err := c.do(ctx, http.MethodPost, "/api/votes", models.AddVoteRequest{
		SheetID:      sheetID,
		ApplicantRow: row,
		VoterName:    voterName,
	}, &out)
	return out, err
}

func (c *Client) DeleteVote(ctx context.Context, sheetID string, row int, voterName string) (models.DeleteVoteResponse, error) {
	var out models.DeleteVoteResponse
	path := "/api/votes/" + url.PathEscape(sheetID) + "/" + strconv.Itoa(row) + "/" + url.PathEscape(voterName)
	err := c.do(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}

func (c *Client) Selections(ctx context.Context, sheetID string) (map[string]models.Selection, error) {
	var out map[string]models.Selection
	err := c.do(ctx, http.MethodGet, "/api/sheets/"+url.PathEscape(sheetID)+"/selections", nil, &out)
	return out, err
}

func (c *Client) UpdateSelection(ctx context.Context, sheetID string, row int, sel models.Selection) (models.Selection, error) {
	var out models.Selection
	path := "/api/sheets/" + url.PathEscape(sheetID) + "/selections/" + strconv.Itoa(row)
	err := c.do(ctx, http.MethodPut, path, models.UpdateSelectionRequest{
		SelectedForInterview: &sel.SelectedForInterview,
		SelectedForHiring:    &sel.SelectedForHiring,
	}, &out)
	return out, err
}

func (c *Client) Notes(ctx context.Context, sheetID string) (map[string]models.Note, error) {
	var out map[string]models.Note
	err := c.do(ctx, http.MethodGet, "/api/sheets/"+url.PathEscape(sheetID)+"/notes", nil, &out)
	return out, err
}

func (c *Client) UpdateNote(ctx context.Context, sheetID string, row int, text string) (models.Note, error) {
	var out models.Note
	path := "/api/sheets/" + url.PathEscape(sheetID) + "/notes/" + strconv.Itoa(row)
	err := c.do(ctx, http.MethodPut, path, models.UpdateNoteRequest{Text: &text}, &out)
	return out, err
}

// do sends an API request. A 401 is followed by one refresh and one retry;
// a second 401 or a failed refresh is ErrSessionExpired.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if _, err := c.Refresh(ctx); err != nil {
			if errors.Is(err, ErrSessionExpired) {
				return ErrSessionExpired
			}
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		resp, err = c.send(ctx, method, path, payload)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return ErrSessionExpired
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrAccessDenied
	}
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// decode reads a 2xx body into out, or turns an error body into an
// *apperr.Error.
func decode(resp *http.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	var body models.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	code := apperr.Code(body.Code)
	if code == "" {
		code = apperr.FromStatus(resp.StatusCode)
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return apperr.New(code, msg)
}
