// Package client is the device-side half of the scouting system: an HTTP
// client for the server's wire contract, a durable entry store with an
// offline queue, and the sync coordinator that reconciles the two.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/scoutform"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

// ErrOffline wraps transport-level failures (refused connection, DNS, no
// route). Callers branch on it to queue work instead of failing: it is the
// moral equivalent of navigator.onLine being false in the browser app.
var ErrOffline = errors.New("server unreachable")

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// IsOffline reports whether an error came from the transport rather than
// the server.
func IsOffline(err error) bool {
	return errors.Is(err, ErrOffline)
}

type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// SetToken installs a previously obtained JWT (e.g. from a cached session).
func (a *API) SetToken(token string) { a.token = token }

// Login authenticates and keeps the returned token for later calls.
func (a *API) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := a.do(ctx, http.MethodPost, "/api/auth/login",
		&models.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	a.token = resp.Token
	return &resp, nil
}

func (a *API) CreateEntry(ctx context.Context, entry *scoutform.Entry) (*scoutform.Entry, error) {
	var stored scoutform.Entry
	if err := a.do(ctx, http.MethodPost, "/api/scouting", entry, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (a *API) BulkCreateEntries(ctx context.Context, entries []*scoutform.Entry) (*models.BulkCreateResponse, error) {
	var resp models.BulkCreateResponse
	err := a.do(ctx, http.MethodPost, "/api/scouting/bulk",
		&models.BulkCreateRequest{Entries: entries}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) EntriesBySeason(ctx context.Context, seasonID, teamNumber string) ([]*scoutform.Entry, error) {
	q := url.Values{"seasonId": {seasonID}}
	if teamNumber != "" {
		q.Set("teamNumber", teamNumber)
	}
	var entries []*scoutform.Entry
	if err := a.do(ctx, http.MethodGet, "/api/scouting?"+q.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *API) CurrentSeason(ctx context.Context) (*storage.Season, error) {
	var season storage.Season
	if err := a.do(ctx, http.MethodGet, "/api/seasons/current", nil, &season); err != nil {
		return nil, err
	}
	return &season, nil
}

func (a *API) SeasonConfig(ctx context.Context, seasonID string) (*scoutform.Config, error) {
	var cfg scoutform.Config
	if err := a.do(ctx, http.MethodGet, "/api/seasons/"+seasonID+"/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
