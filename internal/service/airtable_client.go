package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/model"
)

const (
	defaultTimeout = 30 * time.Second
	pageSize       = 100
)

// Record is a single row as returned by the Airtable REST API
type Record struct {
	ID          string       `json:"id"`
	CreatedTime string       `json:"createdTime,omitempty"`
	Fields      model.Fields `json:"fields"`
}

// DeleteResult is the acknowledgement returned by a record delete
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// APIError is a non-success response from Airtable. Body holds the raw
// error payload so it can be shown to the operator unchanged.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Type != "" || e.Message != "" {
		return fmt.Sprintf("airtable API error %d: %s %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable API error %d: %s", e.StatusCode, e.Body)
}

// RecordStore is the remote tabular store the reconciler reads and patches
type RecordStore interface {
	ListRecords(ctx context.Context, table string) ([]Record, error)
	GetRecord(ctx context.Context, table, id string) (*Record, error)
	UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*Record, error)
	DeleteRecord(ctx context.Context, table, id string) (*DeleteResult, error)
}

// AirtableClient handles communication with the Airtable REST API
type AirtableClient struct {
	client  *http.Client
	baseURL string
	baseID  string
	token   string
}

// NewAirtableClient creates a client for the base named in cfg.
// It fails with config.ErrMissingToken before any network activity if no token is configured.
func NewAirtableClient(cfg *config.Config) (*AirtableClient, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	return &AirtableClient{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(cfg.AirtableBaseURL, "/"),
		baseID:  cfg.BaseID,
		token:   cfg.AirtableToken,
	}, nil
}

// listResponse represents a page of records
type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// errorResponse represents the Airtable error envelope
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListRecords retrieves every record in a table, following pagination offsets
func (c *AirtableClient) ListRecords(ctx context.Context, table string) ([]Record, error) {
	var records []Record
	offset := ""

	for {
		params := url.Values{}
		params.Set("pageSize", fmt.Sprintf("%d", pageSize))
		if offset != "" {
			params.Set("offset", offset)
		}

		body, err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list records in %s: %w", table, err)
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse records response: %w", err)
		}

		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// GetRecord retrieves a single record by id
func (c *AirtableClient) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.recordURL(table, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record response: %w", err)
	}
	return &rec, nil
}

// UpdateRecord patches the given fields on a record and returns the echoed record
func (c *AirtableClient) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*Record, error) {
	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}

	body, err := c.do(ctx, http.MethodPatch, c.recordURL(table, id), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to update record %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}
	return &rec, nil
}

// DeleteRecord deletes a record and returns the remote acknowledgement
func (c *AirtableClient) DeleteRecord(ctx context.Context, table, id string) (*DeleteResult, error) {
	body, err := c.do(ctx, http.MethodDelete, c.recordURL(table, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	var res DeleteResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse delete response: %w", err)
	}
	return &res, nil
}

func (c *AirtableClient) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *AirtableClient) recordURL(table, id string) string {
	return c.tableURL(table) + "/" + url.PathEscape(id)
}

// do performs a single authenticated request. Failures are not retried.
func (c *AirtableClient) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		var envelope errorResponse
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
		return nil, apiErr
	}

	return body, nil
}
