// Package store talks to the hosted content store over its HTTP API: document
// mutations, GROQ queries and image asset uploads.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/debemdeboas/blog-studio/internal/config"
)

var (
	ErrMissingCredentials = errors.New("content store credentials are missing")
	ErrUnexpectedResponse = errors.New("unexpected response format from the content store")
)

// APIError is a non-2xx answer from the store.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("content store responded %s", e.Status)
	}
	return fmt.Sprintf("content store responded %s: %s", e.Status, e.Message)
}

// Client is an explicitly constructed handle on one project and dataset.
type Client struct {
	cfg        config.StoreConfig
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient validates cfg up front so a misconfigured deployment fails at
// startup instead of on the first submission.
func NewClient(cfg config.StoreConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dataset is the dataset every request targets.
func (c *Client) Dataset() string {
	return c.cfg.Dataset
}

// baseURL is the API root. Reads may go through the CDN; writes never do.
func (c *Client) baseURL(cdn bool) string {
	if c.cfg.APIHost != "" {
		return strings.TrimSuffix(c.cfg.APIHost, "/")
	}
	host := "api.sanity.io"
	if cdn && c.cfg.UseCDN {
		host = "apicdn.sanity.io"
	}
	return fmt.Sprintf("https://%s.%s", c.cfg.ProjectID, host)
}

func (c *Client) endpoint(cdn bool, parts ...string) string {
	version := strings.TrimPrefix(c.cfg.APIVersion, "v")
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL(cdn) + "/v" + version + "/" + strings.Join(escaped, "/")
}

type mutationRequest struct {
	Mutations []map[string]any `json:"mutations"`
}

type mutationResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string          `json:"id"`
		Operation string          `json:"operation"`
		Document  json.RawMessage `json:"document"`
	} `json:"results"`
}

// CreatedDocument confirms a create mutation.
type CreatedDocument struct {
	TransactionID string
	ID            string
	Document      json.RawMessage
}

// CreateDocument creates doc in the dataset. doc must encode to a JSON object
// carrying a _type.
func (c *Client) CreateDocument(ctx context.Context, doc any) (*CreatedDocument, error) {
	body, err := json.Marshal(mutationRequest{Mutations: []map[string]any{{"create": doc}}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mutation: %w", err)
	}

	u := c.endpoint(false, "data", "mutate", c.Dataset()) + "?returnIds=true&returnDocuments=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set(config.HCType, config.CTypeJSON)

	var res mutationResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	if len(res.Results) == 0 {
		return nil, ErrUnexpectedResponse
	}

	created := &CreatedDocument{
		TransactionID: res.TransactionID,
		ID:            res.Results[0].ID,
		Document:      res.Results[0].Document,
	}
	storeLogger.Info().
		Str("transaction_id", created.TransactionID).
		Str("document_id", created.ID).
		Msg("Document created")
	return created, nil
}

// Query runs a GROQ query and decodes its result into out. Parameters are
// JSON encoded as the API expects.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode query parameter %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	u := c.endpoint(true, "data", "query", c.Dataset()) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	var res struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(req, &res); err != nil {
		return err
	}
	if len(res.Result) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Result, out); err != nil {
		return fmt.Errorf("failed to decode query result: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", config.CTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("content store request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read content store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(data),
		}
		storeLogger.Error().
			Int("status", resp.StatusCode).
			Str("path", req.URL.Path).
			Str("body", string(data)).
			Msg("Content store error")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// errorMessage digs the human readable part out of an error body. The API
// uses both {"error":{"description":…}} and {"message":…} shapes.
func errorMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	if payload.Message != "" {
		return payload.Message
	}

	var nested struct {
		Description string `json:"description"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil {
		if nested.Description != "" {
			return nested.Description
		}
		return nested.Message
	}

	var plain string
	if err := json.Unmarshal(payload.Error, &plain); err == nil {
		return plain
	}
	return ""
}
