package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RemoteConfig holds configuration for the cloud document store client.
type RemoteConfig struct {
	// BaseURL is the root of the document API, e.g. "https://api.retirewise.app".
	BaseURL string

	// APIKey is sent as a bearer token on every request.
	APIKey string

	// Timeout bounds each HTTP call. Default: 30s.
	Timeout time.Duration

	// PollInterval is the subscription poll period. Default: 5s.
	PollInterval time.Duration
}

// ApplyDefaults sets default values for unset fields.
func (c *RemoteConfig) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
}

// Validate validates the configuration.
func (c *RemoteConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: remote base URL is required", ErrInvalidConfig)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("%w: invalid base URL: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RemoteStore talks to the cloud document API over HTTP. Every call is scoped
// to the owner carried in ctx; documents live under
// /v1/users/{userId}/{collection}/{id} and ids are generated server-side.
//
// Subscriptions are implemented by polling: the callback fires once with the
// initial snapshot and again whenever a poll observes a change.
type RemoteStore struct {
	base   string
	apiKey string
	client *http.Client
	poll   time.Duration
	logger *zap.Logger
}

// NewRemoteStore creates a remote store client.
func NewRemoteStore(cfg RemoteConfig, logger *zap.Logger) (*RemoteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &RemoteStore{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
		poll:   cfg.PollInterval,
		logger: logger,
	}, nil
}

// listResponse is the wire shape of a collection listing.
type listResponse struct {
	Documents []remoteDocument `json:"documents"`
}

// remoteDocument is the wire shape of one document.
type remoteDocument struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// createResponse is the wire shape of a create result.
type createResponse struct {
	ID string `json:"id"`
}

// collectionURL builds the URL for a collection, scoped to the context owner.
func (s *RemoteStore) collectionURL(ctx context.Context, collection string) (string, error) {
	if !ValidCollection(collection) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := OwnerFromContext(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/v1/users/%s/%s", s.base, url.PathEscape(owner.UserID), collection), nil
}

// do performs one request and decodes the response into out (when non-nil).
// A 404 maps to ErrNotFound; other non-2xx statuses propagate with the body.
func (s *RemoteStore) do(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote store %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("remote store %s %s: status %d: %s", method, u, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// List returns every document in the owner's collection.
func (s *RemoteStore) List(ctx context.Context, collection string) (docs []Document, err error) {
	defer func(start time.Time) { observeOp("remote", collection, "list", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return nil, err
	}
	var resp listResponse
	if err = s.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	docs = make([]Document, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		docs = append(docs, Document{ID: d.ID, Fields: d.Fields})
	}
	return docs, nil
}

// Get returns one document.
func (s *RemoteStore) Get(ctx context.Context, collection, id string) (doc Document, err error) {
	defer func(start time.Time) { observeOp("remote", collection, "get", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return Document{}, err
	}
	var resp remoteDocument
	if err = s.do(ctx, http.MethodGet, u+"/"+url.PathEscape(id), nil, &resp); err != nil {
		return Document{}, err
	}
	return Document{ID: resp.ID, Fields: resp.Fields}, nil
}

// Create persists a new document; the server generates and returns its id.
func (s *RemoteStore) Create(ctx context.Context, collection string, fields Fields) (id string, err error) {
	defer func(start time.Time) { observeOp("remote", collection, "create", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return "", err
	}
	var resp createResponse
	if err = s.do(ctx, http.MethodPost, u, remoteDocument{Fields: fields}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("remote store: create returned no id")
	}
	return resp.ID, nil
}

// Put writes a document under a caller-chosen id.
func (s *RemoteStore) Put(ctx context.Context, collection, id string, fields Fields) (err error) {
	defer func(start time.Time) { observeOp("remote", collection, "put", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPut, u+"/"+url.PathEscape(id), remoteDocument{ID: id, Fields: fields}, nil)
}

// Update applies a partial patch server-side (merge semantics).
func (s *RemoteStore) Update(ctx context.Context, collection, id string, patch Fields) (err error) {
	defer func(start time.Time) { observeOp("remote", collection, "update", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPatch, u+"/"+url.PathEscape(id), remoteDocument{Fields: patch}, nil)
}

// Delete removes a document. A 404 from the server is swallowed: deleting an
// absent document is not an error.
func (s *RemoteStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { observeOp("remote", collection, "delete", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return err
	}
	err = s.do(ctx, http.MethodDelete, u+"/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Clear removes every document in the owner's collection.
func (s *RemoteStore) Clear(ctx context.Context, collection string) (err error) {
	defer func(start time.Time) { observeOp("remote", collection, "clear", start, err) }(time.Now())
	u, err := s.collectionURL(ctx, collection)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, u, nil, nil)
}

// Subscribe polls the collection and invokes fn with a fresh snapshot on every
// observed change, starting with the current contents. The returned handle
// stops the poll loop; cancelling ctx does too.
func (s *RemoteStore) Subscribe(ctx context.Context, collection string, fn func([]Document)) (UnsubscribeFunc, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	fn(docs)

	stop := make(chan struct{})
	last := fingerprint(docs)

	go func() {
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			docs, err := s.List(ctx, collection)
			if err != nil {
				s.logger.Warn("subscription poll failed",
					zap.String("collection", collection), zap.Error(err))
				continue
			}
			if fp := fingerprint(docs); fp != last {
				last = fp
				fn(docs)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }, nil
}

// Close releases client resources.
func (s *RemoteStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// fingerprint hashes a snapshot for change detection. Order-insensitive: the
// server makes no ordering promises across polls.
func fingerprint(docs []Document) uint64 {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := fnv.New64a()
	for _, d := range sorted {
		h.Write([]byte(d.ID))
		if data, err := json.Marshal(d.Fields); err == nil {
			h.Write(data)
		}
	}
	return h.Sum64()
}
