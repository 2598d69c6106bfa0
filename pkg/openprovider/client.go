// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

// Package openprovider implements a client for the OpenProvider v1beta API,
// transparently paging through zone and record listings.
package openprovider

import (
	"zoneferry/pkg/log"
	"zoneferry/pkg/migrate"
	"zoneferry/pkg/util"

	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPageLimit matches the API's cap on items per listing call
const DefaultPageLimit = 500

// Config holds connection settings for the source API
type Config struct {
	URL           string
	Username      string
	Password      string
	PageLimit     int
	SkipTLSVerify bool
	Timeout       time.Duration
	LogLevel      string
}

// Client talks to the source registrar API. Authenticate once with Login,
// then list zones or records; page handling is internal.
type Client struct {
	baseURL    string
	username   string
	password   string
	pageLimit  int
	httpClient *http.Client
	token      string
	logger     *log.ScopedLogger
}

// New creates a client from the given config. No request is made until
// Login is called.
func New(cfg Config) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		pageLimit:  cfg.PageLimit,
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		logger:     log.NewScopedLogger("[source/openprovider]", cfg.LogLevel),
	}
}

// Login exchanges the username/password for a bearer token used on all
// subsequent requests
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("marshal login request: %w", err)
	}

	loginURL := c.baseURL + "/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{Status: resp.StatusCode, Message: "username or password wrong"}
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &AuthError{Message: fmt.Sprintf("decode login response: %v", err)}
	}
	if result.Data.Token == "" {
		return &AuthError{Message: "login response carries no token"}
	}

	c.token = result.Data.Token
	c.logger.Debug("authenticated as %s (token %s)", c.username, util.MaskSensitiveValue(c.token))
	return nil
}

// zoneJSON is one entry of the zone listing
type zoneJSON struct {
	Name string `json:"name"`
}

// recordJSON is one entry of a zone's record listing. Pointer fields keep
// "absent" distinct from zero.
type recordJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	Priority *int   `json:"prio"`
	TTL      *int   `json:"ttl"`
}

// ListZones retrieves the names of all zones held by the source account
func (c *Client) ListZones(ctx context.Context) ([]string, error) {
	results, err := c.fetchAll(ctx, c.baseURL+"/dns/zones/")
	if err != nil {
		return nil, err
	}

	zones := make([]string, 0, len(results))
	for _, raw := range results {
		var zone zoneJSON
		if err := json.Unmarshal(raw, &zone); err != nil {
			return nil, &ProtocolError{URL: c.baseURL + "/dns/zones/", Reason: fmt.Sprintf("malformed zone entry: %v", err)}
		}
		zones = append(zones, zone.Name)
	}
	c.logger.Verbose("listed %d zones", len(zones))
	return zones, nil
}

// ListRecords retrieves all records of one zone as SourceRecords
func (c *Client) ListRecords(ctx context.Context, zone string) ([]migrate.SourceRecord, error) {
	endpoint := fmt.Sprintf("%s/dns/zones/%s/records", c.baseURL, zone)
	results, err := c.fetchAll(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	records := make([]migrate.SourceRecord, 0, len(results))
	for _, raw := range results {
		var rec recordJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &ProtocolError{URL: endpoint, Reason: fmt.Sprintf("malformed record entry: %v", err)}
		}
		records = append(records, migrate.SourceRecord{
			Zone:     zone,
			Name:     rec.Name,
			Type:     rec.Type,
			Value:    rec.Value,
			Priority: rec.Priority,
			TTL:      rec.TTL,
		})
	}
	c.logger.Verbose("zone %s has %d records", zone, len(records))
	return records, nil
}

// listEnvelope is the paged response shape shared by the zone and record
// listing endpoints
type listEnvelope struct {
	Data *struct {
		Total   *int              `json:"total"`
		Results []json.RawMessage `json:"results"`
	} `json:"data"`
}

// fetchAll pages through a listing endpoint until data.total items have
// been retrieved. The total is authoritative only after the first page; a
// total of 0 short-circuits without further requests. No partial result is
// returned on failure.
func (c *Client) fetchAll(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	if c.token == "" {
		return nil, &AuthError{Message: "not authenticated, call Login first"}
	}

	var all []json.RawMessage
	total := -1 // unknown until the first page

	for {
		pageURL, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
		}
		query := pageURL.Query()
		query.Set("limit", strconv.Itoa(c.pageLimit))
		query.Set("offset", strconv.Itoa(len(all)))
		pageURL.RawQuery = query.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("build page request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &TransportError{URL: pageURL.String(), Err: err}
		}

		var envelope listEnvelope
		decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &TransportError{URL: pageURL.String(), Status: resp.StatusCode}
		}
		if decodeErr != nil {
			return nil, &ProtocolError{URL: pageURL.String(), Reason: fmt.Sprintf("invalid JSON: %v", decodeErr)}
		}
		if envelope.Data == nil || envelope.Data.Total == nil {
			return nil, &ProtocolError{URL: pageURL.String(), Reason: "missing data.total"}
		}

		if total < 0 {
			total = *envelope.Data.Total
			c.logger.Trace("%s: %d items total", endpoint, total)
			if total == 0 {
				return nil, nil
			}
		}

		if len(envelope.Data.Results) == 0 {
			// The server claims more items but returned none; bail out
			// instead of requesting the same page forever
			return nil, &ProtocolError{URL: pageURL.String(), Reason: fmt.Sprintf("empty page at offset %d of %d", len(all), total)}
		}

		all = append(all, envelope.Data.Results...)
		if len(all) >= total {
			return all, nil
		}
	}
}
