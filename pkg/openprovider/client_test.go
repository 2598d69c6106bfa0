// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package openprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

const testToken = "test-token-1234567890"

// loginHandler answers the auth endpoint with a fixed token
func loginHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			t.Fatalf("login request body: %v", err)
		}
		if credentials.Username != "user" || credentials.Password != "pass" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, `{"data":{"token":%q}}`, testToken)
	}
}

// pagedHandler serves total items in pages of at most limit, counting requests
func pagedHandler(t *testing.T, total int, requests *int, item func(i int) string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization header = %q, want bearer token", got)
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		results := []string{}
		for i := offset; i < total && i < offset+limit; i++ {
			results = append(results, item(i))
		}
		fmt.Fprintf(w, `{"data":{"total":%d,"results":[%s]}}`, total, joinJSON(results))
	}
}

func joinJSON(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out
}

func loggedInClient(t *testing.T, server *httptest.Server, pageLimit int) *Client {
	t.Helper()
	client := New(Config{
		URL:       server.URL,
		Username:  "user",
		Password:  "pass",
		PageLimit: pageLimit,
	})
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	return client
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedInClient(t, server, 0)
	if client.token != testToken {
		t.Errorf("token = %q, want %q", client.token, testToken)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(Config{URL: server.URL, Username: "user", Password: "wrong"})
	err := client.Login(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %v, want AuthError", err)
	}
	if authErr.Status != http.StatusForbidden {
		t.Errorf("AuthError.Status = %d, want %d", authErr.Status, http.StatusForbidden)
	}
}

func TestLoginMissingToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(Config{URL: server.URL, Username: "user", Password: "pass"})
	err := client.Login(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %v, want AuthError for missing token", err)
	}
}

func TestListZonesNotAuthenticated(t *testing.T) {
	client := New(Config{URL: "http://127.0.0.1:0", Username: "user", Password: "pass"})
	_, err := client.ListZones(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("ListZones() error = %v, want AuthError before Login", err)
	}
}

func TestListZonesPagination(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	mux.HandleFunc("/dns/zones/", pagedHandler(t, 750, &requests, func(i int) string {
		return fmt.Sprintf(`{"name":"zone%d.example"}`, i)
	}))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedInClient(t, server, 500)
	zones, err := client.ListZones(context.Background())
	if err != nil {
		t.Fatalf("ListZones() failed: %v", err)
	}

	if requests != 2 {
		t.Errorf("issued %d page requests, want exactly 2 for 750 items at limit 500", requests)
	}
	if len(zones) != 750 {
		t.Fatalf("got %d zones, want 750", len(zones))
	}
	if zones[0] != "zone0.example" || zones[749] != "zone749.example" {
		t.Errorf("zone order wrong: first=%q last=%q", zones[0], zones[749])
	}
}

func TestListZonesEmpty(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	mux.HandleFunc("/dns/zones/", pagedHandler(t, 0, &requests, nil))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedInClient(t, server, 500)
	zones, err := client.ListZones(context.Background())
	if err != nil {
		t.Fatalf("ListZones() failed: %v", err)
	}

	if requests != 1 {
		t.Errorf("issued %d requests, want exactly 1 for an empty listing", requests)
	}
	if len(zones) != 0 {
		t.Errorf("got %d zones, want 0", len(zones))
	}
}

func TestListRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	mux.HandleFunc("/dns/zones/grinwis.com/records", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"total":3,"results":[
			{"name":"www.grinwis.com","type":"A","value":"192.0.2.1","ttl":900},
			{"name":"grinwis.com","type":"MX","value":"mx1.mail.example","prio":10,"ttl":3600},
			{"name":"bare.grinwis.com","type":"CNAME","value":"www.grinwis.com"}
		]}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedInClient(t, server, 500)
	records, err := client.ListRecords(context.Background(), "grinwis.com")
	if err != nil {
		t.Fatalf("ListRecords() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	a := records[0]
	if a.Zone != "grinwis.com" || a.Type != "A" || a.Value != "192.0.2.1" {
		t.Errorf("unexpected A record: %+v", a)
	}
	if a.Priority != nil {
		t.Errorf("A record got priority %d, want absent", *a.Priority)
	}
	if a.TTL == nil || *a.TTL != 900 {
		t.Errorf("A record TTL = %v, want 900", a.TTL)
	}

	mx := records[1]
	if mx.Priority == nil || *mx.Priority != 10 {
		t.Errorf("MX record priority = %v, want 10", mx.Priority)
	}

	cname := records[2]
	if cname.TTL != nil || cname.Priority != nil {
		t.Errorf("CNAME optional fields should be absent, got ttl=%v prio=%v", cname.TTL, cname.Priority)
	}
}

func TestListRecordsTransportError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	mux.HandleFunc("/dns/zones/broken.example/records", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedInClient(t, server, 500)
	_, err := client.ListRecords(context.Background(), "broken.example")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("ListRecords() error = %v, want TransportError", err)
	}
	if transportErr.Status != http.StatusInternalServerError {
		t.Errorf("TransportError.Status = %d, want 500", transportErr.Status)
	}
}

func TestListRecordsSecondPageFailure(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", loginHandler(t))
	mux.HandleFunc("/dns/zones/flaky.example/records", func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		results := []string{}
		for i := 0; i < 500; i++ {
			results = append(results, fmt.Sprintf(`{"name":"h%d.flaky.example","type":"A","value":"192.0.2.1"}`, i))
		}
		fmt.Fprintf(w, `{"data":{"total":750,"results":[%s]}}`, joinJSON(results))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedInClient(t, server, 500)
	records, err := client.ListRecords(context.Background(), "flaky.example")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want TransportError from second page", err)
	}
	// No partial result survives a mid-listing failure
	if records != nil {
		t.Errorf("got %d records despite failure, want none", len(records))
	}
}

func TestListZonesProtocolError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing data", `{"code":0}`},
		{"missing total", `{"data":{"results":[]}}`},
		{"empty page before total", `{"data":{"total":5,"results":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/login", loginHandler(t))
			mux.HandleFunc("/dns/zones/", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			client := loggedInClient(t, server, 500)
			_, err := client.ListZones(context.Background())

			var protocolErr *ProtocolError
			if !errors.As(err, &protocolErr) {
				t.Fatalf("ListZones() error = %v, want ProtocolError", err)
			}
		})
	}
}
