package cve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nvdFixture = `{
  "resultsPerPage": 3,
  "totalResults": 3,
  "vulnerabilities": [
    {"cve": {
      "id": "CVE-2021-1001",
      "descriptions": [
        {"lang": "es", "value": "Contraseña por defecto"},
        {"lang": "en", "value": "Default password on LAN control"}
      ],
      "metrics": {"cvssMetricV31": [{"cvssData": {"baseSeverity": "CRITICAL"}}]}
    }},
    {"cve": {
      "id": "CVE-2019-2002",
      "descriptions": [{"lang": "en", "value": "Firmware update not verified"}],
      "metrics": {"cvssMetricV2": [{"baseSeverity": "MEDIUM"}]}
    }},
    {"cve": {
      "id": "CVE-2018-3003",
      "descriptions": [{"lang": "en", "value": "Information leak"}],
      "metrics": {}
    }}
  ]
}`

func TestNVDClient_FetchByVendor(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apiKey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(nvdFixture))
	}))
	defer srv.Close()

	client := NewNVDClient(NVDConfig{BaseURL: srv.URL, APIKey: "secret", ResultsPerPage: 5}, nil)
	records := client.FetchByVendor(context.Background(), "yeelight")

	assert.Equal(t, "keywordSearch=yeelight&resultsPerPage=5", gotQuery)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, records, 3)
	assert.Equal(t, domain.VulnerabilityRecord{
		ID:          "CVE-2021-1001",
		Description: "Default password on LAN control",
		Severity:    domain.SeverityCritical,
	}, records[0])
	assert.Equal(t, domain.SeverityMedium, records[1].Severity)
	assert.Equal(t, domain.Severity(""), records[2].Severity)
}

func TestNVDClient_Degrades(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"bad body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			w.Write([]byte(nvdFixture))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewNVDClient(NVDConfig{BaseURL: srv.URL, Timeout: 100 * time.Millisecond}, nil)
			records := client.FetchByVendor(context.Background(), "yeelight")
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestNVDClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewNVDClient(NVDConfig{BaseURL: url, Timeout: time.Second}, nil)
	assert.Empty(t, client.FetchByVendor(context.Background(), "yeelight"))
}

func TestNVDClient_BlankVendor(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewNVDClient(NVDConfig{BaseURL: srv.URL}, nil)
	assert.Empty(t, client.FetchByVendor(context.Background(), "  "))
	assert.False(t, called)
}

func TestNVDClient_SearchWrapsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewNVDClient(NVDConfig{BaseURL: srv.URL}, nil)
	_, err := client.search(context.Background(), "yeelight")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
