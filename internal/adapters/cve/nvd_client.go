package cve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultNVDURL is the NVD CVE API 2.0 endpoint.
const DefaultNVDURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

const maxResponseBytes = 16 << 20

// NVDConfig configures the NVD client.
type NVDConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	ResultsPerPage int
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
}

// NVDClient queries the NVD keyword search API.
type NVDClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	results int
	client  *http.Client
	logger  *slog.Logger
}

// NewNVDClient creates a client with defaults applied.
func NewNVDClient(cfg NVDConfig, logger *slog.Logger) *NVDClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNVDURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = 20
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &NVDClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		results: cfg.ResultsPerPage,
		client:  client,
		logger:  logger,
	}
}

// FetchByVendor implements ports.VulnerabilitySource. Every failure,
// including the per-call timeout, degrades to an empty list.
func (c *NVDClient) FetchByVendor(ctx context.Context, vendor string) []domain.VulnerabilityRecord {
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return []domain.VulnerabilityRecord{}
	}

	records, err := c.search(ctx, vendor)
	if err != nil {
		c.logger.Warn("Vulnerability source unavailable", "vendor", vendor, "error", err)
		telemetry.VulnerabilityLookups.WithLabelValues("nvd", "error").Inc()
		return []domain.VulnerabilityRecord{}
	}

	telemetry.VulnerabilityLookups.WithLabelValues("nvd", lookupResult(records)).Inc()
	return records
}

func (c *NVDClient) search(ctx context.Context, vendor string) ([]domain.VulnerabilityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("keywordSearch", vendor)
	q.Set("resultsPerPage", strconv.Itoa(c.results))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body nvdResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrUpstreamUnavailable, err)
	}

	records := make([]domain.VulnerabilityRecord, 0, len(body.Vulnerabilities))
	for _, v := range body.Vulnerabilities {
		if v.CVE.ID == "" {
			continue
		}
		records = append(records, domain.VulnerabilityRecord{
			ID:          v.CVE.ID,
			Description: v.CVE.description(),
			Severity:    v.CVE.Metrics.severity(),
		})
	}
	return records, nil
}

type nvdResponse struct {
	ResultsPerPage  int `json:"resultsPerPage"`
	TotalResults    int `json:"totalResults"`
	Vulnerabilities []struct {
		CVE nvdCVE `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVE struct {
	ID           string `json:"id"`
	Descriptions []struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"descriptions"`
	Metrics nvdMetrics `json:"metrics"`
}

// description prefers the English text.
func (c nvdCVE) description() string {
	for _, d := range c.Descriptions {
		if d.Lang == "en" {
			return d.Value
		}
	}
	if len(c.Descriptions) > 0 {
		return c.Descriptions[0].Value
	}
	return ""
}

type cvssV3Metric struct {
	CVSSData struct {
		BaseSeverity string `json:"baseSeverity"`
	} `json:"cvssData"`
}

type nvdMetrics struct {
	V40 []cvssV3Metric `json:"cvssMetricV40"`
	V31 []cvssV3Metric `json:"cvssMetricV31"`
	V30 []cvssV3Metric `json:"cvssMetricV30"`
	V2  []struct {
		BaseSeverity string `json:"baseSeverity"`
	} `json:"cvssMetricV2"`
}

// severity picks the newest CVSS version that carries a label.
func (m nvdMetrics) severity() domain.Severity {
	for _, set := range [][]cvssV3Metric{m.V40, m.V31, m.V30} {
		for _, metric := range set {
			if metric.CVSSData.BaseSeverity != "" {
				return domain.Severity(metric.CVSSData.BaseSeverity).Normalize()
			}
		}
	}
	for _, metric := range m.V2 {
		if metric.BaseSeverity != "" {
			return domain.Severity(metric.BaseSeverity).Normalize()
		}
	}
	return ""
}
