package nvd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"context-cvss4/cvss"
)

const (
	nvdAPIBase     = "https://services.nvd.nist.gov/rest/json/cves/2.0"
	requestTimeout = 30 * time.Second
)

var (
	// ErrNotFound is returned when NVD has no CVSS v4.0 data for a CVE.
	ErrNotFound = errors.New("no CVSS 4.0 vector available")
	// ErrInvalidCVEID is returned for identifiers not shaped like CVE-2024-1234.
	ErrInvalidCVEID = errors.New("invalid CVE ID format")
	// ErrRateLimited is returned when NVD answers 429.
	ErrRateLimited = errors.New("nvd rate limit (429)")
)

var cveIDPattern = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

type cvssMetricV40 struct {
	Type     string `json:"type"`
	CVSSData struct {
		Version      string  `json:"version"`
		VectorString string  `json:"vectorString"`
		BaseScore    float64 `json:"baseScore"`
	} `json:"cvssData"`
}

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			Metrics struct {
				CVSSMetricV40 []cvssMetricV40 `json:"cvssMetricV40"`
			} `json:"metrics"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

// Record is the published CVSS v4.0 base data of a CVE.
type Record struct {
	Vector    string
	BaseScore float64
	Version   string
}

// Client fetches CVE data from NVD. Optional APIKey enables higher rate limits.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	BaseURL    string
}

// NewClient returns a client. apiKey is optional.
func NewClient(apiKey string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: requestTimeout},
		APIKey:     apiKey,
		BaseURL:    nvdAPIBase,
	}
}

// ValidateCVEID checks that id looks like CVE-YYYY-NNNN.
func ValidateCVEID(id string) error {
	if !cveIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidCVEID, id)
	}
	return nil
}

// Throttle is the delay to keep between requests to stay under NVD limits.
func (c *Client) Throttle() time.Duration {
	if c.APIKey != "" {
		return time.Second
	}
	return 6 * time.Second
}

// FetchCVSSV4 returns the CVSS v4.0 base vector and score for the given CVE ID.
// X fragments are trimmed from the returned vector.
func (c *Client) FetchCVSSV4(ctx context.Context, cveID string) (Record, error) {
	if err := ValidateCVEID(cveID); err != nil {
		return Record{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?cveId="+url.QueryEscape(cveID), nil)
	if err != nil {
		return Record{}, fmt.Errorf("nvd request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("apiKey", c.APIKey)
	}
	logrus.Debugf("Fetching %s from NVD", cveID)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("nvd request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return Record{}, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("nvd api: status %s", resp.Status)
	}
	var body nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Record{}, fmt.Errorf("nvd decode: %w", err)
	}
	if len(body.Vulnerabilities) == 0 {
		return Record{}, fmt.Errorf("%s: %w", cveID, ErrNotFound)
	}
	m, ok := pickMetric(body.Vulnerabilities[0].CVE.Metrics.CVSSMetricV40)
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", cveID, ErrNotFound)
	}
	version := m.CVSSData.Version
	if version == "" {
		version = "4.0"
	}
	return Record{
		Vector:    cvss.TrimVector(strings.ReplaceAll(m.CVSSData.VectorString, `\/`, "/")),
		BaseScore: m.CVSSData.BaseScore,
		Version:   version,
	}, nil
}

// pickMetric prefers the Primary entry and falls back to the first one
// carrying a vector.
func pickMetric(entries []cvssMetricV40) (cvssMetricV40, bool) {
	var first *cvssMetricV40
	for i := range entries {
		e := &entries[i]
		if e.CVSSData.VectorString == "" {
			continue
		}
		if strings.EqualFold(e.Type, "Primary") {
			return *e, true
		}
		if first == nil {
			first = e
		}
	}
	if first == nil {
		return cvssMetricV40{}, false
	}
	return *first, true
}
