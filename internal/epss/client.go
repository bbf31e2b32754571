package epss

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	apiBaseURL        = "https://api.first.org/data/v1/epss"
	maxCVEsPerRequest = 80
	requestTimeout    = 15 * time.Second
)

type epssResponse struct {
	Data []struct {
		CVE        string `json:"cve"`
		EPSS       string `json:"epss"`
		Date       string `json:"date"`
		Percentile string `json:"percentile"`
	} `json:"data"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Data holds EPSS score, percentile, and date for a CVE.
type Data struct {
	Score      float64
	Percentile float64
	Date       string
}

// Client fetches EPSS scores from the FIRST API.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewClient returns a client with default timeout.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: requestTimeout},
		BaseURL:    apiBaseURL,
	}
}

// FetchScores returns a map of CVE ID -> EPSS data for the given CVE IDs.
// Scores of batches fetched before a failure are returned with the error.
func (c *Client) FetchScores(ctx context.Context, cveIDs []string) (map[string]Data, error) {
	result := make(map[string]Data)
	for _, batch := range lo.Chunk(lo.Uniq(cveIDs), maxCVEsPerRequest) {
		got, err := c.fetchBatch(ctx, batch)
		if err != nil {
			return result, err
		}
		for k, v := range got {
			result[k] = v
		}
	}
	return result, nil
}

func (c *Client) fetchBatch(ctx context.Context, cveIDs []string) (map[string]Data, error) {
	params := url.Values{}
	params.Set("cve", strings.Join(cveIDs, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("epss request: %w", err)
	}
	logrus.Debugf("Fetching EPSS for %d CVEs", len(cveIDs))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("epss request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("epss api: status %s", resp.Status)
	}
	var body epssResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("epss decode: %w", err)
	}
	out := make(map[string]Data)
	for _, d := range body.Data {
		score, err := strconv.ParseFloat(d.EPSS, 64)
		if err != nil {
			logrus.Warnf("Skipping EPSS entry for %s: %v", d.CVE, err)
			continue
		}
		percentile, _ := strconv.ParseFloat(d.Percentile, 64)
		out[d.CVE] = Data{Score: score, Percentile: percentile, Date: d.Date}
	}
	return out, nil
}
