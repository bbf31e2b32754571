package epss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEPSSToExploitMaturity(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{-1, "X"},
		{0, "U"},
		{0.049, "U"},
		{0.05, "P"},
		{0.49, "P"},
		{0.5, "A"},
		{0.97, "A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EPSSToExploitMaturity(tt.score), "score %v", tt.score)
	}
}

func TestFetchScores(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var entries []string
		for _, id := range strings.Split(r.URL.Query().Get("cve"), ",") {
			entries = append(entries, fmt.Sprintf(`{"cve":%q,"epss":"0.42","percentile":"0.9","date":"2026-10-01"}`, id))
		}
		entries = append(entries, `{"cve":"CVE-0000-0000","epss":"n/a"}`)
		fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(entries, ","))
	}))
	defer srv.Close()

	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, fmt.Sprintf("CVE-2024-%04d", i))
	}
	ids = append(ids, ids[0])

	c := NewClient()
	c.BaseURL = srv.URL
	got, err := c.FetchScores(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, got, 100)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, Data{Score: 0.42, Percentile: 0.9, Date: "2026-10-01"}, got["CVE-2024-0007"])
}

func TestFetchScoresEmpty(t *testing.T) {
	got, err := NewClient().FetchScores(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchScoresStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := NewClient()
	c.BaseURL = srv.URL
	_, err := c.FetchScores(context.Background(), []string{"CVE-2024-0001"})
	assert.Error(t, err)
}
