package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreAll(t *testing.T) {
	vectors := []string{
		"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N",
		"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:N/VI:N/VA:N/SC:N/SI:N/SA:N",
		"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N/E:U",
	}
	items, err := ScoreAll(context.Background(), vectors, Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, items, 3)

	for i, item := range items {
		assert.Equal(t, vectors[i], item.Input)
		require.NotNil(t, item.Result)
		assert.Empty(t, item.Error)
	}
	assert.Equal(t, 8.7, items[0].Result.Score)
	assert.Equal(t, 0.0, items[1].Result.Score)
	assert.Equal(t, 7.5, items[2].Result.Score)
}

func TestScoreAllManyWorkers(t *testing.T) {
	vectors := make([]string, 50)
	for i := range vectors {
		vectors[i] = fmt.Sprintf("CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N/E:%s", []string{"A", "P", "U"}[i%3])
	}
	items, err := ScoreAll(context.Background(), vectors, Options{})
	require.NoError(t, err)
	for i, item := range items {
		assert.Equal(t, vectors[i], item.Input)
	}
}

func TestScoreAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ScoreAll(ctx, []string{"CVSS:4.0/AV:N"}, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreAllEmpty(t *testing.T) {
	items, err := ScoreAll(context.Background(), nil, Options{Workers: 4})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScoreAllStrict(t *testing.T) {
	vectors := []string{
		"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N",
		"CVSS:4.0/AV:N",
		"CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
	}
	items, err := ScoreAll(context.Background(), vectors, Options{Workers: 3, Strict: true})
	require.NoError(t, err)
	require.NotNil(t, items[0].Result)
	assert.Nil(t, items[1].Result)
	assert.NotEmpty(t, items[1].Error)
	assert.Nil(t, items[2].Result)
	assert.Contains(t, items[2].Error, "unsupported")
}
