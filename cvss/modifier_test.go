package cvss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseVector = "CVSS:4.0/AV:L/AC:L/AT:N/PR:L/UI:N/VC:L/VI:H/VA:N/SC:N/SI:N/SA:N"

func TestApplyMetrics(t *testing.T) {
	tests := []struct {
		name string
		opts MetricsOptions
		want string
	}{
		{
			name: "no options",
			want: baseVector,
		},
		{
			name: "threat and requirements",
			opts: MetricsOptions{E: "p", CR: "L", AR: "x"},
			want: baseVector + "/E:P/CR:L/AR:X",
		},
		{
			name: "modified metrics raise severity without smart",
			opts: MetricsOptions{MAV: "N", MVC: "H", MSI: "S"},
			want: baseVector + "/MAV:N/MVC:H/MSI:S",
		},
		{
			name: "smart clamps raised severity",
			opts: MetricsOptions{MAV: "N", MVC: "H", MVI: "L", MSI: "S", CR: "H", Smart: true},
			want: baseVector + "/CR:H/MVI:L/MSI:S",
		},
		{
			name: "smart keeps equal and X",
			opts: MetricsOptions{MAV: "L", MVA: "X", Smart: true},
			want: baseVector + "/MAV:L/MVA:X",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyMetrics(baseVector, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyMetricsOverridesExisting(t *testing.T) {
	got, err := ApplyMetrics(baseVector+"/E:U/CR:M", MetricsOptions{E: "A"})
	require.NoError(t, err)
	assert.Equal(t, baseVector+"/E:A/CR:M", got)
}

func TestApplyMetricsErrors(t *testing.T) {
	_, err := ApplyMetrics("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", MetricsOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = ApplyMetrics(baseVector, MetricsOptions{MSC: "S"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestApplyMetricsChangesScore(t *testing.T) {
	before, err := Score(baseVector)
	require.NoError(t, err)
	tailored, err := ApplyMetrics(baseVector, MetricsOptions{E: "U", IR: "L"})
	require.NoError(t, err)
	after, err := Score(tailored)
	require.NoError(t, err)
	assert.Less(t, after.Score, before.Score)
	assert.Equal(t, NomenclatureBTE, after.Nomenclature)
}
