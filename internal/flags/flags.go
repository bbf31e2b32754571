package flags

import (
	"os"

	"github.com/spf13/pflag"

	"context-cvss4/cvss"
)

// RunOptions holds CVSS options and feature flags for a run.
type RunOptions struct {
	Opts           cvss.MetricsOptions
	ForceCtxRating bool
	UseEPSS        bool
	FetchCVSS      bool
	NvdAPIKey      string
}

// BindMetrics registers the Threat and Environmental metric flags on fs.
func BindMetrics(fs *pflag.FlagSet, opts *cvss.MetricsOptions) {
	fs.StringVarP(&opts.E, "exploit", "e", "", "Exploit Maturity (X, A, P, U)")
	fs.StringVar(&opts.CR, "cr", "", "Confidentiality Requirement (X, H, M, L)")
	fs.StringVar(&opts.IR, "ir", "", "Integrity Requirement (X, H, M, L)")
	fs.StringVar(&opts.AR, "ar", "", "Availability Requirement (X, H, M, L)")
	fs.StringVar(&opts.MAV, "mav", "", "Modified Attack Vector (X, N, A, L, P)")
	fs.StringVar(&opts.MAC, "mac", "", "Modified Attack Complexity (X, L, H)")
	fs.StringVar(&opts.MAT, "mat", "", "Modified Attack Requirements (X, N, P)")
	fs.StringVar(&opts.MPR, "mpr", "", "Modified Privileges Required (X, N, L, H)")
	fs.StringVar(&opts.MUI, "mui", "", "Modified User Interaction (X, N, P, A)")
	fs.StringVar(&opts.MVC, "mvc", "", "Modified Vulnerable System Confidentiality (X, H, L, N)")
	fs.StringVar(&opts.MVI, "mvi", "", "Modified Vulnerable System Integrity (X, H, L, N)")
	fs.StringVar(&opts.MVA, "mva", "", "Modified Vulnerable System Availability (X, H, L, N)")
	fs.StringVar(&opts.MSC, "msc", "", "Modified Subsequent System Confidentiality (X, H, L, N)")
	fs.StringVar(&opts.MSI, "msi", "", "Modified Subsequent System Integrity (X, S, H, L, N)")
	fs.StringVar(&opts.MSA, "msa", "", "Modified Subsequent System Availability (X, S, H, L, N)")
	fs.BoolVar(&opts.Smart, "smart", false, "Smartly apply modified metrics only if they do not raise severity, does not affect CR/IR/AR.")
}

// Bind registers every run flag on fs and returns the options they fill.
func Bind(fs *pflag.FlagSet) *RunOptions {
	ro := &RunOptions{}
	BindMetrics(fs, &ro.Opts)
	fs.BoolVar(&ro.ForceCtxRating, "force-ctx-rating", false, "Force a contextual rating based on what Trivy gave even if no CVSS v4.0 vector exists")
	fs.BoolVar(&ro.UseEPSS, "epss", false, "Fetch EPSS per CVE and set Exploit Maturity (E) from EPSS score bands")
	fs.BoolVar(&ro.FetchCVSS, "fetch-cvss", false, "For CVEs with no CVSS v4.0 source, fetch the vector from NVD (rate limited without API key)")
	fs.StringVar(&ro.NvdAPIKey, "nvd-api-key", "", "NVD API key for higher rate limits (50/30s); or set NVD_API_KEY env")
	return ro
}

// Finalize fills values that may come from the environment. Options set
// explicitly on the command line win over defaults.
func (ro *RunOptions) Finalize(defaults cvss.MetricsOptions) {
	if ro.NvdAPIKey == "" {
		ro.NvdAPIKey = os.Getenv("NVD_API_KEY")
	}
	ro.Opts = Merge(defaults, ro.Opts)
}

// Merge layers the non-empty fields of override on top of base.
func Merge(base, override cvss.MetricsOptions) cvss.MetricsOptions {
	out := base
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&out.E, override.E)
	pick(&out.CR, override.CR)
	pick(&out.IR, override.IR)
	pick(&out.AR, override.AR)
	pick(&out.MAV, override.MAV)
	pick(&out.MAC, override.MAC)
	pick(&out.MAT, override.MAT)
	pick(&out.MPR, override.MPR)
	pick(&out.MUI, override.MUI)
	pick(&out.MVC, override.MVC)
	pick(&out.MVI, override.MVI)
	pick(&out.MVA, override.MVA)
	pick(&out.MSC, override.MSC)
	pick(&out.MSI, override.MSI)
	pick(&out.MSA, override.MSA)
	out.Smart = base.Smart || override.Smart
	return out
}
