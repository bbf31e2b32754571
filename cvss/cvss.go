package cvss

import (
	"fmt"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// Version names reported by GetCVSSVersion.
const (
	Version40 = "CVSS 4.0"
	Version31 = "CVSS 3.1"
	Version30 = "CVSS 3.0"
	Version20 = "CVSS 2.0"
)

// GetCVSSVersion determines the CVSS version of a vector string and checks
// that it is well formed for that version.
func GetCVSSVersion(vector string) (string, error) {
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0"):
		if _, err := gocvss40.ParseVector(vector); err != nil {
			return "", fmt.Errorf("invalid CVSS 4.0 vector: %w", err)
		}
		return Version40, nil
	case strings.HasPrefix(vector, "CVSS:3.1"):
		if _, err := gocvss31.ParseVector(vector); err != nil {
			return "", fmt.Errorf("invalid CVSS 3.1 vector: %w", err)
		}
		return Version31, nil
	case strings.HasPrefix(vector, "CVSS:3.0"):
		if _, err := gocvss30.ParseVector(vector); err != nil {
			return "", fmt.Errorf("invalid CVSS 3.0 vector: %w", err)
		}
		return Version30, nil
	default:
		if _, err := gocvss20.ParseVector(vector); err != nil {
			return "", fmt.Errorf("unknown or invalid vector format: %w", err)
		}
		return Version20, nil
	}
}

// Validate strictly checks a CVSS v4.0 vector: the prefix, metric order and
// every mandatory base metric must be present. Scoring itself never needs
// this, since ParseVector tolerates malformed input.
func Validate(vector string) error {
	version, err := GetCVSSVersion(vector)
	if err != nil {
		return err
	}
	if version != Version40 {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}
	return nil
}

// ReferenceScore scores vector with the go-cvss implementation of the FIRST
// calculator. It is reported next to Score for comparison.
func ReferenceScore(vector string) (float64, error) {
	c, err := gocvss40.ParseVector(vector)
	if err != nil {
		return 0, fmt.Errorf("invalid CVSS 4.0 vector: %w", err)
	}
	return c.Score(), nil
}

// checkVersion rejects vectors tagged with another CVSS version. Untagged
// vectors are assumed to be v4.0.
func checkVersion(vector string) error {
	if strings.HasPrefix(vector, "CVSS:") && !strings.HasPrefix(vector, Prefix) {
		tag, _, _ := strings.Cut(vector, "/")
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, tag)
	}
	return nil
}
