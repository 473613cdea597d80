package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// MinAllocTRESVersion is the oldest Slurm release whose `scontrol show node`
// reports AllocTRES, which carries the allocated GPU count.
const MinAllocTRESVersion = "17.02"

// ParseSlurmVersion extracts the version from output like "slurm 23.02.6".
func ParseSlurmVersion(output string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	switch len(fields) {
	case 0:
		return "", fmt.Errorf("%w: empty output", ErrInvalidVersion)
	case 1:
		return fields[0], nil
	default:
		return fields[1], nil
	}
}

// canonicalVersion turns a Slurm version ("23.02.6", "17.02") into a
// semver string ("v23.2.6", "v17.2"). Slurm zero-pads the minor number,
// which semver rejects.
func canonicalVersion(version string) (string, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	// Drop vendor suffixes such as "23.02.6-1.el8"
	if idx := strings.IndexAny(version, "-+_"); idx >= 0 {
		version = version[:idx]
	}
	parts := strings.Split(version, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
		}
		parts[i] = strconv.Itoa(n)
	}
	c := semver.Canonical("v" + strings.Join(parts, "."))
	if c == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return c, nil
}

// CompareSlurmVersions compares two Slurm versions. It returns:
//
//	-1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2.
func CompareSlurmVersions(v1, v2 string) (int, error) {
	c1, err := canonicalVersion(v1)
	if err != nil {
		return 0, err
	}
	c2, err := canonicalVersion(v2)
	if err != nil {
		return 0, err
	}
	return semver.Compare(c1, c2), nil
}

// SupportsAllocTRES reports whether the given Slurm version reports AllocTRES.
func SupportsAllocTRES(version string) (bool, error) {
	cmp, err := CompareSlurmVersions(version, MinAllocTRESVersion)
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}
