// Package scheduler queries a Slurm cluster for partition membership and per-node resource state
package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// SchedulerInfo holds information about the detected Slurm client tools
type SchedulerInfo struct {
	Type        string // Scheduler type, always "SLURM"
	SinfoBin    string // Path to sinfo
	ScontrolBin string // Path to scontrol
	Version     string // Slurm version (if available)
	InJob       bool   // Whether we're currently inside a Slurm job
}

// IsInsideJob checks if we're currently running inside a Slurm job.
func IsInsideJob() bool {
	_, ok := os.LookupEnv("SLURM_JOB_ID")
	return ok
}

// resolveBinary returns an absolute path for a Slurm client binary.
// If preferred is empty, the default name is looked up in PATH.
func resolveBinary(preferred, defaultName string) (string, error) {
	if preferred == "" {
		path, err := exec.LookPath(defaultName)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		return path, nil
	}

	// Bare names are resolved through PATH like the default
	if filepath.Base(preferred) == preferred {
		path, err := exec.LookPath(preferred)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		return path, nil
	}

	binPath := preferred
	if absPath, err := filepath.Abs(binPath); err == nil {
		binPath = absPath
	}
	info, err := os.Stat(binPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, binPath)
	}
	return binPath, nil
}
