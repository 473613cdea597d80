package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
)

// SlurmScheduler queries partition and node state through sinfo and scontrol
type SlurmScheduler struct {
	sinfoCommand    string
	scontrolCommand string
	timeout         time.Duration
	runner          Runner
}

// NewSlurmSchedulerWithBinaries creates a SLURM client using explicit binary paths.
// Empty paths fall back to PATH lookup.
func NewSlurmSchedulerWithBinaries(sinfoBin, scontrolBin string) (*SlurmScheduler, error) {
	sinfoCmd, err := resolveBinary(sinfoBin, "sinfo")
	if err != nil {
		return nil, err
	}
	scontrolCmd, err := resolveBinary(scontrolBin, "scontrol")
	if err != nil {
		return nil, err
	}

	return &SlurmScheduler{
		sinfoCommand:    sinfoCmd,
		scontrolCommand: scontrolCmd,
		runner:          ExecRunner{},
	}, nil
}

// SetTimeout bounds every single query. Zero disables the limit.
func (s *SlurmScheduler) SetTimeout(d time.Duration) {
	s.timeout = d
}

// run executes one query and wraps any failure in a QueryError scoped to target.
func (s *SlurmScheduler) run(ctx context.Context, target string, bin string, args ...string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	utils.PrintDebug("Executing: %s", utils.StyleCommand(bin+" "+strings.Join(args, " ")))
	stdout, stderr, err := s.runner.Run(ctx, bin, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrQueryTimeout, s.timeout)
		}
		return "", NewQueryError(filepath.Base(bin), target, string(stderr), err)
	}
	return string(stdout), nil
}

// ListNodes returns the expanded, de-duplicated node names of a partition.
func (s *SlurmScheduler) ListNodes(ctx context.Context, partition string) ([]string, error) {
	output, err := s.run(ctx, partition, s.sinfoCommand, "-p", partition)
	if err != nil {
		return nil, err
	}
	return ParsePartitionNodes(output), nil
}

// NodeDetail returns the raw resource counters of a single node.
func (s *SlurmScheduler) NodeDetail(ctx context.Context, node string) (*NodeDetail, error) {
	output, err := s.run(ctx, node, s.scontrolCommand, "show", "node", node)
	if err != nil {
		return nil, err
	}
	return ParseNodeDetail(output), nil
}

// GetInfo returns information about the SLURM client tools
func (s *SlurmScheduler) GetInfo(ctx context.Context) *SchedulerInfo {
	info := &SchedulerInfo{
		Type:        "SLURM",
		SinfoBin:    s.sinfoCommand,
		ScontrolBin: s.scontrolCommand,
		InJob:       IsInsideJob(),
	}

	if version, err := s.getSlurmVersion(ctx); err == nil {
		info.Version = version
	} else {
		utils.PrintDebug("Failed to read Slurm version: %v", err)
	}

	return info
}

// getSlurmVersion runs `sinfo --version` and parses output like "slurm 23.02.6"
func (s *SlurmScheduler) getSlurmVersion(ctx context.Context) (string, error) {
	output, err := s.run(ctx, "version", s.sinfoCommand, "--version")
	if err != nil {
		return "", err
	}
	return ParseSlurmVersion(output)
}
