// Package resource derives per-node availability from raw Slurm counters,
// filters it against thresholds and renders it as a table.
package resource

import (
	"strconv"
	"strings"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
)

// DefaultGPUsPerNode is the number of GPUs assumed per GPU-bearing node.
const DefaultGPUsPerNode = 8

// NodeRecord is the derived availability snapshot of one node.
// A nil pointer means the inputs needed to derive the value were missing.
type NodeRecord struct {
	Node              string
	Partition         string
	CPUsAvailable     *int
	MemoryAvailableGB *float64
	GPUsAvailable     int
	GPUType           *string
}

// Options controls cluster-specific assumptions of the derivation.
type Options struct {
	GPUsPerNode int // GPUs counted per Gres=gpu declaration
}

// DefaultOptions returns the stock derivation options
func DefaultOptions() Options {
	return Options{GPUsPerNode: DefaultGPUsPerNode}
}

// Derive builds a NodeRecord from the raw counters of one node.
func Derive(node string, d *scheduler.NodeDetail, opts Options) NodeRecord {
	rec := NodeRecord{Node: node}
	if d == nil {
		return rec
	}

	if d.CPUTotal != nil && d.CPUAlloc != nil {
		cpus := *d.CPUTotal - *d.CPUAlloc
		rec.CPUsAvailable = &cpus
	}

	if d.MemTotal != nil && d.MemAlloc != nil {
		gb := memoryGB(*d.MemTotal - *d.MemAlloc)
		rec.MemoryAvailableGB = &gb
	}

	gpusAlloc := 0
	if d.GPUAlloc != nil {
		gpusAlloc = *d.GPUAlloc
	}
	// Each Gres=gpu declaration contributes a full node's worth of GPUs.
	for range d.GresGPUModels {
		rec.GPUsAvailable += opts.GPUsPerNode - gpusAlloc
	}

	rec.GPUType = gpuType(d.Features)
	return rec
}

// memoryGB converts MB to GB rounded down to one decimal (10342 -> 10.0).
func memoryGB(mb int64) float64 {
	tenths := mb * 10
	q := tenths / 1024
	if tenths%1024 != 0 && tenths < 0 {
		q-- // floor, not truncation
	}
	return float64(q) / 10
}

// gpuType picks the GPU memory tags (e.g. "a100_80gb") out of the node features.
// A single feature is reported as is.
func gpuType(features []string) *string {
	tags := features
	if len(features) > 1 {
		tags = nil
		for _, f := range features {
			if strings.Contains(f, "gb") {
				tags = append(tags, f)
			}
		}
	}
	if len(tags) == 0 {
		return nil
	}
	s := strings.Join(tags, ", ")
	return &s
}

// Formatting helpers shared by the table and the node command.

const absent = "-"

// FormatCPUs renders the available CPU count or "-"
func (r NodeRecord) FormatCPUs() string {
	if r.CPUsAvailable == nil {
		return absent
	}
	return strconv.Itoa(*r.CPUsAvailable)
}

// FormatMemory renders the available memory with one decimal or "-"
func (r NodeRecord) FormatMemory() string {
	if r.MemoryAvailableGB == nil {
		return absent
	}
	return strconv.FormatFloat(*r.MemoryAvailableGB, 'f', 1, 64)
}

// FormatGPUs renders the available GPU count
func (r NodeRecord) FormatGPUs() string {
	return strconv.Itoa(r.GPUsAvailable)
}

// FormatGPUType renders the GPU type tags or "-"
func (r NodeRecord) FormatGPUType() string {
	if r.GPUType == nil {
		return absent
	}
	return *r.GPUType
}
