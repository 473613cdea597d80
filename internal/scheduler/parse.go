package scheduler

import (
	"regexp"
	"strconv"
	"strings"
)

// NodeDetail holds the raw counters scraped from `scontrol show node`.
// A nil field means the key was not present in the report.
type NodeDetail struct {
	CPUAlloc      *int     // CPUAlloc=
	CPUTotal      *int     // CPUTot=
	MemAlloc      *int64   // AllocMem= (MB)
	MemTotal      *int64   // RealMemory= (MB)
	GPUAlloc      *int     // gres/gpu= inside AllocTRES=
	GresGPUModels []string // model of every Gres=gpu:<model>:<count> declaration
	Features      []string // AvailableFeatures=a,b,c
}

var (
	cpuAllocRe = regexp.MustCompile(`CPUAlloc=(\d+)`)
	cpuTotalRe = regexp.MustCompile(`CPUTot=(\d+)`)
	memAllocRe = regexp.MustCompile(`AllocMem=(\d+)`)
	memTotalRe = regexp.MustCompile(`RealMemory=(\d+)`)
	gpuAllocRe = regexp.MustCompile(`AllocTRES=.*gres/gpu=(\d+)`)
	gresGpuRe  = regexp.MustCompile(`Gres=gpu:(\w+(?:-\d+)?):\d+`)
	featuresRe = regexp.MustCompile(`AvailableFeatures=([\w,]+)`)
)

// partitionHeader starts the header line of default sinfo output.
const partitionHeader = "PARTITION"

// minSinfoFields is the number of columns a usable sinfo row must have.
// Default layout: PARTITION AVAIL TIMELIMIT NODES STATE NODELIST
const minSinfoFields = 5

// ParsePartitionNodes extracts node names from `sinfo -p <partition>` output.
// The last column of every data row is expanded with ExpandNodeList;
// duplicates across rows (one row per node state) are collapsed.
func ParsePartitionNodes(output string) []string {
	seen := make(map[string]bool)
	var nodes []string

	// Rows can exceed bufio.Scanner's 64 KiB token limit
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, partitionHeader) || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < minSinfoFields {
			continue
		}
		for _, node := range ExpandNodeList(fields[len(fields)-1]) {
			if !seen[node] {
				seen[node] = true
				nodes = append(nodes, node)
			}
		}
	}

	SortNodeNames(nodes)
	return nodes
}

// ParseNodeDetail scrapes resource counters from `scontrol show node` output.
// Missing keys leave the corresponding field nil; it never fails.
func ParseNodeDetail(text string) *NodeDetail {
	d := &NodeDetail{
		CPUAlloc: findInt(cpuAllocRe, text),
		CPUTotal: findInt(cpuTotalRe, text),
		MemAlloc: findInt64(memAllocRe, text),
		MemTotal: findInt64(memTotalRe, text),
		GPUAlloc: findInt(gpuAllocRe, text),
	}

	for _, m := range gresGpuRe.FindAllStringSubmatch(text, -1) {
		d.GresGPUModels = append(d.GresGPUModels, m[1])
	}

	if m := featuresRe.FindStringSubmatch(text); m != nil {
		d.Features = strings.Split(m[1], ",")
	}

	return d
}

func findInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func findInt64(re *regexp.Regexp, text string) *int64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
