package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/config"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/spf13/cobra"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// stubSource answers partition and node queries from canned Slurm output.
type stubSource struct {
	sinfo    map[string]string
	scontrol map[string]string
}

func (s stubSource) ListNodes(_ context.Context, partition string) ([]string, error) {
	out, ok := s.sinfo[partition]
	if !ok {
		return nil, scheduler.NewQueryError("sinfo", partition, "", errors.New("exit status 1"))
	}
	return scheduler.ParsePartitionNodes(out), nil
}

func (s stubSource) NodeDetail(_ context.Context, node string) (*scheduler.NodeDetail, error) {
	out, ok := s.scontrol[node]
	if !ok {
		return nil, scheduler.NewQueryError("scontrol", node, "", errors.New("exit status 1"))
	}
	return scheduler.ParseNodeDetail(out), nil
}

func captureConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var stderr bytes.Buffer
	oldOut, oldErr, oldQuiet := utils.Stdout, utils.Stderr, utils.QuietMode
	utils.Stdout, utils.Stderr = &bytes.Buffer{}, &stderr
	utils.SetColorEnabled(false)
	t.Cleanup(func() { utils.Stdout, utils.Stderr, utils.QuietMode = oldOut, oldErr, oldQuiet })
	return &stderr
}

func testConfig(partitions ...string) config.Config {
	config.LoadDefaults()
	cfg := config.Global
	cfg.Partitions = partitions
	return cfg
}

var stubCluster = stubSource{
	sinfo: map[string]string{
		"gpu-a6000": "PARTITION AVAIL TIMELIMIT NODES STATE NODELIST\n" +
			"gpu-a6000 up 3-00:00:00 2 mix nodeA-[1,2]\n",
	},
	scontrol: map[string]string{
		"nodeA-1": "CPUAlloc=8 CPUTot=40 AllocMem=65536 RealMemory=384000\n" +
			"AvailableFeatures=a6000_48gb,skylake\nGres=gpu:a6000:8\nAllocTRES=cpu=8,mem=64G,gres/gpu=3\n",
		"nodeA-2": "CPUAlloc=40 CPUTot=40 AllocMem=100000 RealMemory=384000\n" +
			"AvailableFeatures=a6000_48gb,skylake\nGres=gpu:a6000:8\nAllocTRES=cpu=40,mem=100000M,gres/gpu=2\n",
	},
}

func TestScanAndRenderPrintsOnlySufficientNodes(t *testing.T) {
	captureConsole(t)
	var out bytes.Buffer

	err := scanAndRender(context.Background(), stubCluster, testConfig("gpu-a6000"), &out, availOptions{})
	assert.NilError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, 2, len(lines), out.String())
	assert.Assert(t, strings.HasPrefix(lines[0], "Node"))
	assert.Assert(t, is.Contains(lines[1], "nodeA-1"))
	assert.Assert(t, is.Contains(lines[1], "311.0"))
	assert.Assert(t, is.Contains(lines[1], "a6000_48gb"))
	assert.Assert(t, !strings.Contains(out.String(), "nodeA-2"))
}

func TestScanAndRenderAllSkipsFilter(t *testing.T) {
	captureConsole(t)
	var out bytes.Buffer

	opts := availOptions{all: true, showPartition: true}
	err := scanAndRender(context.Background(), stubCluster, testConfig("gpu-a6000"), &out, opts)
	assert.NilError(t, err)

	assert.Assert(t, is.Contains(out.String(), "Partition"))
	assert.Assert(t, is.Contains(out.String(), "nodeA-1"))
	assert.Assert(t, is.Contains(out.String(), "nodeA-2"))
}

func TestScanAndRenderNothingMeetsThreshold(t *testing.T) {
	stderr := captureConsole(t)
	var out bytes.Buffer

	cfg := testConfig("gpu-a6000")
	cfg.Threshold.MinGPUs = 8
	assert.NilError(t, scanAndRender(context.Background(), stubCluster, cfg, &out, availOptions{}))

	assert.Equal(t, "", out.String())
	assert.Assert(t, is.Contains(stderr.String(), "No nodes meet the threshold"))
}

func TestScanAndRenderEmptyCollection(t *testing.T) {
	stderr := captureConsole(t)
	var out bytes.Buffer

	assert.NilError(t, scanAndRender(context.Background(), stubCluster, testConfig("gpu-v100"), &out, availOptions{}))

	assert.Equal(t, "", out.String())
	assert.Assert(t, is.Contains(stderr.String(), "No nodes found for partition: gpu-v100"))
	assert.Assert(t, !strings.Contains(stderr.String(), "No nodes meet the threshold"))
}

func TestApplyAvailFlags(t *testing.T) {
	var o availOptions
	c := &cobra.Command{Use: "avail"}
	addAvailFlags(c, &o)

	err := c.ParseFlags([]string{"-p", "gpu-a40,gpu-v100", "-p", "interactive", "--min-mem", "32", "--timeout", "00:00:45"})
	assert.NilError(t, err)

	cfg := testConfig(config.DefaultPartitions...)
	assert.NilError(t, applyAvailFlags(c.Flags(), o, &cfg))

	assert.DeepEqual(t, []string{"gpu-a40", "gpu-v100", "interactive"}, cfg.Partitions)
	assert.Equal(t, 32.0, cfg.Threshold.MinMemoryGB)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	// untouched flags keep the configured values
	assert.Equal(t, 1, cfg.Threshold.MinGPUs)
	assert.Equal(t, 8, cfg.GPUsPerNode)
}

func TestApplyAvailFlagsKeepsConfigWhenUnset(t *testing.T) {
	var o availOptions
	c := &cobra.Command{Use: "avail"}
	addAvailFlags(c, &o)
	assert.NilError(t, c.ParseFlags(nil))

	cfg := testConfig("gpu-a100-80")
	cfg.Threshold.MinCPUs = 16
	cfg.GPUsPerNode = 4
	assert.NilError(t, applyAvailFlags(c.Flags(), o, &cfg))

	assert.DeepEqual(t, []string{"gpu-a100-80"}, cfg.Partitions)
	assert.Equal(t, 16, cfg.Threshold.MinCPUs)
	assert.Equal(t, 4, cfg.GPUsPerNode)
}

func TestApplyAvailFlagsRejectsInvalid(t *testing.T) {
	tests := [][]string{
		{"--gpus-per-node", "0"},
		{"--min-gpus", "-1"},
		{"--min-cpus", "-2"},
		{"--min-mem", "-0.5"},
		{"--timeout", "later"},
		{"--partition", ","},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			var o availOptions
			c := &cobra.Command{Use: "avail"}
			addAvailFlags(c, &o)
			assert.NilError(t, c.ParseFlags(args))

			cfg := testConfig("gpu-a40")
			assert.Assert(t, applyAvailFlags(c.Flags(), o, &cfg) != nil)
		})
	}
}
