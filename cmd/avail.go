package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/collect"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/config"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/resource"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// availOptions holds the scan flags. Root and avail each own a copy.
type availOptions struct {
	partitions    []string
	gpusPerNode   int
	minGPUs       int
	minCPUs       int
	minMemGB      float64
	timeout       string
	all           bool
	showPartition bool
}

var (
	rootAvailOpts availOptions
	availOpts     availOptions
)

var availCmd = &cobra.Command{
	Use:     "avail",
	Aliases: []string{"av"},
	Short:   "List nodes with free GPUs, CPUs and memory",
	Long: `Scan every configured partition and list the nodes that currently have
at least the requested free GPUs, CPUs and memory.

Partitions come from the 'partitions' config key unless -p is given.
Thresholds default to 1 GPU, 1 CPU and 6 GB of memory.`,
	Example: `  rivanna-resource avail                          # Default partitions and thresholds
  rivanna-resource avail -p gpu-a40 -p gpu-v100   # Only these partitions
  rivanna-resource avail --min-gpus 2 --min-mem 32
  rivanna-resource avail --all --show-partition   # Every node, no filtering`,
	Args: cobra.NoArgs,
}

func init() {
	addAvailFlags(availCmd, &availOpts)
	availCmd.RunE = newAvailRunE(&availOpts)
	rootCmd.AddCommand(availCmd)
}

// addAvailFlags registers the scan flags on a command's local flag set.
func addAvailFlags(cmd *cobra.Command, o *availOptions) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&o.partitions, "partition", "p", nil, "Partition to scan (repeatable or comma-separated; overrides config)")
	fs.IntVar(&o.gpusPerNode, "gpus-per-node", resource.DefaultGPUsPerNode, "GPUs counted per Gres=gpu declaration")
	fs.IntVar(&o.minGPUs, "min-gpus", 1, "Minimum free GPUs")
	fs.IntVar(&o.minCPUs, "min-cpus", 1, "Minimum free CPUs")
	fs.Float64Var(&o.minMemGB, "min-mem", 6, "Minimum free memory in GB")
	fs.StringVar(&o.timeout, "timeout", "", "Timeout per Slurm query (e.g. 30s, 00:01:00; 0 disables)")
	fs.BoolVarP(&o.all, "all", "a", false, "Show every node without applying thresholds")
	fs.BoolVar(&o.showPartition, "show-partition", false, "Add a Partition column")

	_ = cmd.RegisterFlagCompletionFunc("partition", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Global.Partitions, cobra.ShellCompDirectiveNoFileComp
	})
}

// applyAvailFlags copies explicitly set flags over the loaded configuration.
// Flags left at their default keep the config value.
func applyAvailFlags(fs *pflag.FlagSet, o availOptions, cfg *config.Config) error {
	if fs.Changed("partition") {
		var partitions []string
		for _, p := range o.partitions {
			partitions = append(partitions, utils.SplitList(p)...)
		}
		if len(partitions) == 0 {
			return fmt.Errorf("--partition needs at least one partition name")
		}
		cfg.Partitions = partitions
	}
	if fs.Changed("gpus-per-node") {
		if o.gpusPerNode <= 0 {
			return fmt.Errorf("--gpus-per-node must be positive, got %d", o.gpusPerNode)
		}
		cfg.GPUsPerNode = o.gpusPerNode
	}
	if fs.Changed("min-gpus") {
		if o.minGPUs < 0 {
			return fmt.Errorf("--min-gpus must not be negative, got %d", o.minGPUs)
		}
		cfg.Threshold.MinGPUs = o.minGPUs
	}
	if fs.Changed("min-cpus") {
		if o.minCPUs < 0 {
			return fmt.Errorf("--min-cpus must not be negative, got %d", o.minCPUs)
		}
		cfg.Threshold.MinCPUs = o.minCPUs
	}
	if fs.Changed("min-mem") {
		if o.minMemGB < 0 {
			return fmt.Errorf("--min-mem must not be negative, got %v", o.minMemGB)
		}
		cfg.Threshold.MinMemoryGB = o.minMemGB
	}
	if fs.Changed("timeout") {
		dur, err := utils.ParseDuration(o.timeout)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.QueryTimeout = dur
	}
	return nil
}

func newAvailRunE(o *availOptions) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.Global
		if err := applyAvailFlags(cmd.Flags(), *o, &cfg); err != nil {
			return err
		}

		sched, err := newSlurmScheduler(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return scanAndRender(ctx, sched, cfg, cmd.OutOrStdout(), *o)
	}
}

// newSlurmScheduler builds the Slurm client from the configured binaries.
func newSlurmScheduler(cfg config.Config) (*scheduler.SlurmScheduler, error) {
	sched, err := scheduler.NewSlurmSchedulerWithBinaries(cfg.SinfoBin, cfg.ScontrolBin)
	if err != nil {
		utils.PrintHint("Set %s and %s with '%s'.",
			utils.StyleInfo("sinfo_bin"), utils.StyleInfo("scontrol_bin"),
			utils.StyleCommand("rivanna-resource config set <key> <path>"))
		return nil, err
	}
	sched.SetTimeout(cfg.QueryTimeout)
	return sched, nil
}

// scanAndRender collects records from src, filters them unless o.all is set,
// and writes the table to w.
func scanAndRender(ctx context.Context, src collect.Source, cfg config.Config, w io.Writer, o availOptions) error {
	c := &collect.Collector{
		Source:     src,
		Partitions: cfg.Partitions,
		Options:    cfg.DeriveOptions(),
	}
	records := c.Run(ctx)
	if len(records) == 0 {
		return nil
	}

	rows := records
	if !o.all {
		rows = resource.Filter(records, cfg.Threshold)
		if len(rows) == 0 {
			utils.PrintWarning("No nodes meet the threshold (GPUs >= %d, CPUs >= %d, memory >= %.1f GB) among %d scanned",
				cfg.Threshold.MinGPUs, cfg.Threshold.MinCPUs, cfg.Threshold.MinMemoryGB, len(records))
			return nil
		}
	}

	return resource.RenderTable(w, rows, resource.TableOptions{
		ShowPartition: o.showPartition,
		StyleHeader:   utils.StyleHeader,
	})
}
