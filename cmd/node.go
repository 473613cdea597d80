package cmd

import (
	"fmt"
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

type nodeOptions struct {
	gpusPerNode int
	timeout     string
}

var nodeOpts nodeOptions

var nodeCmd = &cobra.Command{
	Use:   "node <name>...",
	Short: "Show free resources of specific nodes",
	Long: `Read the allocation state of the given nodes and print their free CPUs,
memory and GPUs without applying any threshold.

Node names may use compressed node-list notation.`,
	Example: `  rivanna-resource node udc-an38-1
  rivanna-resource node 'udc-aw29-[1-3]' --timeout 10s`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Global
		if err := applyNodeFlags(cmd.Flags(), nodeOpts, &cfg); err != nil {
			return err
		}

		sched, err := newSlurmScheduler(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := &collect.Collector{Source: sched, Options: cfg.DeriveOptions()}
		var records []resource.NodeRecord
	scan:
		for _, arg := range args {
			for _, name := range scheduler.ExpandNodeList(arg) {
				if ctx.Err() != nil {
					utils.PrintWarning("Interrupted: %v", ctx.Err())
					break scan
				}
				if rec, ok := c.Node(ctx, name); ok {
					records = append(records, rec)
				}
			}
		}
		if len(records) == 0 {
			return fmt.Errorf("no node information could be read")
		}

		return resource.RenderTable(cmd.OutOrStdout(), records, resource.TableOptions{
			StyleHeader: utils.StyleHeader,
		})
	},
}

func init() {
	fs := nodeCmd.Flags()
	fs.IntVar(&nodeOpts.gpusPerNode, "gpus-per-node", resource.DefaultGPUsPerNode, "GPUs counted per Gres=gpu declaration")
	fs.StringVar(&nodeOpts.timeout, "timeout", "", "Timeout per Slurm query (e.g. 30s, 00:01:00; 0 disables)")
	rootCmd.AddCommand(nodeCmd)
}

// applyNodeFlags copies explicitly set node flags over the loaded configuration.
func applyNodeFlags(fs *pflag.FlagSet, o nodeOptions, cfg *config.Config) error {
	if fs.Changed("gpus-per-node") {
		if o.gpusPerNode <= 0 {
			return fmt.Errorf("--gpus-per-node must be positive, got %d", o.gpusPerNode)
		}
		cfg.GPUsPerNode = o.gpusPerNode
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
