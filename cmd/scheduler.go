package cmd

import (
	"fmt"
	"io"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/config"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"sched"},
	Short:   "Display Slurm client information",
	Long: `Display information about the Slurm client tools used for queries.

Shows the sinfo and scontrol paths, the Slurm version, and whether this
shell runs inside a Slurm job.`,
	Example: `  rivanna-resource scheduler      # Show scheduler information
  rivanna-resource sched          # Short alias`,
	Args: cobra.NoArgs,
	Run:  runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) {
	sched, err := scheduler.NewSlurmSchedulerWithBinaries(config.Global.SinfoBin, config.Global.ScontrolBin)
	if err != nil {
		// No scheduler found
		utils.PrintMessage("Scheduler Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("sinfo/scontrol could not be found: %v", err)
		utils.PrintHint("Run this on a Rivanna login node, or set sinfo_bin and scontrol_bin with 'rivanna-resource config set'.")
		return
	}
	sched.SetTimeout(config.Global.QueryTimeout)

	printSchedulerInfo(cmd.OutOrStdout(), sched.GetInfo(cmd.Context()))
}

// printSchedulerInfo writes the structured report and warns about Slurm
// releases whose node reports lack the allocated GPU count.
func printSchedulerInfo(w io.Writer, info *scheduler.SchedulerInfo) {
	// No [RR] prefix for structured output
	fmt.Fprintln(w, "Scheduler Information:")
	fmt.Fprintf(w, "  Type:      %s\n", utils.StyleInfo(info.Type))
	fmt.Fprintf(w, "  sinfo:     %s\n", utils.StylePath(info.SinfoBin))
	fmt.Fprintf(w, "  scontrol:  %s\n", utils.StylePath(info.ScontrolBin))

	if info.Version != "" {
		fmt.Fprintf(w, "  Version:   %s\n", utils.StyleNumber(info.Version))
	} else {
		fmt.Fprintf(w, "  Version:   %s\n", utils.StyleWarning("unknown"))
	}

	if info.InJob {
		fmt.Fprintf(w, "  Job:       %s\n", utils.StyleInfo("inside a Slurm job"))
	}

	if info.Version == "" {
		return
	}
	ok, err := scheduler.SupportsAllocTRES(info.Version)
	if err != nil {
		utils.PrintDebug("Cannot compare Slurm version: %v", err)
		return
	}
	if !ok {
		utils.PrintWarning("Slurm %s is older than %s; allocated GPUs are not reported and every GPU will appear free.",
			info.Version, scheduler.MinAllocTRESVersion)
	}
}
