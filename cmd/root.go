package cmd

import (
	"os"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/config"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/log"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode  bool
	quietMode  bool
	noColor    bool
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "rivanna-resource",
	Short: "Show which Rivanna GPU nodes have free CPUs, memory and GPUs right now.",
	Long: `Scan the configured Slurm partitions, expand their node lists, read the
allocation state of every node and print the nodes with enough free
resources to start a GPU job.

Running without a subcommand is the same as 'rivanna-resource avail'.`,
	Example: `  rivanna-resource                        # Scan default partitions
  rivanna-resource -p gpu-a100-80         # Scan one partition
  rivanna-resource --min-gpus 4 --min-mem 64
  rivanna-resource expand 'udc-an38-[1,9-10]'`,
	Version:       config.VERSION,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Console and trace logging
		utils.DebugMode = debugMode
		utils.QuietMode = quietMode
		if noColor || !utils.IsInteractiveShell() {
			utils.SetColorEnabled(false)
		}
		if err := log.Setup(os.Stderr, logLevel, debugMode, noColor); err != nil {
			return err
		}

		// Step 2: Load defaults
		config.LoadDefaults()

		// Step 3: Initialize Viper (read config file, env vars)
		if err := config.InitViper(configFile); err != nil {
			if configFile != "" {
				utils.PrintWarning("Error reading config file: %v", err)
			} else {
				utils.PrintDebug("Error reading config file: %v", err)
			}
		}

		// Step 4: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		config.Global.Debug = debugMode
		config.Global.Quiet = quietMode
		if debugMode {
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("rivanna-resource Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Partitions: %v", config.Global.Partitions)
			utils.PrintDebug("sinfo Binary: %s", config.Global.SinfoBin)
			utils.PrintDebug("scontrol Binary: %s", config.Global.ScontrolBin)
			utils.PrintDebug("Query Timeout: %s", config.Global.QueryTimeout)
			if scheduler.IsInsideJob() {
				utils.PrintDebug("Running inside Slurm job %s", os.Getenv("SLURM_JOB_ID"))
			}
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced.
		utils.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress status messages (errors and warnings are still shown)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Trace log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Use this config file instead of the search paths")

	addAvailFlags(rootCmd, &rootAvailOpts)
	rootCmd.RunE = newAvailRunE(&rootAvailOpts)
}
