package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/config"
	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initForce bool

// configKeys is the list of known configuration keys for shell completion
var configKeys = []string{
	"partitions",
	"gpus_per_node",
	"min_gpus",
	"min_cpus",
	"min_mem_gb",
	"sinfo_bin",
	"scontrol_bin",
	"query_timeout",
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		// First arg: complete config keys
		return configKeys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 && cmd.Name() == "set" {
		// Second arg: complete values based on the key
		return configValueCompletion(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case "partitions":
		return []string{strings.Join(config.DefaultPartitions, ",")}
	case "gpus_per_node":
		return []string{"4", "8"}
	case "min_gpus", "min_cpus":
		return []string{"1", "2", "4", "8"}
	case "min_mem_gb":
		return []string{"6", "16", "32", "64"}
	case "query_timeout":
		return []string{"30s", "60s", "2m", "0"}
	default:
		return nil
	}
}

// getConfigEnvVars returns the environment variable names of every config key, sorted.
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(configKeys))
	for _, key := range configKeys {
		vars = append(vars, config.EnvPrefix+"_"+strings.ToUpper(key))
	}
	sort.Strings(vars)
	return vars
}

// parseConfigValue validates a raw value for key and returns it in the type
// stored in the config file.
func parseConfigValue(key, value string) (interface{}, error) {
	switch key {
	case "partitions":
		partitions := utils.SplitList(value)
		if len(partitions) == 0 {
			return nil, fmt.Errorf("partitions must list at least one partition")
		}
		return partitions, nil
	case "gpus_per_node":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		return n, nil
	case "min_gpus", "min_cpus":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
		}
		return n, nil
	case "min_mem_gb":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number, got %q", key, value)
		}
		return f, nil
	case "query_timeout":
		if _, err := utils.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	case "sinfo_bin", "scontrol_bin":
		if !config.ValidateBinary(value) {
			utils.PrintWarning("%s is not an executable on this machine", utils.StylePath(value))
		}
		return value, nil
	default:
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rivanna-resource configuration",
	Long: `Manage rivanna-resource configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (RIVANNA_RESOURCE_*)
  3. User config file (~/.config/rivanna-resource/config.yaml)
  4. Home config (~/.rivanna-resource/config.yaml)
  5. System config file (/etc/rivanna-resource/config.yaml)
  6. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, utils.StyleTitle("Config File Search Paths:"))
		used := viper.ConfigFileUsed()
		for i, dir := range config.GetConfigSearchPaths() {
			fmt.Fprintf(out, "  %d. %s\n", i+1, dir)
		}
		if used != "" {
			fmt.Fprintf(out, "  In use: %s\n", utils.StylePath(used))
		} else {
			fmt.Fprintf(out, "  %s (use 'rivanna-resource config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, utils.StyleTitle("Current Configuration:"))
		g := config.Global
		fmt.Fprintf(out, "  partitions:     %s\n", strings.Join(g.Partitions, ", "))
		fmt.Fprintf(out, "  gpus_per_node:  %d\n", g.GPUsPerNode)
		fmt.Fprintf(out, "  min_gpus:       %d\n", g.Threshold.MinGPUs)
		fmt.Fprintf(out, "  min_cpus:       %d\n", g.Threshold.MinCPUs)
		fmt.Fprintf(out, "  min_mem_gb:     %g\n", g.Threshold.MinMemoryGB)
		fmt.Fprintf(out, "  sinfo_bin:      %s\n", g.SinfoBin)
		fmt.Fprintf(out, "  scontrol_bin:   %s\n", g.ScontrolBin)
		timeout := g.QueryTimeout.String()
		if g.QueryTimeout == 0 {
			timeout = "0 (disabled)"
		}
		fmt.Fprintf(out, "  query_timeout:  %s\n", timeout)
		fmt.Fprintln(out)

		fmt.Fprintln(out, utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val := os.Getenv(envVar); val != "" {
				fmt.Fprintf(out, "  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Fprintf(out, "  %s\n", utils.StyleInfo("none"))
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  rivanna-resource config get partitions
  rivanna-resource config get min_mem_gb`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !isConfigKey(key) {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if key == "partitions" {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(viper.GetStringSlice(key), ","))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save to the user config file.

Examples:
  rivanna-resource config set partitions gpu-a100-80,gpu-a40
  rivanna-resource config set min_mem_gb 32
  rivanna-resource config set query_timeout 2m
  rivanna-resource config set scontrol_bin /opt/slurm/bin/scontrol

Time duration format (for query_timeout):
  Go style:  30s, 2m, 1m30s
  HPC style: 00:01:30 (HH:MM:SS)
  0 disables the timeout`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]

		value, err := parseConfigValue(key, raw)
		if err != nil {
			return err
		}
		viper.Set(key, value)

		configPath, err := config.SaveConfig()
		if err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		utils.PrintSuccess("Set %s = %s", utils.StyleInfo(key), utils.StyleInfo(raw))
		utils.PrintMessage("Config saved to: %s", utils.StylePath(configPath))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create the user configuration file with default values and the sinfo and
scontrol paths detected from the current PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			utils.PrintWarning("Config file already exists: %s", configPath)
			fmt.Fprint(cmd.OutOrStdout(), "Overwrite? [y/N]: ")
			var response string
			fmt.Fscanln(cmd.InOrStdin(), &response)
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				utils.PrintMessage("Cancelled")
				return nil
			}
		}

		// Force re-detect binaries from current environment and save
		savedPath, updated, err := config.ForceDetectAndSave()
		if err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		if updated {
			utils.PrintSuccess("Config file created with auto-detected settings")
		} else {
			utils.PrintSuccess("Config file created")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  Location: %s\n", utils.StylePath(savedPath))
		fmt.Fprintln(out)
		fmt.Fprintln(out, utils.StyleTitle("Detected settings:"))
		for _, key := range []string{"sinfo_bin", "scontrol_bin"} {
			bin := viper.GetString(key)
			if config.ValidateBinary(bin) {
				fmt.Fprintf(out, "  %s: %s\n", key, bin)
			} else {
				fmt.Fprintf(out, "  %s: %s\n", key, utils.StyleWarning("not found"))
			}
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}
