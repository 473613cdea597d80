package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/utils"
	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// AppName names the config directories and the env prefix.
const AppName = "rivanna-resource"

// EnvPrefix is prepended to every config key read from the environment.
const EnvPrefix = "RIVANNA_RESOURCE"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (RIVANNA_RESOURCE_*)
// 3. User config file (~/.config/rivanna-resource/config.yaml)
// 4. System config file (/etc/rivanna-resource/config.yaml)
// 5. Defaults
//
// A non-empty configFile replaces the search paths.
func InitViper(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(ConfigFilename)
		viper.SetConfigType(ConfigType)
		for _, dir := range GetConfigSearchPaths() {
			viper.AddConfigPath(dir)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	utils.PrintDebug("Using config file %s", utils.StylePath(viper.ConfigFileUsed()))
	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("partitions", DefaultPartitions)
	viper.SetDefault("gpus_per_node", 8)
	viper.SetDefault("min_gpus", 1)
	viper.SetDefault("min_cpus", 1)
	viper.SetDefault("min_mem_gb", 6.0)
	viper.SetDefault("sinfo_bin", "sinfo")
	viper.SetDefault("scontrol_bin", "scontrol")
	viper.SetDefault("query_timeout", DefaultQueryTimeout.String())
}

// GetConfigSearchPaths returns the directories searched for config.yaml, highest priority first.
func GetConfigSearchPaths() []string {
	var dirs []string
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userConfigDir, AppName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+AppName))
	}
	dirs = append(dirs, filepath.Join("/etc", AppName))
	return dirs
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "."+AppName, ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, AppName, ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() (string, error) {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil || info.IsDir() {
			return false
		}
		return info.Mode()&0111 != 0
	}

	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectSlurmBins looks up sinfo and scontrol in PATH.
// Missing binaries are returned as empty strings.
func DetectSlurmBins() (sinfo string, scontrol string) {
	if path, err := exec.LookPath("sinfo"); err == nil {
		sinfo = path
	}
	if path, err := exec.LookPath("scontrol"); err == nil {
		scontrol = path
	}
	return sinfo, scontrol
}

// ForceDetectAndSave re-detects the Slurm binaries from the current PATH and
// writes the user config file. Returns the written path and whether a binary changed.
func ForceDetectAndSave() (string, bool, error) {
	updated := false

	sinfo, scontrol := DetectSlurmBins()
	if sinfo != "" && viper.GetString("sinfo_bin") != sinfo {
		viper.Set("sinfo_bin", sinfo)
		updated = true
	}
	if scontrol != "" && viper.GetString("scontrol_bin") != scontrol {
		viper.Set("scontrol_bin", scontrol)
		updated = true
	}

	// Always save (even if nothing changed, to create the file)
	path, err := SaveConfig()
	if err != nil {
		return "", false, err
	}
	return path, updated, nil
}

// LoadFromViper loads config from Viper into Global struct.
// Invalid values are reported and the defaults kept.
func LoadFromViper() {
	var partitions []string
	for _, item := range viper.GetStringSlice("partitions") {
		partitions = append(partitions, utils.SplitList(item)...)
	}
	if len(partitions) > 0 {
		Global.Partitions = partitions
	}

	if n := viper.GetInt("gpus_per_node"); n > 0 {
		Global.GPUsPerNode = n
	} else {
		utils.PrintWarning("Ignoring gpus_per_node=%v: must be positive", viper.Get("gpus_per_node"))
	}

	if n := viper.GetInt("min_gpus"); n >= 0 {
		Global.Threshold.MinGPUs = n
	}
	if n := viper.GetInt("min_cpus"); n >= 0 {
		Global.Threshold.MinCPUs = n
	}
	if mem := viper.GetFloat64("min_mem_gb"); mem >= 0 {
		Global.Threshold.MinMemoryGB = mem
	}

	if bin := viper.GetString("sinfo_bin"); bin != "" {
		Global.SinfoBin = bin
	}
	if bin := viper.GetString("scontrol_bin"); bin != "" {
		Global.ScontrolBin = bin
	}

	if timeout := viper.GetString("query_timeout"); timeout != "" {
		if dur, err := utils.ParseDuration(timeout); err == nil {
			Global.QueryTimeout = dur
		} else {
			utils.PrintWarning("Ignoring query_timeout: %v", err)
		}
	}
}
