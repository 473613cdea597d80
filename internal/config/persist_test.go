package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// isolate points every config location at a temp dir and resets viper.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	viper.Reset()
	t.Cleanup(viper.Reset)
	LoadDefaults()
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	if err := InitViper(""); err != nil {
		t.Fatalf("InitViper: %v", err)
	}
	LoadFromViper()

	if got := strings.Join(Global.Partitions, ","); got != strings.Join(DefaultPartitions, ",") {
		t.Errorf("Partitions = %s", got)
	}
	if Global.GPUsPerNode != 8 {
		t.Errorf("GPUsPerNode = %d; want 8", Global.GPUsPerNode)
	}
	if Global.Threshold.MinGPUs != 1 || Global.Threshold.MinCPUs != 1 || Global.Threshold.MinMemoryGB != 6 {
		t.Errorf("unexpected threshold %+v", Global.Threshold)
	}
	if Global.QueryTimeout != time.Minute {
		t.Errorf("QueryTimeout = %s; want 1m0s", Global.QueryTimeout)
	}
	if Global.SinfoBin != "sinfo" || Global.ScontrolBin != "scontrol" {
		t.Errorf("unexpected binaries %q %q", Global.SinfoBin, Global.ScontrolBin)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, ".config", AppName)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `partitions:
  - gpu-a40
  - gpu-v100
gpus_per_node: 4
min_mem_gb: 12.5
query_timeout: "00:00:30"
scontrol_bin: /opt/slurm/bin/scontrol
`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := InitViper(""); err != nil {
		t.Fatalf("InitViper: %v", err)
	}
	LoadFromViper()

	if got := strings.Join(Global.Partitions, ","); got != "gpu-a40,gpu-v100" {
		t.Errorf("Partitions = %s", got)
	}
	if Global.GPUsPerNode != 4 {
		t.Errorf("GPUsPerNode = %d; want 4", Global.GPUsPerNode)
	}
	if Global.Threshold.MinMemoryGB != 12.5 {
		t.Errorf("MinMemoryGB = %v; want 12.5", Global.Threshold.MinMemoryGB)
	}
	if Global.QueryTimeout != 30*time.Second {
		t.Errorf("QueryTimeout = %s; want 30s", Global.QueryTimeout)
	}
	if Global.ScontrolBin != "/opt/slurm/bin/scontrol" {
		t.Errorf("ScontrolBin = %s", Global.ScontrolBin)
	}
	if Global.DeriveOptions().GPUsPerNode != 4 {
		t.Errorf("DeriveOptions did not carry gpus_per_node")
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("RIVANNA_RESOURCE_PARTITIONS", "gpu-a100-80, interactive")
	t.Setenv("RIVANNA_RESOURCE_MIN_GPUS", "2")
	t.Setenv("RIVANNA_RESOURCE_QUERY_TIMEOUT", "0")

	if err := InitViper(""); err != nil {
		t.Fatalf("InitViper: %v", err)
	}
	LoadFromViper()

	if got := strings.Join(Global.Partitions, ","); got != "gpu-a100-80,interactive" {
		t.Errorf("Partitions = %s", got)
	}
	if Global.Threshold.MinGPUs != 2 {
		t.Errorf("MinGPUs = %d; want 2", Global.Threshold.MinGPUs)
	}
	if Global.QueryTimeout != 0 {
		t.Errorf("QueryTimeout = %s; want 0 (disabled)", Global.QueryTimeout)
	}
}

func TestInitViperBadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("partitions: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitViper(path); err == nil {
		t.Errorf("expected error for malformed config file")
	}
}

func TestSaveConfig(t *testing.T) {
	dir := isolate(t)
	if err := InitViper(""); err != nil {
		t.Fatalf("InitViper: %v", err)
	}
	viper.Set("min_cpus", 4)

	path, err := SaveConfig()
	if err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	want := filepath.Join(dir, ".config", AppName, "config.yaml")
	if path != want {
		t.Errorf("SaveConfig path = %s; want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "min_cpus: 4") {
		t.Errorf("saved config missing min_cpus:\n%s", data)
	}
}

func TestGetConfigSearchPaths(t *testing.T) {
	dir := isolate(t)
	paths := GetConfigSearchPaths()
	if len(paths) != 3 {
		t.Fatalf("got %d search paths; want 3", len(paths))
	}
	if paths[0] != filepath.Join(dir, ".config", AppName) {
		t.Errorf("first search path = %s", paths[0])
	}
	if paths[2] != "/etc/rivanna-resource" {
		t.Errorf("last search path = %s", paths[2])
	}
}

func TestValidateBinary(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "sinfo")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if !ValidateBinary(exe) {
		t.Errorf("expected %s to be valid", exe)
	}
	if ValidateBinary(plain) {
		t.Errorf("non-executable file accepted")
	}
	if ValidateBinary(dir) {
		t.Errorf("directory accepted")
	}
	if ValidateBinary("") {
		t.Errorf("empty path accepted")
	}
}
