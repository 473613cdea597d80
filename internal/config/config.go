package config

import (
	"time"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/resource"
)

const VERSION = "1.0.0"

// DefaultPartitions are the Rivanna GPU partitions scanned when none are configured.
var DefaultPartitions = []string{
	"gpu-a6000",
	"gpu-a100-80",
	"gpu-a100-40",
	"gpu-a40",
	"gpu-v100",
	"interactive",
}

// DefaultQueryTimeout bounds a single sinfo/scontrol call.
const DefaultQueryTimeout = 60 * time.Second

// Config holds global application settings
type Config struct {
	Debug   bool
	Quiet   bool
	Version string

	Partitions   []string
	GPUsPerNode  int
	Threshold    resource.Threshold
	QueryTimeout time.Duration

	SinfoBin    string
	ScontrolBin string
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to the built-in settings.
func LoadDefaults() {
	Global = Config{
		Debug:   false,
		Quiet:   false,
		Version: VERSION,

		Partitions:   append([]string(nil), DefaultPartitions...),
		GPUsPerNode:  resource.DefaultGPUsPerNode,
		Threshold:    resource.DefaultThreshold(),
		QueryTimeout: DefaultQueryTimeout,

		SinfoBin:    "sinfo",
		ScontrolBin: "scontrol",
	}
}

// DeriveOptions returns the derivation settings for the current config.
func (c Config) DeriveOptions() resource.Options {
	return resource.Options{GPUsPerNode: c.GPUsPerNode}
}
