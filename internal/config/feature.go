package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/models"
	"github.com/thoas/go-funk"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// LegalFormats lists the accepted report formats.
var LegalFormats = []string{FormatText, FormatJSON, FormatYAML}

// ScanConfig selects which device kinds are inspected.
type ScanConfig struct {
	DeviceKinds []string `toml:"device_kinds"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// FeatureConfig holds user-facing settings that shape the scan and the report.
// Source: optional TOML configuration file
type FeatureConfig struct {
	Scan   ScanConfig   `toml:"scan"`
	Output OutputConfig `toml:"output"`
}

// DefaultFeatureConfig scans disks and CD-ROMs and prints plain text.
func DefaultFeatureConfig() *FeatureConfig {
	kinds := make([]string, 0, len(models.DefaultDeviceKinds))
	for _, k := range models.DefaultDeviceKinds {
		kinds = append(kinds, string(k))
	}
	return &FeatureConfig{
		Scan:   ScanConfig{DeviceKinds: kinds},
		Output: OutputConfig{Format: FormatText},
	}
}

// LoadFeatureConfig loads feature configuration from a TOML file. An empty
// path yields the defaults; keys missing from the file keep their defaults.
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	cfg := DefaultFeatureConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load feature config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown device kinds and report formats.
func (c *FeatureConfig) Validate() error {
	if _, err := c.Kinds(); err != nil {
		return err
	}
	if !funk.ContainsString(LegalFormats, c.Output.Format) {
		return fmt.Errorf("output format must be one of %s", strings.Join(LegalFormats, ", "))
	}
	return nil
}

// Kinds returns the configured device kinds, or the defaults when none are set.
func (c *FeatureConfig) Kinds() ([]models.DeviceKind, error) {
	if len(c.Scan.DeviceKinds) == 0 {
		return models.DefaultDeviceKinds, nil
	}
	kinds := make([]models.DeviceKind, 0, len(c.Scan.DeviceKinds))
	for _, s := range c.Scan.DeviceKinds {
		k, err := models.ParseDeviceKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return funk.Uniq(kinds).([]models.DeviceKind), nil
}
