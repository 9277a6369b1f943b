package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// HREMode selects how the Holy Roman Empire (or a stand-in) is dissolved.
type HREMode int

const (
	HREDisabled HREMode = iota
	HREDefault           // e_hre
	HREByzantium         // e_byzantium
	HRERome              // e_roman_empire
	HRECustom            // tag resolved through the mapping file
)

// ShatterMode selects how far empire shattering descends.
type ShatterMode int

const (
	ShatterDisabled ShatterMode = iota
	ShatterToKingdom
	ShatterToDuchy
)

// Config holds all configuration for crownlink.
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Shatter ShatterConfig `mapstructure:"shatter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// InputConfig holds data source paths.
type InputConfig struct {
	TablesPath string `mapstructure:"tables_path"`
	ModsPath   string `mapstructure:"mods_path"`
}

// ShatterConfig holds the political restructuring switches.
type ShatterConfig struct {
	Empires        string `mapstructure:"empires"` // disabled | kingdom | duchy
	HRE            string `mapstructure:"hre"`     // disabled | default | byzantium | rome | custom
	HREMappingFile string `mapstructure:"hre_mapping_file"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("input.tables_path", "")
	v.SetDefault("input.mods_path", "")

	v.SetDefault("shatter.empires", "disabled")
	v.SetDefault("shatter.hre", "default")
	v.SetDefault("shatter.hre_mapping_file", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".crownlink"))
	v.AddConfigPath(".")

	v.SetEnvPrefix("CROWNLINK")
	v.AutomaticEnv()

	_ = v.BindEnv("input.tables_path", "CROWNLINK_TABLES_PATH")
	_ = v.BindEnv("input.mods_path", "CROWNLINK_MODS_PATH")
	_ = v.BindEnv("shatter.empires", "CROWNLINK_SHATTER_EMPIRES")
	_ = v.BindEnv("shatter.hre", "CROWNLINK_SHATTER_HRE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration fields are set and consistent.
func (c *Config) Validate() error {
	if _, err := c.ShatterMode(); err != nil {
		return err
	}
	mode, err := c.HREMode()
	if err != nil {
		return err
	}
	if mode == HRECustom && c.Shatter.HREMappingFile == "" {
		return fmt.Errorf("shatter.hre_mapping_file must be set when shatter.hre is %q", c.Shatter.HRE)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

// ShatterMode parses the empire-shatter setting.
func (c *Config) ShatterMode() (ShatterMode, error) {
	switch c.Shatter.Empires {
	case "", "disabled", "none":
		return ShatterDisabled, nil
	case "kingdom":
		return ShatterToKingdom, nil
	case "duchy":
		return ShatterToDuchy, nil
	default:
		return ShatterDisabled, fmt.Errorf("shatter.empires must be one of disabled, kingdom, duchy; got %q", c.Shatter.Empires)
	}
}

// HREMode parses the HRE dissolution setting.
func (c *Config) HREMode() (HREMode, error) {
	switch c.Shatter.HRE {
	case "disabled", "none":
		return HREDisabled, nil
	case "", "default", "hre":
		return HREDefault, nil
	case "byzantium":
		return HREByzantium, nil
	case "rome":
		return HRERome, nil
	case "custom":
		return HRECustom, nil
	default:
		return HREDisabled, fmt.Errorf("shatter.hre must be one of disabled, default, byzantium, rome, custom; got %q", c.Shatter.HRE)
	}
}

// hreMapping is the on-disk shape of the custom HRE mapping file.
type hreMapping struct {
	HRETag string `yaml:"hre_tag"`
}

// ResolveHRETag returns the designated empire tag for the configured HRE
// mode. For HRECustom the tag is read from the mapping file.
func (c *Config) ResolveHRETag() (string, error) {
	mode, err := c.HREMode()
	if err != nil {
		return "", err
	}
	switch mode {
	case HREDefault:
		return "e_hre", nil
	case HREByzantium:
		return "e_byzantium", nil
	case HRERome:
		return "e_roman_empire", nil
	case HRECustom:
		raw, err := os.ReadFile(c.Shatter.HREMappingFile)
		if err != nil {
			return "", fmt.Errorf("reading HRE mapping file: %w", err)
		}
		var mapping hreMapping
		if err := yaml.Unmarshal(raw, &mapping); err != nil {
			return "", fmt.Errorf("parsing HRE mapping file: %w", err)
		}
		if mapping.HRETag == "" {
			return "", fmt.Errorf("HRE mapping file %s does not define hre_tag", c.Shatter.HREMappingFile)
		}
		return mapping.HRETag, nil
	default:
		return "", nil
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
