// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config defines the global configuration structure
type Config struct {
	Input   string        `mapstructure:"input"` // FFP configuration export
	Output  OutputConfig  `mapstructure:"output"`
	FFP     FFPConfig     `mapstructure:"ffp"`
	Mapping MappingConfig `mapstructure:"mapping"`
	Image   ImageConfig   `mapstructure:"image"`
	Log     LogConfig     `mapstructure:"log"`

	// Raw register values to decode, "gateway:register:value".
	Decode []string `mapstructure:"decode"`

	ConfigFile string `mapstructure:"-"`
}

// OutputConfig defines where and how the mapping is written
type OutputConfig struct {
	Dir      string   `mapstructure:"dir"`
	Basename string   `mapstructure:"basename"` // Defaults to the input file name
	Formats  []string `mapstructure:"formats"`  // xlsx, csv, json, yaml, cbor, sqlite
	Tables   bool     `mapstructure:"tables"`   // Format xlsx sheets as Excel tables
}

// FFPConfig defines extraction settings
type FFPConfig struct {
	Clean bool `mapstructure:"clean"` // Drop placeholder rows and normalise text
}

// MappingConfig defines address mapping settings
type MappingConfig struct {
	FixZoneBoundary bool `mapstructure:"fix_zone_boundary"` // Put zone 1001 on gateway 2
}

// ImageConfig defines the holding register image
type ImageConfig struct {
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig defines data storage settings
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap", "sqlite"
	Path string `mapstructure:"path"` // Directory for "file/mmap", database for "sqlite"
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	File   string `mapstructure:"file"`   // Log file path
	Format string `mapstructure:"format"` // text, json
}

var flagKeys = map[string]string{
	"input":             "input",
	"output":            "output.dir",
	"basename":          "output.basename",
	"format":            "output.formats",
	"tables":            "output.tables",
	"clean":             "ffp.clean",
	"fix-zone-boundary": "mapping.fix_zone_boundary",
	"persistence":       "image.persistence.type",
	"image-path":        "image.persistence.path",
	"log-level":         "log.level",
	"log-file":          "log.file",
	"log-format":        "log.format",
	"decode":            "decode",
}

// LoadConfig loads configuration from command line arguments and config file.
// A positional argument is taken as the input file.
func LoadConfig(args []string) (*Config, error) {
	v := viper.New()

	// 1. Defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.formats", []string{"xlsx"})
	v.SetDefault("output.tables", false)
	v.SetDefault("ffp.clean", true)
	v.SetDefault("mapping.fix_zone_boundary", false)
	v.SetDefault("image.persistence.type", "memory")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// 2. Command line flags
	fs := pflag.NewFlagSet("ffpmapper", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Configuration file path.")
	fs.StringP("input", "i", "", "FFP configuration export to map.")
	fs.StringP("output", "o", v.GetString("output.dir"), "Output directory.")
	fs.StringP("basename", "b", "", "Base name of the output files.")
	fs.StringSliceP("format", "f", v.GetStringSlice("output.formats"), "Output formats (xlsx, csv, json, yaml, cbor, sqlite).")
	fs.Bool("tables", v.GetBool("output.tables"), "Format xlsx sheets as Excel tables.")
	fs.Bool("clean", v.GetBool("ffp.clean"), "Drop unassigned rows and normalise descriptions.")
	fs.Bool("fix-zone-boundary", v.GetBool("mapping.fix_zone_boundary"), "Place zone 1001 on gateway 2.")
	fs.StringP("persistence", "s", v.GetString("image.persistence.type"), "Register image storage (memory, file, mmap, sqlite).")
	fs.String("image-path", "", "Register image location.")
	fs.StringP("log-level", "v", v.GetString("log.level"), "Log verbosity level (debug, info, warn, error).")
	fs.StringP("log-file", "L", "", "Log file name ('-' for logging to STDOUT only).")
	fs.String("log-format", v.GetString("log.format"), "Log format (text, json).")
	fs.StringArray("decode", nil, "Decode a raw register value, gateway:register:value.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// 3. Bind flags to viper
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	// 4. Read config file
	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/ffpmapper/")
		v.AddConfigPath("$HOME/.ffpmapper")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Everything can be given on the command line.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 5. Unmarshal
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ConfigFile = v.ConfigFileUsed()
	if config.Input == "" && fs.NArg() > 0 {
		config.Input = fs.Arg(0)
	}

	// Validate / Fixups
	if err := config.fixup(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) fixup() error {
	if c.Input == "" {
		return fmt.Errorf("no input file given")
	}
	if c.Output.Basename == "" {
		c.Output.Basename = strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
	}
	for i, f := range c.Output.Formats {
		c.Output.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Format = strings.ToLower(c.Log.Format); c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	p := &c.Image.Persistence
	switch p.Type = strings.ToLower(p.Type); p.Type {
	case "", "memory":
		p.Type = "memory"
	case "file", "mmap":
		if p.Path == "" {
			p.Path = filepath.Join(c.Output.Dir, c.Output.Basename+".regs")
		}
	case "sqlite":
		if p.Path == "" {
			p.Path = filepath.Join(c.Output.Dir, c.Output.Basename+".regs.db")
		}
	default:
		return fmt.Errorf("unknown persistence type %q", p.Type)
	}
	return nil
}
