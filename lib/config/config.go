// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	// Device selects which USB device to attach.
	Device DeviceConfig `yaml:"device"`

	// Logging configures the slog handler.
	Logging LoggingConfig `yaml:"logging"`

	// ControlSocket is the Unix socket path for the CBOR control
	// protocol.
	ControlSocket string `yaml:"control_socket"`
}

// DeviceConfig selects the panel device. By default the daemon scans
// sysfs for the Xserve front panel's vendor/product pair; both can be
// overridden, or sysfs discovery bypassed entirely with an explicit
// device node path.
type DeviceConfig struct {
	// VendorID and ProductID are the USB IDs to scan for.
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`

	// Path, when set, is the usbdevfs node to open directly
	// (e.g. /dev/bus/usb/001/007). Discovery is skipped.
	Path string `yaml:"path"`

	// Interface is the interface number to claim.
	Interface uint8 `yaml:"interface"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Xserve front panel USB IDs, the hardware this daemon exists for.
const (
	DefaultVendorID  = 0x05ac
	DefaultProductID = 0x8261
)

// DefaultControlSocket is where the daemon listens when the config
// does not say otherwise.
const DefaultControlSocket = "/run/frontpaneld/control.sock"

// Default returns the default configuration. These defaults are the
// base the config file is merged onto, so an empty file yields a
// working daemon.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			VendorID:  DefaultVendorID,
			ProductID: DefaultProductID,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		ControlSocket: DefaultControlSocket,
	}
}

// Load loads configuration from the FRONTPANEL_CONFIG environment
// variable. Fails if the variable is unset; use LoadFile when the
// path comes from a flag.
func Load() (*Config, error) {
	path := os.Getenv("FRONTPANEL_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("FRONTPANEL_CONFIG environment variable not set; " +
			"set it to the path of your frontpanel.yaml config file, or use the --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging it
// onto the defaults. Environment variables do not override config
// values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Device.Path == "" && (c.Device.VendorID == 0 || c.Device.ProductID == 0) {
		errs = append(errs, fmt.Errorf("device.vendor_id and device.product_id are required when device.path is not set"))
	}
	if c.ControlSocket == "" {
		errs = append(errs, fmt.Errorf("control_socket is required"))
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", l.Level)
	}
}

// NewLogger builds a slog.Logger from the logging configuration. The
// configuration must have passed Validate.
func (l LoggingConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, options))
}
