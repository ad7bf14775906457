// Package config provides centralized configuration management for
// tagfd's core daemon.
//
// Configuration is layered over built-in defaults, highest priority
// first:
//
//  1. Environment variables
//  2. YAML config file (path chosen by cmd/tagfdcore's -config flag)
//
// No command-line flag overrides an individual field. All values have
// sensible defaults and can be overridden through the environment or
// the config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds all configuration values for the tagfd core daemon.
type Config struct {
	// SocketRoot is the directory under which one Unix domain socket is
	// created per live tag, named <SocketRoot>/<tag_name> (spec.md §6).
	// Environment: TAGFD_SOCKET_ROOT. Default: "./var/tagfd".
	SocketRoot string `yaml:"socket_root"`

	// AdminSocketPath is the sibling administrative endpoint path
	// (spec.md §6, "<root>.master"). Environment: TAGFD_ADMIN_SOCKET.
	// Default: "./var/tagfd.master" (the default SocketRoot plus
	// ".master"; it does not follow a changed SocketRoot).
	AdminSocketPath string `yaml:"admin_socket_path"`

	// Capacity bounds the number of live tags the registry will ever
	// hold (I7). Environment: TAGFD_CAPACITY. Default: 4096.
	Capacity int `yaml:"capacity"`

	// TagSocketMode is the Unix permission bits applied to each
	// per-tag socket; world read/write is appropriate (spec.md §6).
	// Environment: TAGFD_TAG_SOCKET_MODE (octal). Default: 0666.
	TagSocketMode os.FileMode `yaml:"tag_socket_mode"`

	// AdminSocketMode is the permission bits applied to the admin
	// socket; owner-only (spec.md §6). Environment:
	// TAGFD_ADMIN_SOCKET_MODE (octal). Default: 0600.
	AdminSocketMode os.FileMode `yaml:"admin_socket_mode"`

	// DiscoveryAddr is the listen address for the read-only HTTP
	// enumeration service (SPEC_FULL.md's Discovery Service).
	// Environment: TAGFD_DISCOVERY_ADDR. Default: "127.0.0.1:7780".
	DiscoveryAddr string `yaml:"discovery_addr"`

	// LogLevel sets the minimum log level. Environment:
	// TAGFD_LOG_LEVEL. Default: "info".
	LogLevel string `yaml:"log_level"`

	// TraceSubsystems is a comma-separated list of subsystems to trace
	// (e.g. "cell,registry"). Environment: TAGFD_TRACE_SUBSYSTEMS.
	TraceSubsystems string `yaml:"trace_subsystems"`

	// ShutdownTimeout bounds how long the discovery HTTP server's
	// graceful shutdown waits; the transport shutdown that follows is
	// not bounded by it. Environment:
	// TAGFD_SHUTDOWN_TIMEOUT (seconds). Default: 5s.
	ShutdownTimeout time.Duration `yaml:"-"`
}

// Default returns a Config populated with documented defaults, with no
// file or environment overlay applied.
func Default() *Config {
	return &Config{
		SocketRoot:      "./var/tagfd",
		AdminSocketPath: "./var/tagfd.master",
		Capacity:        4096,
		TagSocketMode:   0666,
		AdminSocketMode: 0600,
		DiscoveryAddr:   "127.0.0.1:7780",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load builds a Config by starting from Default, layering a YAML file
// at yamlPath if one exists, then layering environment variables on
// top (environment wins, per the package doc's hierarchy).
func Load(yamlPath string) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: reading %s: %w", yamlPath, err)
		}
	}

	cfg.SocketRoot = getEnv("TAGFD_SOCKET_ROOT", cfg.SocketRoot)
	cfg.AdminSocketPath = getEnv("TAGFD_ADMIN_SOCKET", cfg.AdminSocketPath)
	cfg.Capacity = getEnvInt("TAGFD_CAPACITY", cfg.Capacity)
	cfg.TagSocketMode = getEnvMode("TAGFD_TAG_SOCKET_MODE", cfg.TagSocketMode)
	cfg.AdminSocketMode = getEnvMode("TAGFD_ADMIN_SOCKET_MODE", cfg.AdminSocketMode)
	cfg.DiscoveryAddr = getEnv("TAGFD_DISCOVERY_ADDR", cfg.DiscoveryAddr)
	cfg.LogLevel = getEnv("TAGFD_LOG_LEVEL", cfg.LogLevel)
	cfg.TraceSubsystems = getEnv("TAGFD_TRACE_SUBSYSTEMS", cfg.TraceSubsystems)
	cfg.ShutdownTimeout = getEnvDuration("TAGFD_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("config: capacity must be positive, got %d", cfg.Capacity)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvMode(key string, defaultValue os.FileMode) os.FileMode {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 8, 32); err == nil {
			return os.FileMode(n)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}
