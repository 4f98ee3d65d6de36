// Package config loads cmd/kerneldemo's configuration through koanf,
// layering a TOML file under environment variable overrides, the same
// provider chain used elsewhere in the pack this kernel was grown from.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	edfkernel "github.com/nilsviken/edfkernel"
)

// Demo holds every tunable of the kerneldemo binary: the kernel Config plus
// the ambient concerns (log level, metrics listen address) that belong to
// the CLI rather than the kernel package itself.
type Demo struct {
	Kernel      edfkernel.Config
	LogLevel    string
	MetricsAddr string
}

const (
	defaultTickPeriod  = "1ms"
	defaultStackSize   = 4096
	defaultLogLevel    = "info"
	defaultMetricsAddr = ":2112"
)

// Load builds a Demo from, in increasing priority: built-in defaults, an
// optional TOML file at path (skipped if empty), and KERNELDEMO_-prefixed
// environment variables.
func Load(path string) (Demo, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Demo{}, err
		}
	}

	if err := k.Load(env.Provider("KERNELDEMO_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "KERNELDEMO_"))
	}), nil); err != nil {
		return Demo{}, err
	}

	tickPeriodStr := k.String("tick_period")
	if tickPeriodStr == "" {
		tickPeriodStr = defaultTickPeriod
	}
	tickPeriod, err := time.ParseDuration(tickPeriodStr)
	if err != nil {
		return Demo{}, err
	}

	stackSize := defaultStackSize
	if k.Exists("stack_size") {
		stackSize = k.Int("stack_size")
	}
	logLevel := defaultLogLevel
	if k.Exists("log_level") {
		logLevel = k.String("log_level")
	}
	metricsAddr := defaultMetricsAddr
	if k.Exists("metrics_addr") {
		metricsAddr = k.String("metrics_addr")
	}

	return Demo{
		Kernel: edfkernel.Config{
			TickPeriod: tickPeriod,
			StackSize:  stackSize,
		},
		LogLevel:    logLevel,
		MetricsAddr: metricsAddr,
	}, nil
}
