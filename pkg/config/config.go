// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ice-rage/DeskPlugin-sub000/pkg/document"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/drafting"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel/memory"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel/sdfx"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/params"
	"github.com/rs/zerolog"
)

// Kernel names accepted by DESK_KERNEL.
const (
	KernelMemory = "memory"
	KernelSdfx   = "sdfx"
)

type Config struct {
	Kernel    string
	DBPath    string
	ModelName string
	Preset    string
	LogLevel  string
	MeshCells int
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Kernel:    getEnv("DESK_KERNEL", KernelSdfx),
		DBPath:    getEnv("DESK_DB_PATH", ""),
		ModelName: getEnv("DESK_MODEL_NAME", drafting.DefaultModelName),
		Preset:    getEnv("DESK_PRESET", ""),
		LogLevel:  getEnv("DESK_LOG_LEVEL", "info"),
		MeshCells: getEnvAsInt("DESK_MESH_CELLS", 0),
	}
}

// NewKernel returns the geometry kernel named by c.Kernel.
func (c *Config) NewKernel() (kernel.Kernel, error) {
	switch c.Kernel {
	case KernelMemory:
		return memory.New(), nil
	case KernelSdfx, "":
		return sdfx.New(c.MeshCells), nil
	default:
		return nil, fmt.Errorf("config: unknown kernel %q", c.Kernel)
	}
}

// OpenStore opens the document store. Without a database path the store
// lives in memory. The returned close function is never nil.
func (c *Config) OpenStore() (document.Store, func() error, error) {
	if c.DBPath == "" {
		return document.NewMemoryStore(), func() error { return nil }, nil
	}
	s, err := document.OpenSQLite(c.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// Parameters returns the preset named by c.Preset, or the defaults.
func (c *Config) Parameters() (*params.DeskParameters, error) {
	if c.Preset == "" {
		return params.New(), nil
	}
	return params.LoadPreset(c.Preset)
}

// Logger returns a console logger on w at the configured level. An
// unparseable level falls back to info.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
