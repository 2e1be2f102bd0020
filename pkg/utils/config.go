package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Addr     string
	DataDir  string
	CacheDir string

	IconTimeout     time.Duration
	IconMaxBytes    int64
	IconMemItems    int
	IconMemBytes    int64
	IconMaxSide     int
	TrustedProxies  []string
	ShutdownTimeout time.Duration
}

func LoadServerConfig() ServerConfig {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	return ServerConfig{
		Addr:            envString("CHARSELECT_ADDR", ":8080"),
		DataDir:         envString("CHARSELECT_DATA_DIR", filepath.Join("web", "data")),
		CacheDir:        envString("CHARSELECT_CACHE_DIR", filepath.Join(home, ".charselect", "icons")),
		IconTimeout:     envDuration("CHARSELECT_ICON_TIMEOUT", 15*time.Second),
		IconMaxBytes:    int64(envInt("CHARSELECT_ICON_MAX_BYTES", 10<<20)),
		IconMemItems:    envInt("CHARSELECT_ICON_MEM_ITEMS", 64),
		IconMemBytes:    int64(envInt("CHARSELECT_ICON_MEM_BYTES", 256<<20)),
		IconMaxSide:     envInt("CHARSELECT_ICON_MAX_SIDE", 1024),
		TrustedProxies:  []string{"127.0.0.1"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// PreviewConfig drives the client side: where datasets and icons come from.
type PreviewConfig struct {
	APIBase        string
	UseProxy       bool
	DatasetTimeout time.Duration
	ImageTimeout   time.Duration
}

func LoadPreviewConfig() PreviewConfig {
	return PreviewConfig{
		APIBase:        strings.TrimRight(envString("CHARSELECT_API", "http://localhost:8080"), "/"),
		UseProxy:       envBool("CHARSELECT_USE_PROXY", false),
		DatasetTimeout: envDuration("CHARSELECT_DATASET_TIMEOUT", 10*time.Second),
		ImageTimeout:   envDuration("CHARSELECT_IMAGE_TIMEOUT", 15*time.Second),
	}
}

// DataURL is the fixed base location datasets are fetched from.
func (c PreviewConfig) DataURL() string {
	return c.APIBase + "/data"
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// invalid values fall back to the default
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
