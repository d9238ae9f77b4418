package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

// Config is the overlay demo binary's configuration: the environment/log
// block, the HTTP observability endpoint, and the feed/index settings the
// engine reads at startup.
type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Feed FeedConfig `json:"feed" yaml:"feed"`

	Overlay OverlayConfig `json:"overlay" yaml:"overlay"`
}

// FeedConfig carries the three upstream feed URLs the feed client polls.
type FeedConfig struct {
	EdsURL        string `json:"edsUrl" yaml:"edsUrl"`
	CustomAreaURL string `json:"customAreaUrl" yaml:"customAreaUrl"`
	SpeedLimitURL string `json:"speedLimitUrl" yaml:"speedLimitUrl"`
}

// OverlayConfig carries the engine's non-feed runtime settings.
type OverlayConfig struct {
	// GraphCSVPath points at the edges.csv the demo binary's memgraph.Graph
	// loads at startup.
	GraphCSVPath string `json:"graphCsvPath" yaml:"graphCsvPath"`

	// CacheCapacity bounds the shared edge-geometry LRU cache; 0 means
	// unbounded.
	CacheCapacity int `json:"cacheCapacity" yaml:"cacheCapacity"`
}

type Log struct {
	Pretty       bool          `json:"pretty" yaml:"pretty"`
	Level        string        `json:"level" yaml:"level"`
	Path         string        `json:"path" yaml:"path"`
	MaxAge       time.Duration `json:"maxAge" yaml:"maxAge"`
	RotationTime time.Duration `json:"rotationTime" yaml:"rotationTime"`
}

// LoadWithEnv loads a <currEnv>.yaml file through koanf, layering
// environment variables over it (ENV_VAR_NAME -> env.var.name, with the
// casing of keys the file already declares; see canonicalizeEnvKey), and
// unmarshals the result into a new *T.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, fmt.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read %s config failed: %w", currEnv, err)
	}

	existing := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existing), v
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load env variables failed: %w", err)
	}

	if err := koanfInstance.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s config failed: %w", currEnv, err)
	}

	return cfg, nil
}

// canonicalizeEnvKey maps an upper-snake-case environment variable name
// (e.g. POSTGRES_MASTER_USERNAME) onto the dotted, camelCase key path koanf
// expects (postgres.master.userName), by walking existing alongside each
// "_"-delimited segment and matching case-insensitively. Once a segment
// fails to match a nested map, every remaining segment falls back to plain
// lowercase - this only recovers casing for keys the YAML file already
// declares.
func canonicalizeEnvKey(envKey string, existing map[string]any) string {
	segments := strings.Split(envKey, "_")
	parts := make([]string, 0, len(segments))

	node := existing
	for _, seg := range segments {
		key := strings.ToLower(seg)

		if node != nil {
			matched := false
			for k, v := range node {
				if strings.EqualFold(k, seg) {
					key = k
					if next, ok := v.(map[string]any); ok {
						node = next
					} else {
						node = nil
					}
					matched = true

					break
				}
			}
			if !matched {
				node = nil
			}
		}

		parts = append(parts, key)
	}

	return strings.Join(parts, ".")
}

func New() (*Config, error) {
	return LoadWithEnv[Config]("config", "config", "../config", "../../config")
}
