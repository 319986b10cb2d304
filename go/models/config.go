package models

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"github.com/sirupsen/logrus"
)

const ConfigName = "config.toml"

type Config struct {
	Verbose  bool   `toml:"verbose"`
	LogLevel string `toml:"log_level"`
	TraceSys bool   `toml:"trace_sys"`
	Strsize  int    `toml:"strsize"`

	// host directory exposed to the guest as /
	Root string `toml:"root"`
	// YAML manifest seeding the in-memory filesystem
	Manifest string `toml:"manifest"`
	// overrides for host_statistics(HOST_VM_INFO), keyed by vm_statistics field name
	VM map[string]uint32 `toml:"vm"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Strsize:  30,
	}
}

// LoadConfig reads a TOML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	return c, nil
}

// FindConfig loads config.toml from the first user config folder that has
// one, or returns the defaults.
func FindConfig() (*Config, error) {
	dirs := configdir.New("darwincorn", "darwincorn")
	for _, dir := range dirs.QueryFolders(configdir.All) {
		data, err := dir.ReadFile(ConfigName)
		if err != nil {
			continue
		}
		c := DefaultConfig()
		if _, err := toml.Decode(string(data), c); err != nil {
			return nil, errors.Wrapf(err, "loading config %s/%s", dir.Path, ConfigName)
		}
		return c, nil
	}
	return DefaultConfig(), nil
}

// Logger builds the logger kernels log through.
func (c *Config) Logger(out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	level := logrus.InfoLevel
	if c.LogLevel != "" {
		var err error
		if level, err = logrus.ParseLevel(c.LogLevel); err != nil {
			return nil, errors.Wrap(err, "log_level")
		}
	}
	if c.Verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	return log, nil
}
