package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/edwardsp/AzCopyAllContainers/src/copier"
	"github.com/edwardsp/AzCopyAllContainers/src/storage/azure"
)

type Config struct {
	EndpointSuffix    string        `yaml:"endpoint_suffix"`
	MaxConcurrency    int           `yaml:"max_concurrency"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	SDKRetries        int32         `yaml:"sdk_retries"`
	BlockSize         int64         `yaml:"block_size"`
	UploadConcurrency int           `yaml:"upload_concurrency"`
	Resume            bool          `yaml:"resume"`
	Verify            bool          `yaml:"verify"`
	NoWait            bool          `yaml:"no_wait"`
	Debug             bool          `yaml:"debug"`
}

func DefaultConfig() *Config {
	opts := copier.DefaultOptions()
	return &Config{
		EndpointSuffix: azure.DefaultEndpointSuffix,
		MaxConcurrency: opts.Concurrency,
		MaxRetries:     opts.MaxRetries,
		RetryBackoff:   opts.RetryBackoff,
	}
}

// ReadConfigFile reads a YAML file over the defaults.
func ReadConfigFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		slog.Error("Failed to read config file", "filepath", filepath, "error", err)
		return nil, errors.Wrapf(err, "reading config file %s", filepath)
	}

	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		slog.Error("Failed to unmarshal config file", "filepath", filepath, "error", err)
		return nil, errors.Wrapf(err, "decoding config file %s", filepath)
	}

	return config, nil
}

// bindFlags registers the command-line flags that can override config values.
func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.EndpointSuffix, "suffix", c.EndpointSuffix, "Azure storage endpoint suffix")
	fs.IntVar(&c.MaxConcurrency, "concurrency", c.MaxConcurrency, "Maximum BLOBs copied at once per container (0 = unbounded)")
	fs.IntVar(&c.MaxRetries, "retries", c.MaxRetries, "Maximum attempts per BLOB")
	fs.DurationVar(&c.RetryBackoff, "backoff", c.RetryBackoff, "Base delay between BLOB attempts")
	fs.BoolVar(&c.Resume, "resume", c.Resume, "Skip destination BLOBs that already match the source")
	fs.BoolVar(&c.Verify, "verify", c.Verify, "Re-list each destination container after copying it")
	fs.BoolVar(&c.NoWait, "nowait", c.NoWait, "Do not wait for a key press before exiting")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
}

// override copies the values of the flags that were set on the command line.
func (c *Config) override(fs *flag.FlagSet, flags *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "suffix":
			c.EndpointSuffix = flags.EndpointSuffix
		case "concurrency":
			c.MaxConcurrency = flags.MaxConcurrency
		case "retries":
			c.MaxRetries = flags.MaxRetries
		case "backoff":
			c.RetryBackoff = flags.RetryBackoff
		case "resume":
			c.Resume = flags.Resume
		case "verify":
			c.Verify = flags.Verify
		case "nowait":
			c.NoWait = flags.NoWait
		case "debug":
			c.Debug = flags.Debug
		}
	})
}

func (c *Config) sessionOptions() azure.Options {
	return azure.Options{
		EndpointSuffix:    c.EndpointSuffix,
		MaxConcurrency:    c.MaxConcurrency,
		SDKRetries:        c.SDKRetries,
		BlockSize:         c.BlockSize,
		UploadConcurrency: c.UploadConcurrency,
	}
}

func (c *Config) copierOptions() copier.Options {
	return copier.Options{
		Concurrency:  c.MaxConcurrency,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		Resume:       c.Resume,
		Verify:       c.Verify,
	}
}
