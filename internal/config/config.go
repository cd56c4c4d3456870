// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads benchtrack settings from a YAML file, a .env
// file, BENCHTRACK_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read into the
// configuration. Nested keys use underscores: BENCHTRACK_DB_DSN.
const EnvPrefix = "BENCHTRACK"

// Config is the benchtrack configuration.
type Config struct {
	// Tool is the benchmark tool whose output is parsed.
	Tool string `mapstructure:"tool" validate:"required"`

	// Format is the output format of the extract command.
	Format string `mapstructure:"format" validate:"oneof=json yaml text benchfmt"`

	// Timeout bounds each command.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	Log     Log     `mapstructure:"log"`
	GitHub  GitHub  `mapstructure:"github"`
	DB      DB      `mapstructure:"db"`
	Compare Compare `mapstructure:"compare"`
	Sinks   Sinks   `mapstructure:"sinks"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

type GitHub struct {
	// Token authenticates commit lookups against the API. It
	// falls back to $GITHUB_TOKEN.
	Token string `mapstructure:"token"`

	// Ref overrides $GITHUB_REF for the API lookup.
	Ref string `mapstructure:"ref"`
}

type DB struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite3 mysql"`
	DSN    string `mapstructure:"dsn" validate:"required_with=Driver"`
}

type Compare struct {
	Threshold float64 `mapstructure:"threshold" validate:"gt=0"`
}

type Sinks struct {
	DataFile    DataFile    `mapstructure:"datafile"`
	GCS         GCS         `mapstructure:"gcs"`
	Influx      Influx      `mapstructure:"influx"`
	Pushgateway Pushgateway `mapstructure:"pushgateway"`
}

type DataFile struct {
	Path     string `mapstructure:"path"`
	Name     string `mapstructure:"name"`
	RepoURL  string `mapstructure:"repo_url" validate:"omitempty,url"`
	MaxItems int    `mapstructure:"max_items" validate:"gte=0"`
}

type GCS struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type Influx struct {
	URL    string `mapstructure:"url" validate:"omitempty,url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org" validate:"required_with=URL"`
	Bucket string `mapstructure:"bucket" validate:"required_with=URL"`
}

type Pushgateway struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
	Job string `mapstructure:"job"`
}

// defaults lists every key so that environment variables are picked
// up for all of them.
var defaults = map[string]any{
	"tool":                       "catch2",
	"format":                     "json",
	"timeout":                    2 * time.Minute,
	"log.level":                  "info",
	"log.format":                 "text",
	"github.token":               "",
	"github.ref":                 "",
	"db.driver":                  "",
	"db.dsn":                     "",
	"compare.threshold":          2.0,
	"sinks.datafile.path":        "",
	"sinks.datafile.name":        "",
	"sinks.datafile.repo_url":    "",
	"sinks.datafile.max_items":   0,
	"sinks.gcs.bucket":           "",
	"sinks.gcs.prefix":           "",
	"sinks.gcs.credentials_file": "",
	"sinks.influx.url":           "",
	"sinks.influx.token":         "",
	"sinks.influx.org":           "",
	"sinks.influx.bucket":        "",
	"sinks.pushgateway.url":      "",
	"sinks.pushgateway.job":      "benchtrack",
}

// New returns a viper instance with the defaults and environment
// bindings installed. Callers bind their flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration into v and returns it validated.
//
// If cfgFile is empty, benchtrack.yaml in the current directory is
// used if it exists. A .env file in the current directory is loaded
// into the environment first; existing variables win.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("benchtrack")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg for invalid settings.
func (cfg *Config) Validate() error {
	err := validate.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q check (value %v)", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration:\n\t%s", strings.Join(msgs, "\n\t"))
}
