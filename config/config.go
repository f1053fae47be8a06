// Package config loads server configuration from a YAML file, CINETRACK_ environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CINETRACK"

type Config struct {
	Listen   ListenConfig   `mapstructure:"listen"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Posters  PosterConfig   `mapstructure:"posters"`
	// CatalogFile is an optional YAML file with movies imported at startup.
	CatalogFile string `mapstructure:"catalogfile"`
	// AutoRegister creates unknown users on first login.
	AutoRegister bool `mapstructure:"autoregister"`
}

type ListenConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
	TLSCert string `mapstructure:"tlscert" validate:"required_with=TLSKey"`
	TLSKey  string `mapstructure:"tlskey" validate:"required_with=TLSCert"`

	// CORSOrigins lists origins allowed to call the API from a browser, empty disables CORS.
	CORSOrigins []string `mapstructure:"corsorigins" validate:"dive,required"`
}

type DatabaseConfig struct {
	Filename string `mapstructure:"filename" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	// File is 'stdout', 'stderr', 'none' or a logfile path.
	File string `mapstructure:"file"`
}

type PosterConfig struct {
	// Dir holds the original poster images.
	Dir string `mapstructure:"dir"`
	// CacheDir holds resized posters, empty disables caching.
	CacheDir string `mapstructure:"cachedir"`
	// Quality is the JPEG quality of resized posters.
	Quality int `mapstructure:"quality" validate:"min=1,max=100"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen.address", "")
	v.SetDefault("listen.port", 8080)
	v.SetDefault("listen.tlscert", "")
	v.SetDefault("listen.tlskey", "")
	v.SetDefault("listen.corsorigins", []string{})
	v.SetDefault("database.filename", "cinetrack.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "stdout")
	v.SetDefault("posters.dir", "posters")
	v.SetDefault("posters.cachedir", "")
	v.SetDefault("posters.quality", 85)
	v.SetDefault("catalogfile", "")
	v.SetDefault("autoregister", false)
}

// Load parses command line arguments (without program name) and returns the merged configuration.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("cinetrack", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", "", "Path of YAML configuration file.")
	fs.Int("port", 8080, "Port to listen on.")
	fs.String("logfile", "stdout",
		"Path of logfile. Use 'stdout' or 'stderr' for standard output or 'none' to disable logging.")
	fs.String("loglevel", "info", "Minimum log level.")
	fs.String("db", "cinetrack.db", "Path of sqlite database.")
	fs.String("catalog", "", "YAML file with movies to import at startup.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"listen.port":       "port",
		"log.file":          "logfile",
		"log.level":         "loglevel",
		"database.filename": "db",
		"catalogfile":       "catalog",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", *configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s: %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	return nil
}
