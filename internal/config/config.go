// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// StorageBackend selects the durable store: memory, file, sqlite or postgres.
	StorageBackend string

	// StoragePath is the file used by the file and sqlite backends.
	StoragePath string

	// DatabaseDSN holds the connection string for the postgres backend.
	DatabaseDSN string

	// PasswordHashing selects the credential verifier: plain or bcrypt.
	PasswordHashing string

	// LogLevel is passed to the zap logger.
	LogLevel string

	// SessionTTL is how long an idle HTTP session is kept.
	SessionTTL time.Duration

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// Config is the path to the config file.
	Config string

	// ShowVersion prints the build version and exits.
	ShowVersion bool
}

// fileOptions mirrors Options in the config file. Durations are strings ("30m").
type fileOptions struct {
	Addr            string `json:"addr" yaml:"addr"`
	StorageBackend  string `json:"storage_backend" yaml:"storage_backend"`
	StoragePath     string `json:"storage_path" yaml:"storage_path"`
	DatabaseDSN     string `json:"database_dsn" yaml:"database_dsn"`
	PasswordHashing string `json:"password_hashing" yaml:"password_hashing"`
	LogLevel        string `json:"log_level" yaml:"log_level"`
	SessionTTL      string `json:"session_ttl" yaml:"session_ttl"`
	SecureCookie    *bool  `json:"secure_cookie" yaml:"secure_cookie"`
	TLSCert         string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey          string `json:"tls_key" yaml:"tls_key"`
}

// Parse parses args (without the program name), then the config file, then
// environment variables read through getenv. Later sources override earlier ones.
func Parse(name string, args []string, getenv func(string) string) (*Options, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	options := &Options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.StorageBackend, "storage", "file", "storage backend: memory, file, sqlite, postgres")
	fs.StringVar(&options.StoragePath, "p", "daykeeper.json", "path of the file or sqlite store")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.PasswordHashing, "hash", "plain", "password verifier: plain or bcrypt")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.DurationVar(&options.SessionTTL, "ttl", 30*time.Minute, "idle session lifetime")
	fs.BoolVar(&options.SecureCookie, "secure", false, "mark the session cookie Secure")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.BoolVar(&options.ShowVersion, "version", false, "show build version and date")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			if err := loadFile(options.Config, options); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(options, getenv); err != nil {
		return nil, err
	}
	return options, nil
}

func loadFile(path string, options *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var fo fileOptions
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fo)
	default:
		err = json.Unmarshal(data, &fo)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	setString(&options.Addr, fo.Addr)
	setString(&options.StorageBackend, fo.StorageBackend)
	setString(&options.StoragePath, fo.StoragePath)
	setString(&options.DatabaseDSN, fo.DatabaseDSN)
	setString(&options.PasswordHashing, fo.PasswordHashing)
	setString(&options.LogLevel, fo.LogLevel)
	setString(&options.TLSCert, fo.TLSCert)
	setString(&options.TLSKey, fo.TLSKey)
	if fo.SecureCookie != nil {
		options.SecureCookie = *fo.SecureCookie
	}
	if fo.SessionTTL != "" {
		ttl, err := time.ParseDuration(fo.SessionTTL)
		if err != nil {
			return fmt.Errorf("error while parsing config file: session_ttl: %w", err)
		}
		options.SessionTTL = ttl
	}
	return nil
}

// Override flags and file values with environment variables if set.
func applyEnv(options *Options, getenv func(string) string) error {
	setString(&options.Addr, getenv("SERVER_ADDRESS"))
	setString(&options.DatabaseDSN, getenv("DATABASE_DSN"))
	setString(&options.StorageBackend, getenv("STORAGE_BACKEND"))
	setString(&options.StoragePath, getenv("STORAGE_PATH"))
	setString(&options.PasswordHashing, getenv("PASSWORD_HASHING"))
	setString(&options.LogLevel, getenv("LOG_LEVEL"))

	if v := getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		options.SessionTTL = ttl
	}
	if options.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
