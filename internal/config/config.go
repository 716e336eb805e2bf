package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LogLevel defines the minimum severity for error logs.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// Defaults applied by ApplyDefaults when the corresponding field is absent.
const (
	DefaultAddress         = ":80"
	DefaultFallbackFile    = "index.html"
	DefaultChunkSize       = 1024
	DefaultMaxRequestBytes = 1024
	DefaultMaxPathBytes    = 255
	DefaultMaxConns        = 1
)

// Config is the top-level configuration structure for the server.
type Config struct {
	Server  *ServerConfig  `json:"server,omitempty" toml:"server,omitempty"`
	Logging *LoggingConfig `json:"logging,omitempty" toml:"logging,omitempty"`
}

// ServerConfig holds the listener and asset store settings.
type ServerConfig struct {
	Address      *string `json:"address,omitempty" toml:"address,omitempty"`
	DocumentRoot string  `json:"document_root" toml:"document_root"`

	// FallbackFile is the document served for any path that does not resolve
	// to a real file. It is also the default document for "/".
	FallbackFile *string `json:"fallback_file,omitempty" toml:"fallback_file,omitempty"`

	// ChunkSize is the size of the buffer used when streaming file bodies.
	ChunkSize *int `json:"chunk_size,omitempty" toml:"chunk_size,omitempty"`

	// MaxRequestBytes bounds the single receive performed per connection.
	MaxRequestBytes *int `json:"max_request_bytes,omitempty" toml:"max_request_bytes,omitempty"`

	// MaxPathBytes bounds both the extracted request path and the sanitized
	// path accumulator.
	MaxPathBytes *int `json:"max_path_bytes,omitempty" toml:"max_path_bytes,omitempty"`

	// MaxConns selects the scheduling mode: 1 (the default) handles
	// connections serially on the accept loop; greater than 1 handles each
	// connection on its own goroutine, with at most MaxConns connections
	// open at once.
	MaxConns *int `json:"max_conns,omitempty" toml:"max_conns,omitempty"`

	// MimeTypes optionally extends the built-in extension table.
	// Keys are extensions without the leading dot, e.g. "wasm".
	MimeTypes map[string]string `json:"mime_types,omitempty" toml:"mime_types,omitempty"`
}

// LoggingConfig holds logging configurations.
type LoggingConfig struct {
	LogLevel  LogLevel         `json:"log_level,omitempty" toml:"log_level,omitempty"`
	AccessLog *AccessLogConfig `json:"access_log,omitempty" toml:"access_log,omitempty"`
	ErrorLog  *ErrorLogConfig  `json:"error_log,omitempty" toml:"error_log,omitempty"`
}

// AccessLogConfig configures access logging.
type AccessLogConfig struct {
	Enabled *bool  `json:"enabled,omitempty" toml:"enabled,omitempty"`
	Target  string `json:"target,omitempty" toml:"target,omitempty"`
	Format  string `json:"format,omitempty" toml:"format,omitempty"`
}

// ErrorLogConfig configures error logging.
type ErrorLogConfig struct {
	Target string `json:"target,omitempty" toml:"target,omitempty"`
}

// ConfigError describes a failure to load, parse, or validate configuration.
type ConfigError struct {
	FilePath string
	Message  string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("config %s: %s: %v", e.FilePath, e.Message, e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Message, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsFilePath reports whether a log target names a file rather than a
// standard stream.
func IsFilePath(target string) bool {
	return target != "stdout" && target != "stderr"
}

// LoadConfig reads the configuration file at path, parses it as JSON or TOML
// (by extension, falling back to content sniffing for unknown extensions),
// applies defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{FilePath: path, Message: "failed to read configuration file", Err: err}
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{FilePath: path, Message: "failed to parse JSON configuration", Err: err}
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{FilePath: path, Message: "failed to parse TOML configuration", Err: err}
		}
	default:
		// Unknown extension: try JSON first, then TOML.
		jsonErr := json.Unmarshal(data, cfg)
		if jsonErr != nil {
			if tomlErr := toml.Unmarshal(data, cfg); tomlErr != nil {
				return nil, &ConfigError{
					FilePath: path,
					Message:  "failed to parse configuration as JSON or TOML",
					Err:      fmt.Errorf("json: %v; toml: %v", jsonErr, tomlErr),
				}
			}
		}
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in every absent optional field of cfg in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Server == nil {
		cfg.Server = &ServerConfig{}
	}
	s := cfg.Server
	if s.Address == nil {
		s.Address = strPtr(DefaultAddress)
	}
	if s.FallbackFile == nil {
		s.FallbackFile = strPtr(DefaultFallbackFile)
	}
	if s.ChunkSize == nil {
		s.ChunkSize = intPtr(DefaultChunkSize)
	}
	if s.MaxRequestBytes == nil {
		s.MaxRequestBytes = intPtr(DefaultMaxRequestBytes)
	}
	if s.MaxPathBytes == nil {
		s.MaxPathBytes = intPtr(DefaultMaxPathBytes)
	}
	if s.MaxConns == nil {
		s.MaxConns = intPtr(DefaultMaxConns)
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	lg := cfg.Logging
	if lg.LogLevel == "" {
		lg.LogLevel = LogLevelInfo
	}
	if lg.AccessLog == nil {
		lg.AccessLog = &AccessLogConfig{}
	}
	if lg.AccessLog.Enabled == nil {
		lg.AccessLog.Enabled = boolPtr(true)
	}
	if lg.AccessLog.Target == "" {
		lg.AccessLog.Target = "stdout"
	}
	if lg.AccessLog.Format == "" {
		lg.AccessLog.Format = "json"
	}
	if lg.ErrorLog == nil {
		lg.ErrorLog = &ErrorLogConfig{}
	}
	if lg.ErrorLog.Target == "" {
		lg.ErrorLog.Target = "stderr"
	}
}

// Validate checks a defaulted configuration for values the server cannot run
// with. It assumes ApplyDefaults has run.
func Validate(cfg *Config) error {
	s := cfg.Server
	if s == nil {
		return &ConfigError{Message: "server section is missing", Err: fmt.Errorf("nil ServerConfig")}
	}
	if s.DocumentRoot == "" {
		return &ConfigError{Message: "server.document_root must be set", Err: fmt.Errorf("empty document root")}
	}
	if *s.Address == "" {
		return &ConfigError{Message: "server.address must not be empty", Err: fmt.Errorf("empty address")}
	}
	if *s.ChunkSize <= 0 {
		return &ConfigError{Message: "server.chunk_size must be positive", Err: fmt.Errorf("got %d", *s.ChunkSize)}
	}
	if *s.MaxRequestBytes <= 0 {
		return &ConfigError{Message: "server.max_request_bytes must be positive", Err: fmt.Errorf("got %d", *s.MaxRequestBytes)}
	}
	if *s.MaxPathBytes <= 0 {
		return &ConfigError{Message: "server.max_path_bytes must be positive", Err: fmt.Errorf("got %d", *s.MaxPathBytes)}
	}
	if *s.MaxConns <= 0 {
		return &ConfigError{Message: "server.max_conns must be positive", Err: fmt.Errorf("got %d", *s.MaxConns)}
	}
	if strings.Contains(*s.FallbackFile, "/") || *s.FallbackFile == "" {
		return &ConfigError{Message: "server.fallback_file must be a bare file name", Err: fmt.Errorf("got %q", *s.FallbackFile)}
	}
	for ext, mt := range s.MimeTypes {
		if ext == "" || strings.HasPrefix(ext, ".") {
			return &ConfigError{Message: "server.mime_types keys must be extensions without the leading dot", Err: fmt.Errorf("got %q", ext)}
		}
		if mt == "" {
			return &ConfigError{Message: "server.mime_types values must not be empty", Err: fmt.Errorf("extension %q", ext)}
		}
	}

	switch cfg.Logging.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return &ConfigError{Message: "logging.log_level is invalid", Err: fmt.Errorf("got %q", cfg.Logging.LogLevel)}
	}
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
