package config

import (
	"os"
	"strings"
	"testing"
)

// writeTempFile creates a temporary file with the given content and extension.
// It returns the path to the file and a cleanup function to remove the file.
func writeTempFile(t *testing.T, content string, ext string) (path string, cleanup func()) {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "test-config-*"+ext)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return tmpFile.Name(), func() {
		os.Remove(tmpFile.Name())
	}
}

// checkErrorContains checks if the error is not nil and its message contains the expected substring.
func checkErrorContains(t *testing.T, err error, expectedSubstring string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected an error containing %q, but got nil", expectedSubstring)
	}
	if !strings.Contains(err.Error(), expectedSubstring) {
		t.Fatalf("Expected error message to contain %q, but got: %v", expectedSubstring, err)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	checkErrorContains(t, err, "configuration file path cannot be empty")
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("non_existent_file.json")
	checkErrorContains(t, err, "failed to read configuration file")
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{"server": {"address": ":8080", "document_root": "/srv/www"}}`
	path, cleanup := writeTempFile(t, content, ".json")
	defer cleanup()

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed for valid JSON: %v", err)
	}
	if cfg.Server == nil || cfg.Server.Address == nil || *cfg.Server.Address != ":8080" {
		t.Errorf("Expected server address to be :8080, got %v", cfg.Server)
	}
	if cfg.Server.DocumentRoot != "/srv/www" {
		t.Errorf("Expected document root /srv/www, got %q", cfg.Server.DocumentRoot)
	}
}

func TestLoadConfig_ValidTOML(t *testing.T) {
	content := `
[server]
address = ":8081"
document_root = "/srv/www"
`
	path, cleanup := writeTempFile(t, content, ".toml")
	defer cleanup()

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed for valid TOML: %v", err)
	}
	if cfg.Server == nil || cfg.Server.Address == nil || *cfg.Server.Address != ":8081" {
		t.Errorf("Expected server address to be :8081, got %v", cfg.Server)
	}
}

func TestLoadConfig_AutoDetectJSON(t *testing.T) {
	content := `{"server": {"document_root": "/srv/www"}, "logging": {"log_level": "DEBUG"}}`
	path, cleanup := writeTempFile(t, content, ".conf") // Unknown extension
	defer cleanup()

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed for auto-detect JSON: %v", err)
	}
	if cfg.Logging == nil || cfg.Logging.LogLevel != LogLevelDebug {
		t.Errorf("Expected log level to be DEBUG, got %v", cfg.Logging)
	}
}

func TestLoadConfig_AutoDetectTOML(t *testing.T) {
	content := `
[server]
document_root = "/srv/www"

[logging]
log_level = "WARNING"
`
	path, cleanup := writeTempFile(t, content, ".conf")
	defer cleanup()

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed for auto-detect TOML: %v", err)
	}
	if cfg.Logging == nil || cfg.Logging.LogLevel != LogLevelWarning {
		t.Errorf("Expected log level to be WARNING, got %v", cfg.Logging)
	}
}

func TestLoadConfig_Garbage(t *testing.T) {
	content := `not json or toml =`
	path, cleanup := writeTempFile(t, content, ".conf")
	defer cleanup()

	_, err := LoadConfig(path)
	checkErrorContains(t, err, "failed to parse configuration as JSON or TOML")
}

func TestLoadConfig_MissingDocumentRoot(t *testing.T) {
	content := `{"server": {"address": ":8080"}}`
	path, cleanup := writeTempFile(t, content, ".json")
	defer cleanup()

	_, err := LoadConfig(path)
	checkErrorContains(t, err, "document_root must be set")
}

func TestApplyDefaults_FillsAbsentFields(t *testing.T) {
	cfg := &Config{Server: &ServerConfig{DocumentRoot: "/srv/www"}}
	ApplyDefaults(cfg)

	if *cfg.Server.Address != DefaultAddress {
		t.Errorf("Expected default address %q, got %q", DefaultAddress, *cfg.Server.Address)
	}
	if *cfg.Server.FallbackFile != DefaultFallbackFile {
		t.Errorf("Expected default fallback file %q, got %q", DefaultFallbackFile, *cfg.Server.FallbackFile)
	}
	if *cfg.Server.ChunkSize != DefaultChunkSize {
		t.Errorf("Expected default chunk size %d, got %d", DefaultChunkSize, *cfg.Server.ChunkSize)
	}
	if *cfg.Server.MaxRequestBytes != DefaultMaxRequestBytes {
		t.Errorf("Expected default max request bytes %d, got %d", DefaultMaxRequestBytes, *cfg.Server.MaxRequestBytes)
	}
	if *cfg.Server.MaxPathBytes != DefaultMaxPathBytes {
		t.Errorf("Expected default max path bytes %d, got %d", DefaultMaxPathBytes, *cfg.Server.MaxPathBytes)
	}
	if *cfg.Server.MaxConns != DefaultMaxConns {
		t.Errorf("Expected default max conns %d, got %d", DefaultMaxConns, *cfg.Server.MaxConns)
	}
	if cfg.Logging == nil || cfg.Logging.LogLevel != LogLevelInfo {
		t.Errorf("Expected default log level INFO, got %v", cfg.Logging)
	}
	if cfg.Logging.AccessLog == nil || !*cfg.Logging.AccessLog.Enabled || cfg.Logging.AccessLog.Target != "stdout" {
		t.Errorf("Expected access log enabled on stdout, got %v", cfg.Logging.AccessLog)
	}
	if cfg.Logging.ErrorLog == nil || cfg.Logging.ErrorLog.Target != "stderr" {
		t.Errorf("Expected error log on stderr, got %v", cfg.Logging.ErrorLog)
	}
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	chunk := 4096
	cfg := &Config{Server: &ServerConfig{DocumentRoot: "/srv/www", ChunkSize: &chunk}}
	ApplyDefaults(cfg)
	if *cfg.Server.ChunkSize != 4096 {
		t.Errorf("Expected explicit chunk size 4096 to survive, got %d", *cfg.Server.ChunkSize)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "zero chunk size",
			mutate:  func(cfg *Config) { *cfg.Server.ChunkSize = 0 },
			wantErr: "chunk_size must be positive",
		},
		{
			name:    "negative max request bytes",
			mutate:  func(cfg *Config) { *cfg.Server.MaxRequestBytes = -1 },
			wantErr: "max_request_bytes must be positive",
		},
		{
			name:    "zero max path bytes",
			mutate:  func(cfg *Config) { *cfg.Server.MaxPathBytes = 0 },
			wantErr: "max_path_bytes must be positive",
		},
		{
			name:    "zero max conns",
			mutate:  func(cfg *Config) { *cfg.Server.MaxConns = 0 },
			wantErr: "max_conns must be positive",
		},
		{
			name:    "fallback file with separator",
			mutate:  func(cfg *Config) { *cfg.Server.FallbackFile = "sub/index.html" },
			wantErr: "fallback_file must be a bare file name",
		},
		{
			name:    "empty address",
			mutate:  func(cfg *Config) { *cfg.Server.Address = "" },
			wantErr: "address must not be empty",
		},
		{
			name:    "mime type key with dot",
			mutate:  func(cfg *Config) { cfg.Server.MimeTypes = map[string]string{".wasm": "application/wasm"} },
			wantErr: "without the leading dot",
		},
		{
			name:    "empty mime type value",
			mutate:  func(cfg *Config) { cfg.Server.MimeTypes = map[string]string{"wasm": ""} },
			wantErr: "must not be empty",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Logging.LogLevel = "LOUD" },
			wantErr: "log_level is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: &ServerConfig{DocumentRoot: "/srv/www"}}
			ApplyDefaults(cfg)
			tt.mutate(cfg)
			checkErrorContains(t, Validate(cfg), tt.wantErr)
		})
	}
}

func TestIsFilePath(t *testing.T) {
	if IsFilePath("stdout") || IsFilePath("stderr") {
		t.Error("stdout/stderr must not be treated as file paths")
	}
	if !IsFilePath("/var/log/server.log") {
		t.Error("expected /var/log/server.log to be a file path")
	}
}
