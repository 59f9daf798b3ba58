package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "INTERVIEWIQ_"

// Audio device kinds
const (
	DeviceMicrophone = "microphone"
	DeviceFile       = "file"
)

// Config represents the complete client configuration
type Config struct {
	Backend     BackendConfig     `yaml:"backend"`
	Audio       AudioConfig       `yaml:"audio"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Status      StatusConfig      `yaml:"status"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// BackendConfig describes the InterviewIQ backend
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"`
	SessionID string `yaml:"session_id"`
	Timeout   int    `yaml:"timeout"` // seconds, 0 disables the timeout
	UseResume bool   `yaml:"use_resume"`
	// APIKey is saved on the backend at startup when set
	APIKey string `yaml:"api_key"`
}

// AudioConfig contains capture parameters
type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	FrameSize  int    `yaml:"frame_size"` // samples per capture callback
	Device     string `yaml:"device"`
	InputFile  string `yaml:"input_file"`
	Realtime   bool   `yaml:"realtime"`
	// VADThreshold is the voice probability above which a window counts as speech
	VADThreshold float64 `yaml:"vad_threshold"`
}

// PreferencesConfig locates the preference store
type PreferencesConfig struct {
	Path string `yaml:"path"`
}

// StatusConfig contains the local status server configuration
type StatusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	NoColor    bool   `yaml:"no_color"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	dir := defaultDataDir()
	return &Config{
		Backend: BackendConfig{
			BaseURL:   "http://localhost:5000",
			SessionID: "default",
		},
		Audio: AudioConfig{
			SampleRate:   16000,
			FrameSize:    4096,
			Device:       DeviceMicrophone,
			Realtime:     true,
			VADThreshold: 0.1,
		},
		Preferences: PreferencesConfig{
			Path: filepath.Join(dir, "preferences.db"),
		},
		Status: StatusConfig{
			Address: "127.0.0.1",
			Port:    9464,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     filepath.Join(dir, "interviewiq.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "interviewiq")
	}
	return ".interviewiq"
}

// LoadDotEnv loads environment files, skipping the ones that do not exist
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration file on top of the defaults, applies
// environment overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields from INTERVIEWIQ_* environment variables
func (c *Config) ApplyEnv() error {
	setString(&c.Backend.BaseURL, "BACKEND_URL")
	setString(&c.Backend.SessionID, "SESSION_ID")
	setString(&c.Backend.APIKey, "API_KEY")
	setString(&c.Audio.Device, "AUDIO_DEVICE")
	setString(&c.Audio.InputFile, "AUDIO_FILE")
	setString(&c.Preferences.Path, "PREFERENCES_PATH")
	setString(&c.Status.Address, "STATUS_ADDRESS")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Logging.Output, "LOG_OUTPUT")

	ints := map[string]*int{
		"BACKEND_TIMEOUT": &c.Backend.Timeout,
		"SAMPLE_RATE":     &c.Audio.SampleRate,
		"FRAME_SIZE":      &c.Audio.FrameSize,
		"STATUS_PORT":     &c.Status.Port,
		"LOG_MAX_SIZE_MB": &c.Logging.MaxSizeMB,
		"LOG_MAX_BACKUPS": &c.Logging.MaxBackups,
	}
	for key, dst := range ints {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	if value, ok := lookupEnv("VAD_THRESHOLD"); ok {
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %sVAD_THRESHOLD value %q: %w", EnvPrefix, value, err)
		}
		c.Audio.VADThreshold = val
	}

	bools := map[string]*bool{
		"USE_RESUME":     &c.Backend.UseResume,
		"AUDIO_REALTIME": &c.Audio.Realtime,
		"STATUS_ENABLED": &c.Status.Enabled,
		"NO_COLOR":       &c.Logging.NoColor,
	}
	for key, dst := range bools {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}

	return nil
}

func lookupEnv(key string) (string, bool) {
	raw, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	return value, value != ""
}

func setString(dst *string, key string) {
	if value, ok := lookupEnv(key); ok {
		*dst = value
	}
}

func setInt(dst *int, key string) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	val, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, key, value, err)
	}
	*dst = val
	return nil
}

func setBool(dst *bool, key string) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	val, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, key, value, err)
	}
	*dst = val
	return nil
}

// Validate performs validation of every section
func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Preferences.Validate(); err != nil {
		return fmt.Errorf("preferences config: %w", err)
	}

	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("status config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates backend configuration
func (b *BackendConfig) Validate() error {
	if b.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	u, err := url.Parse(b.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an http or https URL, got '%s'", b.BaseURL)
	}

	if b.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if b.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %d", b.Timeout)
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", a.SampleRate)
	}

	if a.FrameSize < 256 || a.FrameSize > 16384 {
		return fmt.Errorf("frame_size must be between 256 and 16384 samples, got %d", a.FrameSize)
	}

	if a.VADThreshold <= 0 || a.VADThreshold > 1 {
		return fmt.Errorf("vad_threshold must be in (0, 1], got %f", a.VADThreshold)
	}

	switch a.Device {
	case DeviceMicrophone:
	case DeviceFile:
		if a.InputFile == "" {
			return fmt.Errorf("input_file is required when device is '%s'", DeviceFile)
		}
	default:
		return fmt.Errorf("device must be '%s' or '%s', got '%s'", DeviceMicrophone, DeviceFile, a.Device)
	}

	return nil
}

// Validate validates preferences configuration
func (p *PreferencesConfig) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Validate validates status server configuration
func (s *StatusConfig) Validate() error {
	if s.Enabled {
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("status port must be between 1 and 65535, got %d", s.Port)
		}

		if s.Address == "" {
			return fmt.Errorf("status address cannot be empty when the status server is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	if l.MaxSizeMB < 1 {
		return fmt.Errorf("max_size_mb must be at least 1, got %d", l.MaxSizeMB)
	}

	if l.MaxBackups < 0 {
		return fmt.Errorf("max_backups cannot be negative, got %d", l.MaxBackups)
	}

	return nil
}

// GetTimeoutDuration returns the backend timeout as a time.Duration
func (b *BackendConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// GetAddress returns the status server listen address
func (s *StatusConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// IsFileOutput reports whether logs go to a file rather than a standard stream
func (l *LoggingConfig) IsFileOutput() bool {
	return l.Output != "" && l.Output != "stdout" && l.Output != "stderr"
}
