package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Settings is the runtime generation configuration: credentials and defaults
// mutable through the settings workflow and persisted as a JSON document.
// It is constructed explicitly and injected into the gateway and services;
// Reload replaces the in-memory state from disk on demand.
type Settings struct {
	mu   sync.RWMutex
	path string
	data settingsData
}

type settingsData struct {
	APIKey          string     `json:"api_key"`
	Model           string     `json:"model"`
	Temperature     float64    `json:"temperature"`
	MaxOutputTokens int        `json:"max_output_tokens"`
	TimeoutSeconds  int        `json:"timeout_seconds"`
	MockMode        bool       `json:"mock_mode"`
	LastError       *LastError `json:"last_error"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// LastError records the most recent gateway failure for the dashboard.
type LastError struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SettingsUpdate carries a partial settings change; nil fields are untouched.
type SettingsUpdate struct {
	APIKey          *string  `json:"api_key"`
	Model           *string  `json:"model"`
	Temperature     *float64 `json:"temperature"`
	MaxOutputTokens *int     `json:"max_output_tokens"`
	TimeoutSeconds  *int     `json:"timeout_seconds"`
	MockMode        *bool    `json:"mock_mode"`
}

// Snapshot is a point-in-time copy of the values a single gateway call needs.
// A call reads its snapshot once and uses it for the whole retry sequence,
// so a concurrent settings write cannot change credentials mid-flight.
// Out-of-range values are clamped defensively here since validation at write
// time is optional.
type Snapshot struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	MockMode        bool
}

func defaultSettingsData() settingsData {
	now := time.Now().Format(time.DateTime)
	return settingsData{
		Model:           "gpt-4o-mini",
		Temperature:     0.7,
		MaxOutputTokens: 800,
		TimeoutSeconds:  30,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewSettings creates a settings store backed by path. Call Load before use.
func NewSettings(path string) *Settings {
	return &Settings{path: path, data: defaultSettingsData()}
}

// Load reads the settings document from disk, creating it with defaults when
// absent.
func (s *Settings) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.data = defaultSettingsData()
		return s.persistLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", s.path, err)
	}

	data := defaultSettingsData()
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid settings file %s: %w", s.path, err)
	}

	s.data = data
	return nil
}

// Reload is an explicit re-read of the on-disk document.
func (s *Settings) Reload() error {
	return s.Load()
}

// Save writes the current settings to disk.
func (s *Settings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Settings) persistLocked() error {
	s.data.UpdatedAt = time.Now().Format(time.DateTime)

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}

	return nil
}

// Apply merges a partial update into the in-memory settings. The caller is
// expected to Validate and Save afterwards.
func (s *Settings) Apply(update SettingsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.APIKey != nil {
		s.data.APIKey = *update.APIKey
	}
	if update.Model != nil {
		s.data.Model = *update.Model
	}
	if update.Temperature != nil {
		s.data.Temperature = *update.Temperature
	}
	if update.MaxOutputTokens != nil {
		s.data.MaxOutputTokens = *update.MaxOutputTokens
	}
	if update.TimeoutSeconds != nil {
		s.data.TimeoutSeconds = *update.TimeoutSeconds
	}
	if update.MockMode != nil {
		s.data.MockMode = *update.MockMode
	}
}

// Snapshot returns a clamped copy of the values a gateway call depends on.
func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		APIKey:          s.data.APIKey,
		Model:           s.data.Model,
		Temperature:     clampFloat(s.data.Temperature, 0, 2),
		MaxOutputTokens: clampInt(s.data.MaxOutputTokens, 1, 4000),
		Timeout:         time.Duration(clampInt(s.data.TimeoutSeconds, 5, 120)) * time.Second,
		MockMode:        s.data.MockMode,
	}
}

// HasAPIKey reports whether a key is configured.
func (s *Settings) HasAPIKey() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.APIKey != ""
}

// MaskedAPIKey returns the key in a loggable form.
func (s *Settings) MaskedAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data.APIKey == "" {
		return "Not configured"
	}
	return maskKey(s.data.APIKey)
}

// LastError returns the most recent recorded gateway failure, if any.
func (s *Settings) LastError() *LastError {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data.LastError == nil {
		return nil
	}
	le := *s.data.LastError
	return &le
}

// RecordError stores a gateway failure for dashboard display. Persistence is
// best-effort: a write failure is logged, never propagated.
func (s *Settings) RecordError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.LastError = &LastError{
		Message:   message,
		Timestamp: time.Now().Format(time.DateTime),
	}

	if err := s.persistLocked(); err != nil {
		fiberlog.Warnf("Failed to persist last error: %v", err)
	}
}

// Validate checks every field against its declared range and returns a
// field->message map, empty when valid.
func (s *Settings) Validate() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errors := make(map[string]string)

	if s.data.APIKey == "" {
		errors["api_key"] = "OpenAI API key is required"
	} else if len(s.data.APIKey) < 20 {
		errors["api_key"] = "OpenAI API key appears invalid (too short)"
	}

	if s.data.Model == "" {
		errors["model"] = "Model must be specified"
	}

	if s.data.Temperature < 0 || s.data.Temperature > 2 {
		errors["temperature"] = "Temperature must be between 0 and 2"
	}

	if s.data.MaxOutputTokens < 1 || s.data.MaxOutputTokens > 4000 {
		errors["max_output_tokens"] = "Max output tokens must be between 1 and 4000"
	}

	if s.data.TimeoutSeconds < 5 || s.data.TimeoutSeconds > 120 {
		errors["timeout_seconds"] = "Timeout must be between 5 and 120 seconds"
	}

	return errors
}

// View returns the settings for the admin API, with the key masked.
func (s *Settings) View() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"api_key":           maskKey(s.data.APIKey),
		"model":             s.data.Model,
		"temperature":       s.data.Temperature,
		"max_output_tokens": s.data.MaxOutputTokens,
		"timeout_seconds":   s.data.TimeoutSeconds,
		"mock_mode":         s.data.MockMode,
		"last_error":        s.data.LastError,
		"updated_at":        s.data.UpdatedAt,
	}
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 14 {
		return key[:1] + "..."
	}
	return key[:10] + "..." + key[len(key)-4:]
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
