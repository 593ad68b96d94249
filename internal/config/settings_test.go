package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedSettings(t *testing.T) *Settings {
	t.Helper()
	s := NewSettings(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, s.Load())
	return s
}

func TestLoadCreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s := NewSettings(path)

	require.NoError(t, s.Load())

	_, err := os.Stat(path)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "gpt-4o-mini", snap.Model)
	assert.Equal(t, 0.7, snap.Temperature)
	assert.Equal(t, 800, snap.MaxOutputTokens)
	assert.Equal(t, 30*time.Second, snap.Timeout)
	assert.False(t, snap.MockMode)
}

func TestApplyAndPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewSettings(path)
	require.NoError(t, s.Load())

	key := "sk-live-key-abcdefghij1234"
	model := "gpt-4o"
	temp := 1.2
	s.Apply(SettingsUpdate{APIKey: &key, Model: &model, Temperature: &temp})
	require.NoError(t, s.Save())

	reloaded := NewSettings(path)
	require.NoError(t, reloaded.Load())

	snap := reloaded.Snapshot()
	assert.Equal(t, key, snap.APIKey)
	assert.Equal(t, "gpt-4o", snap.Model)
	assert.Equal(t, 1.2, snap.Temperature)
}

func TestApplyLeavesNilFieldsUntouched(t *testing.T) {
	s := newLoadedSettings(t)

	temp := 1.5
	s.Apply(SettingsUpdate{Temperature: &temp})

	snap := s.Snapshot()
	assert.Equal(t, 1.5, snap.Temperature)
	assert.Equal(t, "gpt-4o-mini", snap.Model)
}

func TestSnapshotClampsOutOfRangeValues(t *testing.T) {
	s := newLoadedSettings(t)

	temp := 9.0
	tokens := 99999
	timeout := 1
	s.Apply(SettingsUpdate{Temperature: &temp, MaxOutputTokens: &tokens, TimeoutSeconds: &timeout})

	snap := s.Snapshot()
	assert.Equal(t, 2.0, snap.Temperature)
	assert.Equal(t, 4000, snap.MaxOutputTokens)
	assert.Equal(t, 5*time.Second, snap.Timeout)
}

func TestValidateRanges(t *testing.T) {
	s := newLoadedSettings(t)

	// Defaults have no key: exactly one violation.
	errs := s.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs, "api_key")

	short := "sk-short"
	temp := 3.0
	tokens := 0
	timeout := 200
	model := ""
	s.Apply(SettingsUpdate{APIKey: &short, Temperature: &temp, MaxOutputTokens: &tokens, TimeoutSeconds: &timeout, Model: &model})

	errs = s.Validate()
	assert.Len(t, errs, 5)
	assert.Equal(t, "OpenAI API key appears invalid (too short)", errs["api_key"])
	assert.Equal(t, "Temperature must be between 0 and 2", errs["temperature"])
	assert.Equal(t, "Max output tokens must be between 1 and 4000", errs["max_output_tokens"])
	assert.Equal(t, "Timeout must be between 5 and 120 seconds", errs["timeout_seconds"])
	assert.Equal(t, "Model must be specified", errs["model"])
}

func TestMaskedAPIKey(t *testing.T) {
	s := newLoadedSettings(t)
	assert.Equal(t, "Not configured", s.MaskedAPIKey())

	key := "sk-proj-abcdefghijklmnop"
	s.Apply(SettingsUpdate{APIKey: &key})
	masked := s.MaskedAPIKey()

	assert.Equal(t, "sk-proj-ab...mnop", masked)
	assert.NotContains(t, masked, "cdefghijkl")
}

func TestViewMasksKey(t *testing.T) {
	s := newLoadedSettings(t)
	key := "sk-proj-abcdefghijklmnop"
	s.Apply(SettingsUpdate{APIKey: &key})

	view := s.View()

	assert.Equal(t, "sk-proj-ab...mnop", view["api_key"])
	assert.Equal(t, "gpt-4o-mini", view["model"])
}

func TestRecordErrorPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewSettings(path)
	require.NoError(t, s.Load())

	s.RecordError("upstream exploded")

	reloaded := NewSettings(path)
	require.NoError(t, reloaded.Load())

	le := reloaded.LastError()
	require.NotNil(t, le)
	assert.Equal(t, "upstream exploded", le.Message)
	assert.NotEmpty(t, le.Timestamp)
}
