package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func writeConfigFile(t *testing.T, dir string, values map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data, err := json.Marshal(values)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestPrecedenceExplicitOverFileOverEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, map[string]string{
		"openai_api_key": "from-file",
	})
	env := func(name string) string {
		if name == "OPENAI_API_KEY" {
			return "from-env"
		}
		return ""
	}

	store, err := New(WithPath(path), WithEnvFunc(env))
	require.NoError(t, err)

	// Explicit value wins over file and env.
	store.Set(KeyOpenAIAPIKey, "explicit")
	assert.Equal(t, "explicit", store.Get(KeyOpenAIAPIKey, ""))

	// Without an explicit value, the file wins over env.
	store2, err := New(WithPath(path), WithEnvFunc(env))
	require.NoError(t, err)
	assert.Equal(t, "from-file", store2.Get(KeyOpenAIAPIKey, ""))

	// Without file or explicit value, the environment wins.
	store3, err := New(WithPath(filepath.Join(dir, "absent.json")), WithEnvFunc(env))
	require.NoError(t, err)
	assert.Equal(t, "from-env", store3.Get(KeyOpenAIAPIKey, ""))

	// Nothing set anywhere yields the default, never an error.
	assert.Equal(t, "fallback", store3.Get(KeyAnthropicAPIKey, "fallback"))
}

func TestRoundTrip(t *testing.T) {
	d := map[Key]string{
		KeyOpenAIAPIKey:     "sk-test",
		KeyTelegramBotToken: "123:abc",
		KeyWebPort:          "9000",
	}

	got := FromMap(d).ToMap()
	assert.Equal(t, d, got)
}

func TestSaveThenReloadReproducesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	store, err := New(WithPath(path), WithEnvFunc(noEnv))
	require.NoError(t, err)
	store.Set(KeyOpenAIAPIKey, "sk-live")
	store.Set(KeyWebHost, "0.0.0.0")
	store.Set(KeyWebPort, "8080")
	require.NoError(t, store.Save())

	reloaded, err := New(WithPath(path), WithEnvFunc(noEnv))
	require.NoError(t, err)
	assert.Equal(t, "sk-live", reloaded.Get(KeyOpenAIAPIKey, ""))
	assert.Equal(t, "0.0.0.0", reloaded.Get(KeyWebHost, ""))
	assert.Equal(t, 8080, reloaded.GetInt(KeyWebPort, 0))

	// Saving again and reloading keeps the same resolved values.
	require.NoError(t, reloaded.Save())
	again, err := New(WithPath(path), WithEnvFunc(noEnv))
	require.NoError(t, err)
	assert.Equal(t, reloaded.ToMap(), again.ToMap())
}

func TestSaveDoesNotPersistEnvironmentValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	env := func(name string) string {
		if name == "GROQ_API_KEY" {
			return "gsk-env"
		}
		return ""
	}

	store, err := New(WithPath(path), WithEnvFunc(env))
	require.NoError(t, err)
	assert.Equal(t, "gsk-env", store.Get(KeyGroqAPIKey, ""))

	store.Set(KeyWebHost, "localhost")
	require.NoError(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted map[string]string
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.NotContains(t, persisted, "groq_api_key")
	assert.Equal(t, "localhost", persisted["web_host"])
}

func TestSaveFailsWithPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// Parent "directory" is a regular file, so MkdirAll must fail.
	store, err := New(WithPath(filepath.Join(blocker, "config.json")), WithEnvFunc(noEnv))
	require.NoError(t, err)
	store.Set(KeyOpenAIAPIKey, "sk")

	err = store.Save()
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "config.json")
}

func TestValidateAndRequire(t *testing.T) {
	store := FromMap(map[Key]string{KeyOpenAIAPIKey: "sk-test"})

	assert.True(t, store.Validate(KeyOpenAIAPIKey))
	assert.False(t, store.Validate(KeyOpenAIAPIKey, KeyTelegramBotToken))
	assert.NoError(t, store.Require(KeyOpenAIAPIKey))

	err := store.Require(KeyTelegramBotToken, KeyGroqAPIKey)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []Key{KeyTelegramBotToken, KeyGroqAPIKey}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "telegram_bot_token")
}

func TestEmptyFileValueDoesNotShadowEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, map[string]string{
		"openai_api_key": "",
	})
	env := func(name string) string {
		if name == "OPENAI_API_KEY" {
			return "sk-env"
		}
		return ""
	}

	store, err := New(WithPath(path), WithEnvFunc(env))
	require.NoError(t, err)

	assert.Equal(t, "sk-env", store.Get(KeyOpenAIAPIKey, ""))
	assert.True(t, store.Validate(KeyOpenAIAPIKey))

	// An empty explicit value falls through the same way.
	store.Set(KeyGroqAPIKey, "")
	assert.Equal(t, "fallback", store.Get(KeyGroqAPIKey, "fallback"))
}

func TestGetIntFallsBack(t *testing.T) {
	store := FromMap(map[Key]string{KeyWebPort: "not-a-number"})
	assert.Equal(t, 7860, store.GetInt(KeyWebPort, 7860))

	store.Set(KeyWebPort, "9001")
	assert.Equal(t, 9001, store.GetInt(KeyWebPort, 7860))
}

func TestFileValueCoercion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"web_port": 8080, "web_host": "::1"}`), 0o600))

	store, err := New(WithPath(path), WithEnvFunc(noEnv))
	require.NoError(t, err)
	assert.Equal(t, 8080, store.GetInt(KeyWebPort, 0))
	assert.Equal(t, "::1", store.Get(KeyWebHost, ""))
}

func TestCorruptFileFailsConstruction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(WithPath(path), WithEnvFunc(noEnv))
	assert.Error(t, err)
}

func TestStringRedactsCredentials(t *testing.T) {
	store := FromMap(map[Key]string{
		KeyOpenAIAPIKey: "sk-secret",
		KeyWebHost:      "localhost",
	})

	s := store.String()
	assert.NotContains(t, s, "sk-secret")
	assert.Contains(t, s, "***")
	assert.Contains(t, s, "web_host=localhost")
}

func TestEnvNameConvention(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", EnvName(KeyOpenAIAPIKey))
	assert.Equal(t, "TELEGRAM_BOT_TOKEN", EnvName(KeyTelegramBotToken))
	assert.Equal(t, "AI_PROVIDER", EnvName(KeyAIProvider))
}

func TestUnknownKeyDetection(t *testing.T) {
	assert.True(t, IsKnownKey(KeyGroqAPIKey))
	assert.False(t, IsKnownKey(Key("nonexistent")))
}

func TestConfigurationErrorIsError(t *testing.T) {
	err := error(&ConfigurationError{Missing: []Key{KeyOpenAIAPIKey}})
	assert.True(t, errors.As(err, new(*ConfigurationError)))
}
