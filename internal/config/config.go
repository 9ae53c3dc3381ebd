// Package config resolves and persists platform configuration from three
// layered sources: explicit Set calls, the per-user config file, and
// environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Key names one configuration value.
type Key string

const (
	KeyOpenAIAPIKey     Key = "openai_api_key"
	KeyAnthropicAPIKey  Key = "anthropic_api_key"
	KeyGroqAPIKey       Key = "groq_api_key"
	KeyTelegramBotToken Key = "telegram_bot_token"
	KeyAIProvider       Key = "ai_provider"
	KeyAIModel          Key = "ai_model"
	KeyWebHost          Key = "web_host"
	KeyWebPort          Key = "web_port"
)

// Keys is the fixed set of recognized configuration keys.
var Keys = []Key{
	KeyOpenAIAPIKey,
	KeyAnthropicAPIKey,
	KeyGroqAPIKey,
	KeyTelegramBotToken,
	KeyAIProvider,
	KeyAIModel,
	KeyWebHost,
	KeyWebPort,
}

// EnvName returns the environment variable that backs a key,
// e.g. openai_api_key -> OPENAI_API_KEY.
func EnvName(key Key) string {
	return strings.ToUpper(string(key))
}

// IsKnownKey reports whether key belongs to the enumerated key set.
func IsKnownKey(key Key) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// PersistenceError indicates the config file could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("can't persist configuration to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationError indicates required configuration keys are missing.
type ConfigurationError struct {
	Missing []Key
}

func (e *ConfigurationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = string(k)
	}
	return "missing required configuration: " + strings.Join(names, ", ")
}

// Store is the layered configuration resolver. Lookup precedence is
// explicit Set value > persisted file value > environment variable.
// It is read-mostly after construction; Set and Save take the lock.
type Store struct {
	mu        sync.RWMutex
	path      string
	overrides map[Key]string
	file      map[Key]string
	env       func(string) string
}

// Option configures a Store.
type Option func(*Store)

// WithPath overrides the config file location.
func WithPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithEnvFunc overrides the environment lookup, so resolution can be
// tested without touching the real process environment.
func WithEnvFunc(fn func(string) string) Option {
	return func(s *Store) { s.env = fn }
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("can't locate home directory: %w", err)
	}
	return filepath.Join(home, ".aihr", "config.json"), nil
}

// New builds a Store by loading the persisted file (absent file means
// an empty file layer) under the environment layer. Only the real
// environment path loads a .env file, best effort.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		overrides: make(map[Key]string),
		file:      make(map[Key]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.path == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		s.path = path
	}
	if s.env == nil {
		_ = godotenv.Load()
		s.env = os.Getenv
	}

	if err := s.loadFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromMap builds a Store holding exactly the given mapping, with no file
// or environment layer behind it. No validation beyond string coercion.
func FromMap(m map[Key]string) *Store {
	s := &Store{
		overrides: make(map[Key]string, len(m)),
		file:      make(map[Key]string),
		env:       func(string) string { return "" },
	}
	for k, v := range m {
		s.overrides[k] = v
	}
	return s
}

func (s *Store) loadFile() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("can't read config file %s: %w", s.path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("can't parse config file %s: %w", s.path, err)
	}
	for k, v := range raw {
		s.file[Key(k)] = coerce(v)
	}
	return nil
}

func coerce(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Get resolves key following the layered precedence. An empty string is
// treated as unset at every layer, so an empty file entry does not shadow
// an environment value. It never fails: when nothing is set anywhere it
// returns def.
func (s *Store) Get(key Key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v := s.overrides[key]; v != "" {
		return v
	}
	if v := s.file[key]; v != "" {
		return v
	}
	if v := s.env(EnvName(key)); v != "" {
		return v
	}
	return def
}

// GetInt resolves key as an integer, falling back to def when the key is
// absent or not a number.
func (s *Store) GetInt(key Key, def int) int {
	v := s.Get(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Set overwrites the in-memory value for key. Storage is untouched
// until Save is called.
func (s *Store) Set(key Key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[key] = value
}

// Save serializes the in-memory configuration (file layer merged under
// explicit overrides, never environment values) to the config file,
// overwriting any existing content. The write goes to a temp file in the
// same directory and is renamed into place so a crash can't leave a
// partial file behind.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.mergedLocked()
	out := make(map[string]string, len(merged))
	for k, v := range merged {
		out[string(k)] = v
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: s.path, Err: err}
	}

	s.file = merged
	s.overrides = make(map[Key]string)
	return nil
}

func (s *Store) mergedLocked() map[Key]string {
	merged := make(map[Key]string, len(s.file)+len(s.overrides))
	for k, v := range s.file {
		merged[k] = v
	}
	for k, v := range s.overrides {
		merged[k] = v
	}
	return merged
}

// ToMap returns the in-memory configuration (file layer merged under
// overrides) as a plain mapping. Round-trips losslessly with FromMap.
func (s *Store) ToMap() map[Key]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mergedLocked()
}

// Validate reports whether every required key resolves to a non-empty
// value. Adapters use it to fail fast before constructing a processor.
func (s *Store) Validate(required ...Key) bool {
	for _, k := range required {
		if s.Get(k, "") == "" {
			return false
		}
	}
	return true
}

// Require returns a ConfigurationError listing every required key that
// does not resolve to a non-empty value.
func (s *Store) Require(required ...Key) error {
	var missing []Key
	for _, k := range required {
		if s.Get(k, "") == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// String renders the resolved configuration with credentials redacted.
func (s *Store) String() string {
	var b strings.Builder
	keys := make([]Key, len(Keys))
	copy(keys, Keys)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	b.WriteString("Config{")
	first := true
	for _, k := range keys {
		v := s.Get(k, "")
		if v == "" {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		if isSensitive(k) {
			v = "***"
		}
		fmt.Fprintf(&b, "%s=%s", k, v)
	}
	b.WriteString("}")
	return b.String()
}

func isSensitive(key Key) bool {
	k := string(key)
	return strings.Contains(k, "api_key") || strings.Contains(k, "token")
}
