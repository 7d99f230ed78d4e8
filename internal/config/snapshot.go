package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable, versioned view of the configuration. Callers
// must not modify the Config it carries.
type Snapshot struct {
	Version uint64
	Config  Config
}

// Holder publishes configuration snapshots. Readers call Current once per
// request and use that snapshot throughout; writers swap in a new snapshot
// atomically, so an update takes effect on the next request.
type Holder struct {
	mu  sync.Mutex // serializes writers
	cur atomic.Pointer[Snapshot]
}

// NewHolder returns a Holder whose first snapshot (version 1) is cfg.
func NewHolder(cfg Config) *Holder {
	h := &Holder{}
	h.cur.Store(&Snapshot{Version: 1, Config: cfg.clone()})
	return h
}

// Current returns the latest snapshot.
func (h *Holder) Current() *Snapshot {
	return h.cur.Load()
}

// Update copies the current config, applies mutate, validates the result,
// runs commit (if non-nil) and finally publishes the new snapshot. If any
// step fails the current snapshot is left untouched.
func (h *Holder) Update(mutate func(*Config) error, commit func(*Config) error) (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.cur.Load()
	next := prev.Config.clone()

	if err := mutate(&next); err != nil {
		return nil, err
	}
	if err := Validate(&next); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(&next); err != nil {
			return nil, err
		}
	}

	snap := &Snapshot{Version: prev.Version + 1, Config: next}
	h.cur.Store(snap)
	return snap, nil
}

// clone returns a deep copy of c.
func (c Config) clone() Config {
	c.Server.CORSOrigins = slices.Clone(c.Server.CORSOrigins)
	return c
}

// Keys of the runtime settings persisted in the database.
const (
	SettingAIProvider     = "ai.provider"
	SettingAIAPIKey       = "ai.api_key"
	SettingAIBaseURL      = "ai.base_url"
	SettingAIModel        = "ai.model"
	SettingAISystemPrompt = "ai.system_prompt"
	SettingCORSOrigins    = "server.cors_origins"
	SettingTheme          = "themes.active"
)

// RuntimeSettings is the subset of the configuration an operator may change
// while the server is running. Nil fields are left unchanged.
type RuntimeSettings struct {
	Provider     *string   `json:"provider,omitempty"`
	APIKey       *string   `json:"api_key,omitempty"`
	BaseURL      *string   `json:"base_url,omitempty"`
	Model        *string   `json:"model,omitempty"`
	SystemPrompt *string   `json:"system_prompt,omitempty"`
	CORSOrigins  *[]string `json:"cors_origins,omitempty"`
	Theme        *string   `json:"theme,omitempty"`
}

// Apply copies every non-nil field into cfg.
func (rs RuntimeSettings) Apply(cfg *Config) {
	if rs.Provider != nil {
		cfg.AI.Provider = *rs.Provider
	}
	if rs.APIKey != nil {
		cfg.AI.APIKey = *rs.APIKey
	}
	if rs.BaseURL != nil {
		cfg.AI.BaseURL = *rs.BaseURL
	}
	if rs.Model != nil {
		cfg.AI.Model = *rs.Model
	}
	if rs.SystemPrompt != nil {
		cfg.AI.SystemPrompt = *rs.SystemPrompt
	}
	if rs.CORSOrigins != nil {
		cfg.Server.CORSOrigins = slices.Clone(*rs.CORSOrigins)
	}
	if rs.Theme != nil {
		cfg.Themes.Active = *rs.Theme
	}
}

// Values returns the non-nil fields keyed by their setting key, ready to be
// persisted.
func (rs RuntimeSettings) Values() map[string]any {
	values := make(map[string]any)
	if rs.Provider != nil {
		values[SettingAIProvider] = *rs.Provider
	}
	if rs.APIKey != nil {
		values[SettingAIAPIKey] = *rs.APIKey
	}
	if rs.BaseURL != nil {
		values[SettingAIBaseURL] = *rs.BaseURL
	}
	if rs.Model != nil {
		values[SettingAIModel] = *rs.Model
	}
	if rs.SystemPrompt != nil {
		values[SettingAISystemPrompt] = *rs.SystemPrompt
	}
	if rs.CORSOrigins != nil {
		values[SettingCORSOrigins] = *rs.CORSOrigins
	}
	if rs.Theme != nil {
		values[SettingTheme] = *rs.Theme
	}
	return values
}

// SettingsFromStored decodes persisted settings. Unknown keys are ignored so
// that removed settings do not prevent startup.
func SettingsFromStored(raw map[string]json.RawMessage) (RuntimeSettings, error) {
	var rs RuntimeSettings
	targets := map[string]any{
		SettingAIProvider:     &rs.Provider,
		SettingAIAPIKey:       &rs.APIKey,
		SettingAIBaseURL:      &rs.BaseURL,
		SettingAIModel:        &rs.Model,
		SettingAISystemPrompt: &rs.SystemPrompt,
		SettingCORSOrigins:    &rs.CORSOrigins,
		SettingTheme:          &rs.Theme,
	}
	for key, value := range raw {
		dest, ok := targets[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, dest); err != nil {
			return RuntimeSettings{}, fmt.Errorf("decoding setting %q: %w", key, err)
		}
	}
	return rs, nil
}
