// Package config loads the application configuration: spreadsheet
// coordinates, credential source, the author roster and the edit gate.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	// SpreadsheetID is the Google Sheets document ID.
	SpreadsheetID string `json:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	// Worksheet is the tab holding the task table.
	Worksheet string `json:"worksheet" mapstructure:"worksheet"`
	// CredentialsFile is the service-account key file, used when the
	// GOOGLE_SHEETS_CREDENTIALS environment variable is not set.
	CredentialsFile string `json:"credentials_file" mapstructure:"credentials_file"`
	// Addr is the web UI listen address.
	Addr string `json:"addr" mapstructure:"addr"`
	// Timezone stamps derived dates (edit stamps, real start/end).
	Timezone string `json:"timezone" mapstructure:"timezone"`
	// Authors is the roster offered by the insert and edit screens.
	Authors []string `json:"authors" mapstructure:"authors"`
	// Editors maps editor email to password for the edit gate. This is a
	// UI gate, not a security mechanism: values are cleartext and checked
	// in process.
	Editors map[string]string `json:"editors" mapstructure:"editors"`
}

// Load reads the config file at path (JSON), applying QUANTA_* environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("QUANTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("worksheet", "Página1")
	v.SetDefault("addr", ":8501")
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("credentials_file", "credenciais.json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("config %s: spreadsheet_id is required", path)
	}
	return &cfg, nil
}

// AuthorOptions returns the roster sorted and deduplicated for the
// select boxes.
func (c *Config) AuthorOptions() []string {
	seen := make(map[string]bool, len(c.Authors))
	out := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Authorize checks the edit gate. The email compares case-insensitively
// against the roster keys regardless of how the map was built; empty
// credentials never pass.
func (c *Config) Authorize(email, password string) bool {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false
	}
	for editor, want := range c.Editors {
		if strings.EqualFold(strings.TrimSpace(editor), email) {
			return want == password
		}
	}
	return false
}
