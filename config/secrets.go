package config

import (
	"context"
	"fmt"
	"strings"

	"axiapac.com/attendance/attendance/core"
	"gopkg.in/yaml.v3"
)

// ParameterReader fetches one decrypted parameter value by name.
type ParameterReader interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type DBEntry struct {
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"host" json:"host"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

func (db DBEntry) GetDSN() string {
	// username:password@tcp(host:3306)/name?parseTime=true
	host := db.Host
	if !strings.Contains(host, ":") {
		host = host + ":3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", db.Username, db.Password, host, db.Name)
}

// Secrets is the YAML document stored in the secrets parameter. Only the
// fields present in the document override the environment.
type Secrets struct {
	GoogleCredentialsJSON string   `yaml:"googleCredentialsJson"`
	Database              *DBEntry `yaml:"database"`
	DSN                   string   `yaml:"dsn"`
	DatastoreKey          string   `yaml:"datastoreKey"`
	JWTSecret             string   `yaml:"jwtSecret"`
	SlackToken            string   `yaml:"slackToken"`
}

// LoadSecrets overlays cfg with the YAML secrets stored under
// cfg.SecretsParameter. It is a no-op when no parameter is configured.
func LoadSecrets(ctx context.Context, cfg *Config, params ParameterReader) error {
	if cfg.SecretsParameter == "" {
		return nil
	}
	raw, err := params.GetParameter(ctx, cfg.SecretsParameter)
	if err != nil {
		return &core.SyncError{Code: core.CodeConfig, Err: fmt.Errorf("load secrets %s: %w", cfg.SecretsParameter, err)}
	}

	var s Secrets
	if err := yaml.Unmarshal([]byte(raw), &s); err != nil {
		return &core.SyncError{Code: core.CodeConfig, Err: fmt.Errorf("unmarshal secrets %s: %w", cfg.SecretsParameter, err)}
	}
	s.apply(cfg)
	return nil
}

func (s *Secrets) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.GoogleCredentialsJSON, s.GoogleCredentialsJSON)
	set(&cfg.DatastoreKey, s.DatastoreKey)
	set(&cfg.JWTSecret, s.JWTSecret)
	set(&cfg.SlackToken, s.SlackToken)
	if s.Database != nil && s.Database.Host != "" {
		cfg.DSN = s.Database.GetDSN()
	}
	set(&cfg.DSN, s.DSN)
}

// Load reads the environment and overlays the secrets parameter when one is
// configured. params is only consulted in that case and may be nil otherwise.
func Load(ctx context.Context, params func(ctx context.Context) (ParameterReader, error)) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.SecretsParameter == "" {
		return cfg, nil
	}
	reader, err := params(ctx)
	if err != nil {
		return nil, &core.SyncError{Code: core.CodeConfig, Err: fmt.Errorf("parameter store: %w", err)}
	}
	if err := LoadSecrets(ctx, cfg, reader); err != nil {
		return nil, err
	}
	return cfg, nil
}
