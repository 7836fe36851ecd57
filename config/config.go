package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/datastore/v1/common"
	"axiapac.com/attendance/utils"
	"github.com/go-playground/validator/v10"
)

const (
	BackendGoogle   = "google"
	BackendWorkbook = "workbook"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverREST   = "rest"
)

// Config holds everything a host needs to build a reconciler or exporter.
// It is built once by main or the lambda handler and passed down explicitly.
type Config struct {
	SheetBackend          string `yaml:"sheetBackend" validate:"oneof=google workbook"`
	SheetID               string `yaml:"sheetId"`
	SheetName             string `yaml:"sheetName" validate:"required"`
	SheetSource           string `yaml:"sheetSource"`
	GoogleCredentialsJSON string `yaml:"googleCredentialsJson"`
	GoogleCredentialsFile string `yaml:"googleCredentialsFile"`

	WorkbookBucket string `yaml:"workbookBucket"`
	WorkbookKey    string `yaml:"workbookKey"`
	WorkbookPath   string `yaml:"workbookPath"`

	StoreDriver      string `yaml:"storeDriver" validate:"oneof=mysql sqlite rest"`
	DSN              string `yaml:"dsn"`
	DBLogLevel       string `yaml:"dbLogLevel" validate:"omitempty,oneof=silent error warn info"`
	DBMaxConnections int    `yaml:"dbMaxConnections" validate:"min=0,max=100"`
	DatastoreURL     string `yaml:"datastoreUrl" validate:"omitempty,url"`
	DatastoreKey     string `yaml:"datastoreKey"`
	DatastoreTable   string `yaml:"datastoreTable"`

	BatchSize   int           `yaml:"batchSize" validate:"min=1,max=500"`
	BatchPause  time.Duration `yaml:"batchPause"`
	MaxAttempts int           `yaml:"maxAttempts" validate:"min=1,max=10"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	Timezone    string        `yaml:"timezone"`

	JWTSecret string `yaml:"jwtSecret" validate:"omitempty,base64"`

	SlackToken        string   `yaml:"slackToken"`
	SlackInfoChannel  string   `yaml:"slackInfoChannel"`
	SlackErrorChannel string   `yaml:"slackErrorChannel"`
	EmailFrom         string   `yaml:"emailFrom" validate:"omitempty,email"`
	EmailTo           []string `yaml:"emailTo" validate:"omitempty,dive,email"`

	ListenAddr       string `yaml:"listenAddr"`
	SecretsParameter string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		SheetBackend:   BackendGoogle,
		SheetName:      "Sheet1",
		StoreDriver:    DriverMySQL,
		DBLogLevel:     "warn",
		DatastoreTable: "attendance_records",
		BatchSize:      core.DefaultBatchSize,
		BatchPause:     core.DefaultBatchPause,
		MaxAttempts:    3,
		RetryDelay:     time.Second,
		Timezone:       "UTC",
		ListenAddr:     ":8080",
	}
}

// FromEnv builds a Config from the process environment on top of Default.
// Malformed numeric or duration values are reported as CONFIG errors.
func FromEnv() (*Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	r := envReader{lookup: lookup}

	r.str("SHEET_BACKEND", &cfg.SheetBackend)
	r.str("GOOGLE_SHEET_ID", &cfg.SheetID)
	r.str("GOOGLE_SHEET_NAME", &cfg.SheetName)
	r.str("SHEET_SOURCE", &cfg.SheetSource)
	r.str("GOOGLE_CREDENTIALS_JSON", &cfg.GoogleCredentialsJSON)
	r.str("GOOGLE_APPLICATION_CREDENTIALS", &cfg.GoogleCredentialsFile)
	r.str("WORKBOOK_BUCKET", &cfg.WorkbookBucket)
	r.str("WORKBOOK_KEY", &cfg.WorkbookKey)
	r.str("WORKBOOK_PATH", &cfg.WorkbookPath)

	r.str("STORE_DRIVER", &cfg.StoreDriver)
	r.str("DSN", &cfg.DSN)
	r.str("DB_LOG_LEVEL", &cfg.DBLogLevel)
	r.integer("DB_MAX_CONNECTIONS", &cfg.DBMaxConnections)
	r.str("DATASTORE_URL", &cfg.DatastoreURL)
	r.str("DATASTORE_KEY", &cfg.DatastoreKey)
	r.str("DATASTORE_TABLE", &cfg.DatastoreTable)

	r.integer("SYNC_BATCH_SIZE", &cfg.BatchSize)
	r.duration("SYNC_BATCH_PAUSE", &cfg.BatchPause)
	r.integer("SYNC_MAX_ATTEMPTS", &cfg.MaxAttempts)
	r.duration("SYNC_RETRY_DELAY", &cfg.RetryDelay)
	r.str("TIMEZONE", &cfg.Timezone)

	r.str("JWT_SECRET", &cfg.JWTSecret)
	r.str("SLACK_BOT_TOKEN", &cfg.SlackToken)
	r.str("SLACK_INFO_CHANNEL", &cfg.SlackInfoChannel)
	r.str("SLACK_ERROR_CHANNEL", &cfg.SlackErrorChannel)
	r.str("EMAIL_FROM", &cfg.EmailFrom)
	r.list("EMAIL_TO", &cfg.EmailTo)
	r.str("LISTEN_ADDR", &cfg.ListenAddr)
	r.str("SECRETS_PARAMETER", &cfg.SecretsParameter)

	if r.err != nil {
		return nil, &core.SyncError{Code: core.CodeConfig, Err: r.err}
	}
	return cfg, nil
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *envReader) list(key string, dst *[]string) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (r *envReader) integer(key string, dst *int) {
	v, ok := r.get(key)
	if !ok || r.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = fmt.Errorf("%s must be an integer: %w", key, err)
		return
	}
	*dst = n
}

// duration accepts Go durations ("750ms") or a bare number of milliseconds.
func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := r.get(key)
	if !ok || r.err != nil {
		return
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = fmt.Errorf("%s must be a duration: %w", key, err)
		return
	}
	*dst = d
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats and the settings each backend needs.
func (c *Config) Validate() error {
	var problems []string
	if err := validate.Struct(c); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				problems = append(problems, fmt.Sprintf("%s failed '%s' validation", fe.Field(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	switch c.SheetBackend {
	case BackendGoogle:
		if c.SheetID == "" {
			problems = append(problems, "GOOGLE_SHEET_ID is required for the google backend")
		}
		if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsFile == "" {
			problems = append(problems, "GOOGLE_CREDENTIALS_JSON or GOOGLE_APPLICATION_CREDENTIALS is required for the google backend")
		}
	case BackendWorkbook:
		if c.WorkbookPath == "" && (c.WorkbookBucket == "" || c.WorkbookKey == "") {
			problems = append(problems, "WORKBOOK_PATH or WORKBOOK_BUCKET and WORKBOOK_KEY are required for the workbook backend")
		}
	}

	switch c.StoreDriver {
	case DriverMySQL, DriverSQLite:
		if c.DSN == "" {
			problems = append(problems, "DSN is required for the "+c.StoreDriver+" store")
		}
	case DriverREST:
		if c.DatastoreURL == "" || c.DatastoreKey == "" {
			problems = append(problems, "DATASTORE_URL and DATASTORE_KEY are required for the rest store")
		}
		if c.DatastoreTable == "" {
			problems = append(problems, "DATASTORE_TABLE is required for the rest store")
		}
	}

	if c.BatchPause < 0 || c.RetryDelay < 0 {
		problems = append(problems, "batch pause and retry delay must not be negative")
	}

	if len(problems) > 0 {
		return core.NewSyncError(core.CodeConfig, "invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Source is the dedup namespace for row numbers. It falls back to the
// sheet id plus tab name so two tabs never collide.
func (c *Config) Source() string {
	if c.SheetSource != "" {
		return c.SheetSource
	}
	switch c.SheetBackend {
	case BackendWorkbook:
		if c.WorkbookPath != "" {
			return c.WorkbookPath + "!" + c.SheetName
		}
		return c.WorkbookBucket + "/" + c.WorkbookKey + "!" + c.SheetName
	default:
		return c.SheetID + "!" + c.SheetName
	}
}

func (c *Config) Location() *time.Location {
	return utils.LoadLocation(c.Timezone)
}

func (c *Config) BatchOptions() core.BatchOptions {
	policy := core.NoRetry
	if c.MaxAttempts > 1 {
		policy = core.RetryPolicy{MaxAttempts: c.MaxAttempts, Retryable: Retryable}
		if c.RetryDelay > 0 {
			policy.Delay = core.ExponentialDelay(c.RetryDelay, 30*time.Second)
		}
	}
	return core.BatchOptions{Size: c.BatchSize, Pause: c.BatchPause, Retry: policy}
}

func (c *Config) ReconcilerOptions() core.ReconcilerOptions {
	return core.ReconcilerOptions{Source: c.Source(), Batch: c.BatchOptions()}
}

// JWTKey decodes the base64 signing secret. It returns nil when no secret is
// configured, which leaves the HTTP routes unauthenticated.
func (c *Config) JWTKey() ([]byte, error) {
	if c.JWTSecret == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.JWTSecret)
	if err != nil {
		return nil, &core.SyncError{Code: core.CodeConfig, Err: fmt.Errorf("decode jwt secret: %w", err)}
	}
	return key, nil
}

// Retryable treats cancellation and client-side datastore rejections as
// final. Anything else, including driver errors, is retried.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}
