// Package config defines the process configuration of the Output Management
// Component. Configuration is loaded once at startup and is immutable
// thereafter; in particular the backend API version wired per domain is a
// startup decision and never changes while the process runs.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS Secrets Manager (Lowest)
//
// Any missing required value or invalid format fails startup.
package config

import (
	"time"

	"omc/internal/types"
)

// SecretString is an alias for types.SecretString.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev test acc prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"omc"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Server ServerConfig

	// One backend per query domain. The key prefix of each is the domain
	// name, e.g. ZAKEN_DOMAIN, KLANTEN_API_VERSION.
	Zaken       BackendConfig `envconfig:"ZAKEN"`
	Klanten     BackendConfig `envconfig:"KLANTEN"`
	Objecten    BackendConfig `envconfig:"OBJECTEN"`
	ObjectTypen BackendConfig `envconfig:"OBJECTTYPEN"`
	Besluiten   BackendConfig `envconfig:"BESLUITEN"`

	Notify        NotifyConfig
	Scenario      ScenarioConfig
	AWS           AWSConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// BackendConfig describes how to reach one backend API. Domain is a bare
// host (optionally with port); request URIs are built as
// {Scheme}://{Domain}/{adapter path}. An empty APIVersion selects the newest
// adapter supported for the domain.
type BackendConfig struct {
	Domain     string        `envconfig:"DOMAIN" validate:"required"`
	Scheme     string        `envconfig:"URL_SCHEME" default:"https" validate:"oneof=http https"`
	APIVersion string        `envconfig:"API_VERSION"`
	ClientID   string        `envconfig:"CLIENT_ID"`
	Secret     SecretString  `envconfig:"SECRET"`
	APIKey     SecretString  `envconfig:"API_KEY"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"20s"`
}

// NotifyConfig holds the delivery provider settings.
type NotifyConfig struct {
	BaseURL string       `envconfig:"NOTIFY_API_BASE_URL" default:"https://api.notifynl.nl" validate:"required,url"`
	APIKey  SecretString `envconfig:"NOTIFY_API_KEY" validate:"required"`
	// OrganizationKeys is a JSON object mapping an organization identifier
	// (RSIN) to its own Notify API key. Organizations without an entry use
	// APIKey.
	OrganizationKeys string `envconfig:"NOTIFY_ORGANIZATION_KEYS_JSON" default:"{}" validate:"json"`
	// Templates is a JSON mapping: "scenario" -> "method" -> "template_id".
	// Example: {"case_created": {"email": "8a1c...", "sms": "0f2d..."}}
	Templates     string        `envconfig:"NOTIFY_TEMPLATES_JSON" validate:"required,json"`
	RatePerSecond float64       `envconfig:"NOTIFY_RATE_PER_SECOND" default:"25"`
	RateBurst     int           `envconfig:"NOTIFY_RATE_BURST" default:"10"`
	Timeout       time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
}

// ScenarioConfig holds business settings consulted by scenario gates.
type ScenarioConfig struct {
	// InitiatorRole is matched exactly (case-sensitive) against the generic
	// role label of case roles.
	InitiatorRole          string   `envconfig:"INITIATOR_ROLE" default:"initiator" validate:"required"`
	TaskObjectTypeUUIDs    []string `envconfig:"TASK_OBJECT_TYPE_UUIDS" validate:"required,dive,uuid"`
	MessageObjectTypeUUIDs []string `envconfig:"MESSAGE_OBJECT_TYPE_UUIDS" validate:"dive,uuid"`
	CaseTypeWhitelist      []string `envconfig:"CASE_TYPE_WHITELIST" default:"*"`
	DecisionTypeWhitelist  []string `envconfig:"DECISION_TYPE_WHITELIST" default:"*"`
	AllowKVKTasks          bool     `envconfig:"ALLOW_KVK_TASKS" default:"false"`
	LettersEnabled         bool     `envconfig:"LETTERS_ENABLED" default:"false"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"eu-west-1"`
	// RetryQueueURL receives events whose processing failed because a
	// backend was unavailable. Empty disables the hand-off.
	RetryQueueURL string `envconfig:"SQS_RETRY_QUEUE" validate:"omitempty,url"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"OMC"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSecretResolution indicates a failure when fetching secrets.
	ErrSecretResolution ConfigErrorType = "SECRET_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
