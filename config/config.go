package config

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped to keys,
// so REST_MAX_RETRY_ATTEMPTS sets max_retry_attempts.
const EnvPrefix = "REST_"

const keyDefaultHeaders = "default_headers"

// Load reads configuration with priority:
// 1. Environment variables prefixed with REST_ (highest priority)
// 2. The YAML file at path, skipped when path is empty
// 3. Default values (lowest priority)
//
// The result is validated strictly.
func Load(path string) (*Client, error) {
	var fileProvider koanf.Provider
	if path != "" {
		fileProvider = file.Provider(path)
	}
	return load(fileProvider, path)
}

// LoadBytes is Load with the YAML document supplied in memory.
func LoadBytes(data []byte) (*Client, error) {
	return load(rawbytes.Provider(data), "yaml")
}

func load(source koanf.Provider, sourceName string) (*Client, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, NewLoadError("defaults", err)
	}

	if source != nil {
		if err := k.Load(source, yaml.Parser()); err != nil {
			return nil, NewLoadError(sourceName, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, NewLoadError("env", err)
	}

	var cfg Client
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, NewLoadError("unmarshal", err)
	}
	if cfg.DefaultHeaders == nil {
		cfg.DefaultHeaders = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, cfgErr
		}
		return nil, NewLoadError("validate", err)
	}

	return &cfg, nil
}

// transformEnv maps REST_MAX_RETRY_ATTEMPTS to max_retry_attempts.
// REST_DEFAULT_HEADERS takes a comma-separated list of Name=value pairs.
func transformEnv(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	if key != keyDefaultHeaders {
		return key, v
	}

	headers := map[string]any{}
	for pair := range strings.SplitSeq(v, ",") {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	return key, headers
}

func loadDefaults(k *koanf.Koanf) error {
	d := Default()
	defaults := map[string]any{
		"base_url":                  d.BaseURL,
		"timeout":                   d.Timeout.String(),
		"max_retry_attempts":        d.MaxRetryAttempts,
		"retry_delay":               d.RetryDelay.String(),
		"use_exponential_backoff":   d.UseExponentialBackoff,
		"validate_ssl_certificates": d.ValidateSSLCertificates,
		"log_payloads":              d.LogPayloads,
		"max_payload_log_bytes":     d.MaxPayloadLogBytes,
		"trace_id_header":           d.TraceIDHeader,
		"enable_w3c_trace":          d.EnableW3CTrace,
		"enable_otel":               d.EnableOTel,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
