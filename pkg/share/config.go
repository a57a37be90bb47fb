package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported target types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderAzure  = "azure"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// targetsFile is the on-disk layout of the share targets file.
type targetsFile struct {
	Targets []TargetConfig `json:"targets" yaml:"targets"`
}

// TargetConfig is one share destination.
type TargetConfig struct {
	ID      string             `json:"id" yaml:"id"`
	Type    string             `json:"type" yaml:"type"`
	Enabled *bool              `json:"enabled" yaml:"enabled"`
	Queue   *QueueTargetConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPTargetConfig  `json:"http" yaml:"http"`
}

// QueueTargetConfig selects a cloud queue provider.
type QueueTargetConfig struct {
	Provider string            `json:"provider" yaml:"provider"`
	AWS      *AWSSQSConfig     `json:"aws" yaml:"aws"`
	SNS      *AWSSNSConfig     `json:"sns" yaml:"sns"`
	Azure    *AzureQueueConfig `json:"azure" yaml:"azure"`
	GCP      *GCPQueueConfig   `json:"gcp" yaml:"gcp"`
}

type AWSSQSConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

type AWSSNSConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AzureQueueConfig is parsed so files stay portable; the provider is rejected.
type AzureQueueConfig struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
	QueueName        string `json:"queue" yaml:"queue"`
}

type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPTargetConfig is a webhook destination.
type HTTPTargetConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadTargets reads, env-expands, normalises and validates a YAML or JSON
// targets file.
func LoadTargets(path string) ([]TargetConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("share targets file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read share targets file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	file, err := parseTargetsFile(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, errors.New("share targets file contains no targets")
	}

	seen := make(map[string]struct{}, len(file.Targets))
	out := make([]TargetConfig, 0, len(file.Targets))
	for i := range file.Targets {
		cfg := sanitizeTargetConfig(file.Targets[i])
		if err := validateTargetConfig(cfg); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate share target id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

// parseTargetsFile picks a decoder from the extension, trying both when it
// is unknown.
func parseTargetsFile(data []byte, ext string) (targetsFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		exts []string
		fn   func([]byte, any) error
	}{
		{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
	}

	known := false
	for _, d := range decoders {
		known = known || slices.Contains(d.exts, ext)
	}

	var lastErr error
	for _, d := range decoders {
		if known && !slices.Contains(d.exts, ext) {
			continue
		}
		var f targetsFile
		if err := d.fn(data, &f); err != nil {
			lastErr = fmt.Errorf("decode %s share targets: %w", d.name, err)
			continue
		}
		return f, nil
	}
	if lastErr == nil {
		lastErr = errors.New("share targets file format not recognized (expected YAML or JSON)")
	}
	return targetsFile{}, lastErr
}

// sanitizeTargetConfig trims and normalises the config fields.
func sanitizeTargetConfig(cfg TargetConfig) TargetConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.AWS != nil {
			a := *qc.AWS
			a.QueueURL = strings.TrimSpace(a.QueueURL)
			a.Region = strings.TrimSpace(a.Region)
			a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
			a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
			qc.AWS = &a
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateTargetConfig checks that required fields are present.
func validateTargetConfig(cfg TargetConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for share target %q", cfg.ID)
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for share target %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQSConfig(cfg.ID, cfg.Queue.AWS)
		case QueueProviderAWSSNS:
			return validateSNSConfig(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCPConfig(cfg.ID, cfg.Queue.GCP)
		case QueueProviderAzure:
			return fmt.Errorf("queue provider %q not implemented for share target %q", cfg.Queue.Provider, cfg.ID)
		default:
			return fmt.Errorf("queue provider %q not supported for share target %q", cfg.Queue.Provider, cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for share target %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for share target %q", cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for share target %q", cfg.Type, cfg.ID)
	}
	return nil
}

func validateSQSConfig(id string, cfg *AWSSQSConfig) error {
	switch {
	case cfg == nil:
		return fmt.Errorf("sqs config required for share target %q", id)
	case cfg.QueueURL == "":
		return fmt.Errorf("sqs.uri is required for share target %q", id)
	case cfg.Region == "":
		return fmt.Errorf("sqs.region is required for share target %q", id)
	case cfg.AccessKeyID == "" || cfg.SecretAccessKey == "":
		return fmt.Errorf("sqs credentials are required for share target %q", id)
	}
	return nil
}

func validateSNSConfig(id string, cfg *AWSSNSConfig) error {
	switch {
	case cfg == nil:
		return fmt.Errorf("sns config required for share target %q", id)
	case cfg.TopicARN == "":
		return fmt.Errorf("sns.topic_arn is required for share target %q", id)
	case cfg.Region == "":
		return fmt.Errorf("sns.region is required for share target %q", id)
	case cfg.AccessKeyID == "" || cfg.SecretAccessKey == "":
		return fmt.Errorf("sns credentials are required for share target %q", id)
	}
	return nil
}

func validateGCPConfig(id string, cfg *GCPQueueConfig) error {
	switch {
	case cfg == nil:
		return fmt.Errorf("gcp config required for share target %q", id)
	case cfg.ProjectID == "":
		return fmt.Errorf("gcp.project_id is required for share target %q", id)
	case cfg.Topic == "":
		return fmt.Errorf("gcp.topic is required for share target %q", id)
	}
	return nil
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg TargetConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
