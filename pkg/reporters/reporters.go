package reporters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported reporter types.
	TypeConsole   = "console"
	TypeFile      = "file"
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcppubsub"
	TypeLog       = "log"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// knownTypes gates reporter configs at load time so a typo fails the run
// before any suite executes.
var knownTypes = map[string]bool{
	TypeConsole:   true,
	TypeFile:      true,
	TypeHTTP:      true,
	TypeSQS:       true,
	TypeSNS:       true,
	TypeGCPPubSub: true,
	TypeLog:       true,
}

// configFile represents the structure of the reporters configuration file.
type configFile struct {
	Reporters []ReporterConfig `json:"reporters" yaml:"reporters"`
}

// ReporterConfig represents a single reporter entry declared in config files.
type ReporterConfig struct {
	ID      string                   `json:"id" yaml:"id"`
	Type    string                   `json:"type" yaml:"type"`
	Enabled *bool                    `json:"enabled" yaml:"enabled"`
	Console *ConsoleReporterConfig   `json:"console" yaml:"console"`
	File    *FileReporterConfig      `json:"file" yaml:"file"`
	HTTP    *HTTPReporterConfig      `json:"http" yaml:"http"`
	SQS     *SQSReporterConfig       `json:"sqs" yaml:"sqs"`
	SNS     *SNSReporterConfig       `json:"sns" yaml:"sns"`
	PubSub  *GCPPubSubReporterConfig `json:"gcppubsub" yaml:"gcppubsub"`
}

// ConsoleReporterConfig holds console sink settings.
type ConsoleReporterConfig struct {
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// FileReporterConfig holds file sink settings.
type FileReporterConfig struct {
	Dir   string `json:"dir" yaml:"dir"`
	JUnit bool   `json:"junit" yaml:"junit"`
}

// HTTPReporterConfig holds generic HTTP webhook settings.
type HTTPReporterConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SQSReporterConfig holds AWS SQS specific settings.
type SQSReporterConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SNSReporterConfig holds AWS SNS specific settings.
type SNSReporterConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPPubSubReporterConfig holds Google Pub/Sub specific settings.
type GCPPubSubReporterConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// ConfigRegistry materializes reporter definitions loaded from config files.
type ConfigRegistry struct {
	mu        sync.RWMutex
	reporters []ReporterConfig
	idx       map[string]ReporterConfig
}

// LoadRegistry loads the reporter registry from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("reporters file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reporters file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read reporters file: %w", err)
	}

	fileReg, err := parseReporterRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Reporters) == 0 {
		return nil, errors.New("reporters file contains no reporters entries")
	}

	reg := &ConfigRegistry{
		reporters: make([]ReporterConfig, len(fileReg.Reporters)),
		idx:       make(map[string]ReporterConfig, len(fileReg.Reporters)),
	}

	for i := range fileReg.Reporters {
		cfg := sanitizeReporterConfig(fileReg.Reporters[i])
		if err := validateReporterConfig(cfg); err != nil {
			return nil, fmt.Errorf("reporters[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate reporter id %q", cfg.ID)
		}
		reg.reporters[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseReporterRegistry attempts to decode the reporters file content.
func parseReporterRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalReporterRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("reporters file format not recognized (expected YAML or JSON)")
}

// unmarshalReporterRegistry decodes the reporters file using the provided function.
func unmarshalReporterRegistry(name string, data []byte, fn func([]byte, any) error) (configFile, error) {
	var reg configFile
	if err := fn(data, &reg); err != nil {
		return configFile{}, fmt.Errorf("decode %s reporters: %w", name, err)
	}
	return reg, nil
}

// sanitizeReporterConfig trims and normalizes the reporter config fields.
func sanitizeReporterConfig(cfg ReporterConfig) ReporterConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.File != nil {
		c := *cfg.File
		c.Dir = strings.TrimSpace(c.Dir)
		cfg.File = &c
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
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
		c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
		c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
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

// validateReporterConfig checks that required fields are present.
func validateReporterConfig(cfg ReporterConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for reporter %q", cfg.ID)
	}
	if !knownTypes[cfg.Type] {
		return fmt.Errorf("unknown reporter type %q for reporter %q", cfg.Type, cfg.ID)
	}
	if cfg.Type == TypeFile {
		if cfg.File == nil {
			return fmt.Errorf("file config required for reporter %q", cfg.ID)
		}
		if cfg.File.Dir == "" {
			return fmt.Errorf("file.dir is required for reporter %q", cfg.ID)
		}
	}
	if cfg.Type == TypeHTTP {
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for reporter %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for reporter %q", cfg.ID)
		}
	}
	if cfg.Type == TypeSQS {
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for reporter %q", cfg.ID)
		}
		if cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for reporter %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for reporter %q", cfg.ID)
		}
	}
	if cfg.Type == TypeSNS {
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for reporter %q", cfg.ID)
		}
		if cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for reporter %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for reporter %q", cfg.ID)
		}
	}
	if cfg.Type == TypeGCPPubSub {
		if cfg.PubSub == nil {
			return fmt.Errorf("gcppubsub config required for reporter %q", cfg.ID)
		}
		if cfg.PubSub.ProjectID == "" {
			return fmt.Errorf("gcppubsub.project_id is required for reporter %q", cfg.ID)
		}
		if cfg.PubSub.Topic == "" {
			return fmt.Errorf("gcppubsub.topic is required for reporter %q", cfg.ID)
		}
	}
	return nil
}

// ByID returns the reporter config by id.
func (r *ConfigRegistry) ByID(id string) (ReporterConfig, bool) {
	if r == nil {
		return ReporterConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return ReporterConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured reporters.
func (r *ConfigRegistry) All() []ReporterConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ReporterConfig, len(r.reporters))
	copy(out, r.reporters)
	return out
}

// Enabled returns reporters that are enabled.
func (r *ConfigRegistry) Enabled() []ReporterConfig {
	if r == nil {
		return nil
	}

	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]ReporterConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg ReporterConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
