package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/htmlrms/pkg/core"
)

// ConfigFileName is the optional workspace configuration file.
const ConfigFileName = "htmlrms.yaml"

// FileConfig mirrors htmlrms.yaml.
//
//	adapter: sqlite
//	uri: .htmlrms/records.db
//	slot: htmlManagerV2Data
//	timeout: 3s
//	versioning: true
//	template: starter
//	s3:
//	  region: eu-west-1
//	  endpoint: http://localhost:9000
//	  path_style: true
type FileConfig struct {
	Adapter    string        `yaml:"adapter"`
	URI        string        `yaml:"uri"`
	Slot       string        `yaml:"slot"`
	Timeout    time.Duration `yaml:"timeout"`
	Versioning *bool         `yaml:"versioning"`
	ReadOnly   bool          `yaml:"read_only"`
	Template   string        `yaml:"template"`
	S3         S3Options     `yaml:"s3"`
}

// LoadConfig reads a config file. A missing file yields a zero config.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the file values into options. Put them before explicit
// options so flags override the file.
func (c FileConfig) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Slot != "" {
		opts = append(opts, WithSlotName(c.Slot))
	}
	if c.Timeout != 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	switch c.Template {
	case "":
	case "starter":
		opts = append(opts, WithTemplate(core.StarterTemplate))
	default:
		opts = append(opts, WithTemplate(c.Template))
	}
	if c.S3 != (S3Options{}) {
		opts = append(opts, WithS3(c.S3))
	}
	return opts
}
