package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Editor   EditorConfig   `yaml:"editor"`
	Storage  StorageConfig  `yaml:"storage"`
	Theme    ThemeConfig    `yaml:"theme"`
	Features FeaturesConfig `yaml:"features"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name    string `yaml:"name" default:"Blog Studio"`
	Tagline string `yaml:"tagline" default:"Share your insights and knowledge with our community"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

// StoreConfig points at the hosted content store. Credentials usually come
// from the environment rather than the file.
type StoreConfig struct {
	ProjectID  string `yaml:"project_id" json:"project_id"`
	Dataset    string `yaml:"dataset" json:"dataset" default:"production"`
	Token      string `yaml:"token" json:"token"`
	APIVersion string `yaml:"api_version" json:"api_version" default:"2023-05-03"`
	UseCDN     bool   `yaml:"use_cdn" json:"use_cdn" default:"false"`
	// APIHost overrides the derived https://<project>.api.sanity.io host.
	APIHost string `yaml:"api_host" json:"api_host" default:""`
	// TimeoutSeconds of 0 leaves the transport defaults in charge.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds" default:"0"`
}

type EditorConfig struct {
	Timezone        string `yaml:"timezone" default:"UTC"`
	SanitizePreview bool   `yaml:"sanitize_preview" default:"true"`
	ListingPath     string `yaml:"listing_path" default:"/blog"`
}

type StorageConfig struct {
	Drafts      string `yaml:"drafts" default:"memory"`
	Path        string `yaml:"path" default:"./drafts.db"`
	Compression string `yaml:"compression" default:"zstd"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" default:"dark-theme"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

type FeaturesConfig struct {
	Uploads       UploadsConfig `yaml:"uploads"`
	Notifications FeatureFlag   `yaml:"notifications"`
	LiveReload    LiveReload    `yaml:"live_reload"`
}

// UploadsConfig gates the direct image upload path. It stays off until the
// store's asset endpoint works for the deployment.
type UploadsConfig struct {
	Enabled  bool     `yaml:"enabled" default:"false"`
	Backend  string   `yaml:"backend" default:"sanity"`
	MaxBytes int      `yaml:"max_bytes" default:"10485760"`
	S3       S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" default:""`
	Endpoint        string `yaml:"endpoint" default:""`
	Region          string `yaml:"region" default:"auto"`
	PublicURL       string `yaml:"public_url" default:""`
	AccessKeyID     string `yaml:"access_key_id" default:""`
	SecretAccessKey string `yaml:"secret_access_key" default:""`
}

type FeatureFlag struct {
	Enabled bool `yaml:"enabled" default:"false"`
}

type LiveReload struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyEnv(os.Getenv)

	AppConfig = config
	return nil
}

// ApplyEnv overrides secrets and store coordinates with environment values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.Store.ProjectID, EnvProjectID)
	set(&c.Store.Dataset, EnvDataset)
	set(&c.Store.Token, EnvToken)
	set(&c.Features.Uploads.S3.AccessKeyID, EnvS3AccessKeyID)
	set(&c.Features.Uploads.S3.SecretAccessKey, EnvS3SecretAccessKey)
}

// Validate fails fast on settings the server cannot start without.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("%s: %w", ErrStoreConfig, err)
	}

	if _, err := c.Editor.Location(); err != nil {
		return fmt.Errorf("invalid editor timezone %q: %w", c.Editor.Timezone, err)
	}

	err := validation.ValidateStruct(&c.Storage,
		validation.Field(&c.Storage.Drafts, validation.In(DraftStorageMemory, DraftStorageSQLite)),
		validation.Field(&c.Storage.Compression, validation.In("zstd", "gzip")),
	)
	if err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}

	if c.Features.Uploads.Enabled {
		u := &c.Features.Uploads
		err := validation.ValidateStruct(u,
			validation.Field(&u.Backend, validation.In(UploadBackendSanity, UploadBackendS3)),
			validation.Field(&u.MaxBytes, validation.Min(1)),
		)
		if err != nil {
			return fmt.Errorf("invalid uploads config: %w", err)
		}
		if u.Backend == UploadBackendS3 {
			s3 := &u.S3
			err := validation.ValidateStruct(s3,
				validation.Field(&s3.Bucket, validation.Required),
				validation.Field(&s3.Endpoint, validation.Required),
				validation.Field(&s3.AccessKeyID, validation.Required),
				validation.Field(&s3.SecretAccessKey, validation.Required),
			)
			if err != nil {
				return fmt.Errorf("invalid s3 upload config: %w", err)
			}
		}
	}

	return nil
}

func (s *StoreConfig) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ProjectID, validation.Required),
		validation.Field(&s.Dataset, validation.Required),
		validation.Field(&s.Token, validation.Required),
		validation.Field(&s.APIVersion, validation.Required),
	)
}

func (s StoreConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Location is the timezone used to decide what "today" means for post dates.
func (e EditorConfig) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(e.Timezone)
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
