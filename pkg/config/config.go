package config

import (
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/config.yaml"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
	EnvironmentProduction  = "production"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" validate:"required"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	Environment               string        `koanf:"environment" default:"development" validate:"oneof=development test production"`
	JWTSecret                 string        `koanf:"jwt_secret" validate:"required"`
	PublicBaseURL             string        `koanf:"public_base_url" default:"http://localhost:3689"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3689"`
	StorageDir                string        `koanf:"storage_dir" default:"/data/media"`

	// Compilation
	CompileTimeout      time.Duration `koanf:"compile_timeout" default:"5m"`
	SegmentFetchTimeout time.Duration `koanf:"segment_fetch_timeout" default:"30s"`
	StaleCompileAfter   time.Duration `koanf:"stale_compile_after" default:"15m" validate:"gtfield=CompileTimeout"`
	ReconcileInterval   time.Duration `koanf:"reconcile_interval" default:"1m"`

	// Podcast feed
	FeedAuthor        string `koanf:"feed_author" default:"KindleWood Studio"`
	FeedDescription   string `koanf:"feed_description" default:"Personalized stories read aloud for kids."`
	FeedImageURL      string `koanf:"feed_image_url"`
	FeedLanguage      string `koanf:"feed_language" default:"en-us"`
	FeedTitle         string `koanf:"feed_title" default:"KindleWood Kids Stories"`
	EstimatedLiveTime string `koanf:"estimated_live_time" default:"1-24 hours"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
	}

	// Env vars use the upper-cased key names and take precedence over the file.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	return cfg, nil
}

// NewForTest returns a config backed by an in-memory database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.Environment = EnvironmentTest
	cfg.JWTSecret = "test-secret"
	cfg.ServerHost = "127.0.0.1"
	cfg.StorageDir = os.TempDir()
	return cfg
}

func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}

	var missing, invalid []string
	t := reflect.TypeOf(*cfg)
	for _, fe := range verrs {
		key := toSnakeCase(fe.StructField())
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag := f.Tag.Get("koanf"); tag != "" {
				key = tag
			}
		}
		switch fe.Tag() {
		case "required":
			missing = append(missing, fmt.Sprintf("%s (env %s, file key %s)", key, strings.ToUpper(key), key))
		case "gtfield":
			invalid = append(invalid, fmt.Sprintf("%s must be greater than %s", key, toSnakeCase(fe.Param())))
		default:
			invalid = append(invalid, fmt.Sprintf("%s failed %s %s", key, fe.Tag(), fe.Param()))
		}
	}

	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return errors.Errorf("invalid config: %s", strings.Join(invalid, ", "))
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
