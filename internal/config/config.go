// Package config loads showcase configuration from config.yaml, .env and
// SHOWCASE_* environment variables using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "SHOWCASE"
)

// Asset and draft drivers.
const (
	AssetsFS = "fs"
	AssetsS3 = "s3"

	DraftsSQLite = "sqlite"
	DraftsRedis  = "redis"
)

// Configuration errors.
var (
	ErrAssetsDriverUnknown = errors.New("unknown assets driver")
	ErrDraftsDriverUnknown = errors.New("unknown drafts driver")
	ErrLogFormatUnknown    = errors.New("unknown log format")
	ErrAPIURLRequired      = errors.New("api_url is required for the http backend")
)

// Config is the decoded content of config.yaml plus environment overrides.
type Config struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	APIURL       string `mapstructure:"api_url" yaml:"api_url"`
	SyncStrategy string `mapstructure:"sync_strategy" yaml:"sync_strategy"`

	Assets AssetsConfig `mapstructure:"assets" yaml:"assets"`
	Drafts DraftsConfig `mapstructure:"drafts" yaml:"drafts"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// AssetsConfig selects where uploaded files go.
type AssetsConfig struct {
	Driver  string   `mapstructure:"driver" yaml:"driver"`
	Dir     string   `mapstructure:"dir" yaml:"dir"`
	BaseURL string   `mapstructure:"base_url" yaml:"base_url"`
	S3      S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config holds the bucket and credentials of the s3 assets driver.
type S3Config struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	PathStyle       bool   `mapstructure:"path_style" yaml:"path_style"`
	CustomDomain    string `mapstructure:"custom_domain" yaml:"custom_domain"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
}

// DraftsConfig selects the store backing the schema registry.
type DraftsConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig controls `showcase serve`.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Defaults returns the configuration written to a fresh config.yaml.
func Defaults() Config {
	return Config{
		Backend:      types.BackendSQLite,
		SyncStrategy: types.SyncImmediate,
		Assets: AssetsConfig{
			Driver:  AssetsFS,
			Dir:     "assets",
			BaseURL: "/assets",
			S3:      S3Config{Region: "us-east-1"},
		},
		Drafts: DraftsConfig{Driver: DraftsSQLite, Prefix: "showcase:"},
		Log:    LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{Addr: ":8080", AllowedOrigins: []string{}},
	}
}

// Validate checks driver names and the storage config.
func (c Config) Validate() error {
	if err := c.Storage("").Validate(); err != nil {
		return err
	}
	if c.Backend == types.BackendHTTP && c.APIURL == "" {
		return ErrAPIURLRequired
	}
	switch c.Assets.Driver {
	case AssetsFS, AssetsS3:
	default:
		return fmt.Errorf("%w: %q", ErrAssetsDriverUnknown, c.Assets.Driver)
	}
	switch c.Drafts.Driver {
	case DraftsSQLite, DraftsRedis:
	default:
		return fmt.Errorf("%w: %q", ErrDraftsDriverUnknown, c.Drafts.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: %q", ErrLogFormatUnknown, c.Log.Format)
	}
	return nil
}

// Storage returns the backend config for Attach. dataDir, when non-empty,
// replaces the configured data_dir.
func (c Config) Storage(dataDir string) types.Config {
	if dataDir == "" {
		dataDir = c.DataDir
	}
	return types.Config{
		Backend:      c.Backend,
		DataDir:      dataDir,
		SyncStrategy: c.SyncStrategy,
	}
}

// Loader reads config.yaml from a config directory.
type Loader struct {
	v         *viper.Viper
	configDir string
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. Each env file is loaded into the process
// environment first; missing env files are ignored. A missing config.yaml is
// not an error.
func Load(configDir string, envFiles ...string) (*Loader, Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	l := &Loader{v: v, configDir: configDir}
	cfg, err := l.decode()
	if err != nil {
		return nil, Config{}, err
	}
	return l, cfg, nil
}

// Path returns the config.yaml path.
func (l *Loader) Path() string {
	return filepath.Join(l.configDir, configFileExt)
}

// Watch calls fn with the re-read configuration each time config.yaml is
// written. Decoding failures are passed to fn as errors; the previous
// configuration stays in effect for the caller to decide.
func (l *Loader) Watch(fn func(Config, error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fn(l.decode())
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("sync_strategy", d.SyncStrategy)
	v.SetDefault("assets.driver", d.Assets.Driver)
	v.SetDefault("assets.dir", d.Assets.Dir)
	v.SetDefault("assets.base_url", d.Assets.BaseURL)
	v.SetDefault("assets.s3.bucket", d.Assets.S3.Bucket)
	v.SetDefault("assets.s3.region", d.Assets.S3.Region)
	v.SetDefault("assets.s3.endpoint", d.Assets.S3.Endpoint)
	v.SetDefault("assets.s3.access_key_id", d.Assets.S3.AccessKeyID)
	v.SetDefault("assets.s3.secret_access_key", d.Assets.S3.SecretAccessKey)
	v.SetDefault("assets.s3.path_style", d.Assets.S3.PathStyle)
	v.SetDefault("assets.s3.custom_domain", d.Assets.S3.CustomDomain)
	v.SetDefault("assets.s3.prefix", d.Assets.S3.Prefix)
	v.SetDefault("drafts.driver", d.Drafts.Driver)
	v.SetDefault("drafts.redis_url", d.Drafts.RedisURL)
	v.SetDefault("drafts.prefix", d.Drafts.Prefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
}

const configHeader = "# showcase configuration\n# Every key can be overridden with a SHOWCASE_ environment variable,\n# e.g. SHOWCASE_LOG_LEVEL=debug or SHOWCASE_ASSETS_S3_BUCKET=media.\n\n"

// ensureDefaultConfigFile writes the defaults to config.yaml if the file
// does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return WriteFile(path, Defaults())
}

// WriteFile marshals cfg to path as YAML.
func WriteFile(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
