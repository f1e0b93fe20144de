package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/router"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "fsroutes.json"

	// DefaultPort is the default dev server port.
	DefaultPort = 3100

	// DefaultHost is the default dev server host.
	DefaultHost = "localhost"

	// DefaultInterval is the default watcher poll interval.
	DefaultInterval = 300 * time.Millisecond

	// DefaultOutputFile is the default manifest path.
	DefaultOutputFile = "routes.gen.json"
)

// Source kinds.
const (
	SourceDir = "dir"
	SourceS3  = "s3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatTS   = "ts"
)

// Config represents the complete fsroutes.json configuration.
type Config struct {
	// Routes configures how file paths become routes.
	Routes RoutesConfig `json:"routes"`

	// Source configures where route files are discovered.
	Source SourceConfig `json:"source"`

	// Output configures the generated manifest.
	Output OutputConfig `json:"output"`

	// Hooks configures scripted route hooks.
	Hooks HooksConfig `json:"hooks,omitempty"`

	// Dev contains dev server configuration.
	Dev DevConfig `json:"dev"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RoutesConfig mirrors router.Options.
type RoutesConfig struct {
	// PathPrefix is a regular expression removed from discovered paths.
	PathPrefix string `json:"pathPrefix,omitempty"`

	// IndexFileName is the suffix that marks a routable file.
	IndexFileName string `json:"indexFileName,omitempty" validate:"omitempty,startswith=/"`

	// RouterPathFolder is the folder the routes live in, relative to the
	// source root.
	RouterPathFolder string `json:"routerPathFolder,omitempty" validate:"omitempty,startswith=/"`

	// RawPathKey is the extra key the raw path is written under.
	RawPathKey string `json:"rawPathKey,omitempty"`
}

// SourceConfig selects the discovery source.
type SourceConfig struct {
	// Kind is "dir" or "s3".
	Kind string `json:"kind" validate:"oneof=dir s3"`

	// Dir is the project root for "dir" sources, relative to the config file.
	Dir string `json:"dir,omitempty"`

	// Bucket is the bucket for "s3" sources.
	Bucket string `json:"bucket,omitempty" validate:"required_if=Kind s3"`

	// Prefix is the key prefix that corresponds to the routes folder.
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the AWS region from the environment.
	Region string `json:"region,omitempty"`
}

// OutputConfig configures the generated manifest.
type OutputConfig struct {
	// File is the output path, relative to the config file.
	File string `json:"file" validate:"required"`

	// Format is "json" or "ts". Empty picks by file extension.
	Format string `json:"format,omitempty" validate:"omitempty,oneof=json ts"`

	// RelativeChildren writes child paths relative to their parent.
	RelativeChildren bool `json:"relativeChildren,omitempty"`
}

// HooksConfig configures scripted hooks.
type HooksConfig struct {
	// Lua is the path to a Lua hook script, relative to the config file.
	Lua string `json:"lua,omitempty"`
}

// DevConfig contains dev server settings.
type DevConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty" validate:"gte=1,lte=65535"`

	// Interval is the watcher poll interval (e.g. "300ms").
	Interval string `json:"interval,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Routes: RoutesConfig{
			PathPrefix:       router.DefaultPathPrefix,
			IndexFileName:    router.DefaultIndexFileName,
			RouterPathFolder: router.DefaultRouterPathFolder,
			RawPathKey:       router.DefaultRawPathKey,
		},
		Source: SourceConfig{
			Kind: SourceDir,
			Dir:  ".",
		},
		Output: OutputConfig{
			File: DefaultOutputFile,
		},
		Dev: DevConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Interval: DefaultInterval.String(),
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for fsroutes.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + path + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E105").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E105").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes.PathPrefix == "" {
		c.Routes.PathPrefix = router.DefaultPathPrefix
	}
	if c.Routes.IndexFileName == "" {
		c.Routes.IndexFileName = router.DefaultIndexFileName
	}
	if c.Routes.RouterPathFolder == "" {
		c.Routes.RouterPathFolder = router.DefaultRouterPathFolder
	}
	if c.Routes.RawPathKey == "" {
		c.Routes.RawPathKey = router.DefaultRawPathKey
	}

	if c.Source.Kind == "" {
		c.Source.Kind = SourceDir
	}
	if c.Source.Kind == SourceDir && c.Source.Dir == "" {
		c.Source.Dir = "."
	}

	if c.Output.File == "" {
		c.Output.File = DefaultOutputFile
	}

	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Interval == "" {
		c.Dev.Interval = DefaultInterval.String()
	}
}

// validate is shared; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return errors.New("E103").
				WithDetail(describeFieldError(verrs[0])).
				Wrap(err)
		}
		return errors.New("E103").Wrap(err)
	}

	if _, err := regexp.Compile(c.Routes.PathPrefix); err != nil {
		return errors.New("E104").Wrap(err)
	}

	if _, err := c.Interval(); err != nil {
		return errors.New("E103").
			WithDetail("dev.interval must be a positive duration such as \"300ms\"").
			Wrap(err)
	}

	return nil
}

// describeFieldError renders a validation failure with the JSON field path.
func describeFieldError(fe validator.FieldError) string {
	field := jsonFieldPath(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "required", "required_if":
		return field + " is required"
	case "gte", "lte":
		return field + " must be between 1 and 65535"
	case "startswith":
		return field + " must start with " + strconv.Quote(fe.Param())
	default:
		return field + " failed the " + fe.Tag() + " check"
	}
}

// jsonFieldPath converts "Config.Source.Kind" to "source.kind".
func jsonFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

// Interval returns the parsed watcher poll interval.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Dev.Interval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Newf(errors.CategoryConfig, "interval %s is not positive", c.Dev.Interval)
	}
	return d, nil
}

// RouterOptions builds router options from the routes section. Hooks,
// logger, observer and tracer are left for the caller.
func (c *Config) RouterOptions() (router.Options, error) {
	prefix, err := regexp.Compile(c.Routes.PathPrefix)
	if err != nil {
		return router.Options{}, errors.New("E104").Wrap(err)
	}
	return router.Options{
		PathPrefix:       prefix,
		IndexFileName:    c.Routes.IndexFileName,
		RouterPathFolder: c.Routes.RouterPathFolder,
		RawPathKey:       c.Routes.RawPathKey,
	}, nil
}

// OutputFormat returns the configured output format, or the one implied by
// the output file extension.
func (c *Config) OutputFormat() string {
	if c.Output.Format != "" {
		return c.Output.Format
	}
	switch filepath.Ext(c.Output.File) {
	case ".ts", ".mts", ".tsx":
		return FormatTS
	default:
		return FormatJSON
	}
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// SourcePath returns the absolute path of the source root.
func (c *Config) SourcePath() string {
	return c.resolve(c.Source.Dir)
}

// RoutesPath returns the absolute path of the routes folder on disk.
func (c *Config) RoutesPath() string {
	return filepath.Join(c.SourcePath(), filepath.FromSlash(c.Routes.RouterPathFolder))
}

// OutputPath returns the absolute path of the output file.
func (c *Config) OutputPath() string {
	return c.resolve(c.Output.File)
}

// HooksPath returns the absolute path of the Lua hook script, or "" when no
// script is configured.
func (c *Config) HooksPath() string {
	if c.Hooks.Lua == "" {
		return ""
	}
	return c.resolve(c.Hooks.Lua)
}

// resolve makes path absolute relative to the config directory.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing fsroutes.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
