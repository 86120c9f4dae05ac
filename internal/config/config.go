package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kyori-mfv/mfext/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "mfext.json"

	// EnvPrefix prefixes environment overrides (MFEXT_SERVER_SSRPORT).
	EnvPrefix = "MFEXT"

	// DefaultHost is the default bind host.
	DefaultHost = "localhost"

	// DefaultSSRPort is the default port of the SSR (and unified) server.
	DefaultSSRPort = 5000

	// DefaultRSCPort is the default port of the RSC server.
	DefaultRSCPort = 5001

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultRSCEndpoint is the path of the component stream endpoint.
	DefaultRSCEndpoint = "/rsc"

	// DefaultStaticPrefix is the URL prefix for built static assets.
	DefaultStaticPrefix = "/static"
)

// Config represents the complete mfext.json configuration.
type Config struct {
	// Name is the project name, used in logs and the health endpoint.
	Name string `json:"name,omitempty" mapstructure:"name"`

	// Paths contains source locations.
	Paths PathsConfig `json:"paths" mapstructure:"paths"`

	// Build contains build output locations.
	Build BuildConfig `json:"build" mapstructure:"build"`

	// Server contains server settings shared by the RSC and SSR servers.
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Log contains logging settings.
	Log LogConfig `json:"log" mapstructure:"log"`

	// Publish contains the object storage target for static assets.
	Publish PublishConfig `json:"publish" mapstructure:"publish"`

	// root is the project directory the config was loaded for.
	root string
}

// PathsConfig contains project source paths, relative to the project root.
type PathsConfig struct {
	// App is the directory scanned for page and layout files.
	App string `json:"app" mapstructure:"app"`

	// Public is copied verbatim into the static output directory.
	Public string `json:"public" mapstructure:"public"`

	// ServerMain is the Go package compiled into the server binary.
	ServerMain string `json:"serverMain" mapstructure:"serverMain"`

	// ClientMain is the Go package compiled to WebAssembly for the browser.
	// The client step skips it when the directory does not exist.
	ClientMain string `json:"clientMain" mapstructure:"clientMain"`
}

// BuildConfig contains build output settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `json:"output" mapstructure:"output"`

	// Manifest is the routes manifest file name inside Output.
	Manifest string `json:"manifest" mapstructure:"manifest"`

	// ClientManifest is the client manifest file name inside Output.
	ClientManifest string `json:"clientManifest" mapstructure:"clientManifest"`

	// Server is the compiled server binary name inside Output.
	Server string `json:"server" mapstructure:"server"`
}

// ServerConfig contains server settings.
type ServerConfig struct {
	Host    string `json:"host" mapstructure:"host"`
	SSRPort int    `json:"ssrPort" mapstructure:"ssrPort"`
	RSCPort int    `json:"rscPort" mapstructure:"rscPort"`

	// RSCURL is the upstream the SSR server proxies component streams to.
	RSCURL string `json:"rscUrl" mapstructure:"rscUrl"`

	RSCEndpoint  string `json:"rscEndpoint" mapstructure:"rscEndpoint"`
	StaticPrefix string `json:"staticPrefix" mapstructure:"staticPrefix"`

	// Compress gzips HTML documents. Component streams are never compressed.
	Compress bool `json:"compress" mapstructure:"compress"`

	// StrictLayouts fails a request when a layout component is missing
	// instead of skipping it.
	StrictLayouts bool `json:"strictLayouts" mapstructure:"strictLayouts"`

	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool `json:"metrics" mapstructure:"metrics"`

	// TrustedProxies may report client addresses in forwarding headers.
	TrustedProxies []string `json:"trustedProxies,omitempty" mapstructure:"trustedProxies"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	JSON  bool   `json:"json" mapstructure:"json"`
}

// PublishConfig contains the S3 target for mfext publish.
type PublishConfig struct {
	Bucket   string `json:"bucket,omitempty" mapstructure:"bucket"`
	Prefix   string `json:"prefix,omitempty" mapstructure:"prefix"`
	Region   string `json:"region,omitempty" mapstructure:"region"`
	Endpoint string `json:"endpoint,omitempty" mapstructure:"endpoint"`
}

// New creates a new Config with default values rooted at the working
// directory.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			App:        "app",
			Public:     "public",
			ServerMain: "./cmd/server",
			ClientMain: "./cmd/client",
		},
		Build: BuildConfig{
			Output:         DefaultOutput,
			Manifest:       "app-routes-manifest.json",
			ClientManifest: "client-manifest.json",
			Server:         "server",
		},
		Server: ServerConfig{
			Host:         DefaultHost,
			SSRPort:      DefaultSSRPort,
			RSCPort:      DefaultRSCPort,
			RSCURL:       "http://localhost:" + strconv.Itoa(DefaultRSCPort),
			RSCEndpoint:  DefaultRSCEndpoint,
			StaticPrefix: DefaultStaticPrefix,
			Metrics:      true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Publish: PublishConfig{
			Region: "us-east-1",
		},
	}
}

// Loader reads mfext.json through viper so environment variables and bound
// command-line flags override file values.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with every default registered.
func NewLoader() *Loader {
	v := viper.New()
	d := New()

	v.SetDefault("paths.app", d.Paths.App)
	v.SetDefault("paths.public", d.Paths.Public)
	v.SetDefault("paths.serverMain", d.Paths.ServerMain)
	v.SetDefault("paths.clientMain", d.Paths.ClientMain)
	v.SetDefault("build.output", d.Build.Output)
	v.SetDefault("build.manifest", d.Build.Manifest)
	v.SetDefault("build.clientManifest", d.Build.ClientManifest)
	v.SetDefault("build.server", d.Build.Server)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.ssrPort", d.Server.SSRPort)
	v.SetDefault("server.rscPort", d.Server.RSCPort)
	v.SetDefault("server.rscUrl", d.Server.RSCURL)
	v.SetDefault("server.rscEndpoint", d.Server.RSCEndpoint)
	v.SetDefault("server.staticPrefix", d.Server.StaticPrefix)
	v.SetDefault("server.compress", d.Server.Compress)
	v.SetDefault("server.strictLayouts", d.Server.StrictLayouts)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag lets a command-line flag override the given config key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads mfext.json from dir if present and returns the merged,
// validated configuration.
func (l *Loader) Load(dir string) (*Config, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.New("E120").Wrap(err)
	}

	path := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		l.v.SetConfigFile(path)
		l.v.SetConfigType("json")
		if err := l.v.ReadInConfig(); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
				WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E120").Wrap(err)
	}
	cfg.root = root
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration for the project in dir.
func Load(dir string) (*Config, error) {
	return NewLoader().Load(dir)
}

// applyDefaults fills in values viper leaves empty, e.g. when a file sets a
// key to an empty string.
func (c *Config) applyDefaults() {
	d := New()

	if c.Paths.App == "" {
		c.Paths.App = d.Paths.App
	}
	if c.Paths.Public == "" {
		c.Paths.Public = d.Paths.Public
	}
	if c.Paths.ServerMain == "" {
		c.Paths.ServerMain = d.Paths.ServerMain
	}
	if c.Build.Output == "" {
		c.Build.Output = d.Build.Output
	}
	if c.Build.Manifest == "" {
		c.Build.Manifest = d.Build.Manifest
	}
	if c.Build.ClientManifest == "" {
		c.Build.ClientManifest = d.Build.ClientManifest
	}
	if c.Build.Server == "" {
		c.Build.Server = d.Build.Server
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.SSRPort == 0 {
		c.Server.SSRPort = d.Server.SSRPort
	}
	if c.Server.RSCPort == 0 {
		c.Server.RSCPort = d.Server.RSCPort
	}
	if c.Server.RSCURL == "" {
		c.Server.RSCURL = "http://" + c.Server.Host + ":" + strconv.Itoa(c.Server.RSCPort)
	}
	if c.Server.RSCEndpoint == "" {
		c.Server.RSCEndpoint = d.Server.RSCEndpoint
	}
	if c.Server.StaticPrefix == "" {
		c.Server.StaticPrefix = d.Server.StaticPrefix
	}
	c.Server.StaticPrefix = "/" + strings.Trim(c.Server.StaticPrefix, "/")
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for _, p := range []int{c.Server.SSRPort, c.Server.RSCPort} {
		if p < 1 || p > 65535 {
			return errors.New("E122").
				WithDetail("Port " + strconv.Itoa(p) + " is outside 1-65535")
		}
	}
	if c.Server.SSRPort == c.Server.RSCPort {
		return errors.New("E122").
			WithDetail("The SSR and RSC servers cannot share port " + strconv.Itoa(c.Server.SSRPort))
	}

	u, err := url.Parse(c.Server.RSCURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("E123").
			WithDetail("Got " + strconv.Quote(c.Server.RSCURL))
	}
	if !strings.HasPrefix(c.Server.RSCEndpoint, "/") {
		return errors.New("E121").
			WithDetail("server.rscEndpoint must start with /")
	}
	return nil
}

// Root returns the project directory.
func (c *Config) Root() string {
	if c.root == "" {
		wd, _ := os.Getwd()
		return wd
	}
	return c.root
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root(), p)
}

// AppPath returns the absolute path of the app directory.
func (c *Config) AppPath() string { return c.resolve(c.Paths.App) }

// PublicPath returns the absolute path of the public source directory.
func (c *Config) PublicPath() string { return c.resolve(c.Paths.Public) }

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string { return c.resolve(c.Build.Output) }

// StaticOutputPath returns the directory served under the static prefix.
func (c *Config) StaticOutputPath() string {
	return filepath.Join(c.OutputPath(), "public")
}

// ManifestPath returns the routes manifest location.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.OutputPath(), c.Build.Manifest)
}

// ClientManifestPath returns the client manifest location.
func (c *Config) ClientManifestPath() string {
	return filepath.Join(c.OutputPath(), c.Build.ClientManifest)
}

// ServerBinaryPath returns the compiled server location.
func (c *Config) ServerBinaryPath() string {
	return filepath.Join(c.OutputPath(), c.Build.Server)
}

// SSRAddress returns the listen address of the SSR server.
func (c *Config) SSRAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.SSRPort)
}

// RSCAddress returns the listen address of the RSC server.
func (c *Config) RSCAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.RSCPort)
}

// FindProjectRoot walks up from startDir to the first directory holding
// mfext.json or go.mod.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{ConfigFileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E140").
				WithDetail("No " + ConfigFileName + " or go.mod found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
