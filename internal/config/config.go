// Package config loads panel files and server settings for the tabkit
// command. Files may be YAML, JSON or TOML; every scalar setting can be
// overridden from the environment with the TABKIT_ prefix, for example
// TABKIT_SERVER_ADDRESS or TABKIT_LOG_LEVEL.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gabrielmiguelok/tabkit/pkg/logging"
	"github.com/gabrielmiguelok/tabkit/pkg/nav"
	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
	"github.com/gabrielmiguelok/tabkit/pkg/transport"
	"github.com/gabrielmiguelok/tabkit/pkg/urlfmt"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TABKIT"

// Config combines the panel definition with server and log settings.
// Panel keys live at the top level of the file.
type Config struct {
	Panel  PanelConfig  `mapstructure:",squash"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// PanelConfig describes one tabbed panel.
type PanelConfig struct {
	Style    string          `mapstructure:"style"`
	Active   int             `mapstructure:"active"`
	Fade     bool            `mapstructure:"fade"`
	ParentID string          `mapstructure:"parent_id"`
	BaseURL  string          `mapstructure:"base_url"`
	Items    []tabbable.Item `mapstructure:"items"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	InsecureDevMode bool          `mapstructure:"insecure_dev"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	JSON   bool   `mapstructure:"json"`
	Source bool   `mapstructure:"source"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	ws := transport.DefaultConfig()
	return Config{
		Panel: PanelConfig{
			Style: string(nav.Tab),
		},
		Server: ServerConfig{
			Address:        ":3000",
			SessionTTL:     24 * time.Hour,
			MaxMessageSize: ws.MaxMessageSize,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path, then applies environment overrides. An empty
// path falls back to $TABKIT_CONFIG; with neither set only defaults and the
// environment apply.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("style", d.Panel.Style)
	v.SetDefault("active", d.Panel.Active)
	v.SetDefault("fade", d.Panel.Fade)
	v.SetDefault("parent_id", d.Panel.ParentID)
	v.SetDefault("base_url", d.Panel.BaseURL)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.insecure_dev", d.Server.InsecureDevMode)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.max_message_size", d.Server.MaxMessageSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.source", d.Log.Source)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := checkItemKeys(v.Get("items")); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// checkItemKeys reports the first item that has no content key. An empty
// content value is allowed; only the absent key is an error.
func checkItemKeys(raw any) error {
	var items []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		items = v
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			} else {
				items = append(items, nil)
			}
		}
	}
	for i, m := range items {
		if m == nil {
			continue
		}
		found := false
		for k := range m {
			if strings.EqualFold(k, "content") {
				found = true
				break
			}
		}
		if !found {
			return &tabbable.MissingFieldError{Index: i, Field: "content"}
		}
	}
	return nil
}

// Validate validates the configuration. Item fields are not checked here;
// Load reports absent content keys and the panel reports missing titles.
func (c Config) Validate() error {
	if _, err := nav.Style(c.Panel.Style).Class(); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStyle, c.Panel.Style)
	}
	if _, err := urlfmt.New(c.Panel.BaseURL); err != nil {
		return errors.Join(ErrInvalidBaseURL, err)
	}
	if c.Server.Address == "" {
		return ErrAddressRequired
	}
	if c.Server.SessionTTL <= 0 {
		return ErrInvalidSessionTTL
	}
	if c.Server.MaxMessageSize <= 0 {
		return ErrInvalidMaxMessageSize
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	return nil
}

// Tabbable builds the panel configuration.
func (c Config) Tabbable() tabbable.Config {
	b := tabbable.NewBuilder()
	if nav.Style(c.Panel.Style) == nav.Pill {
		b.Pills(c.Panel.Items...)
	} else {
		b.Tabs(c.Panel.Items...)
	}
	b.Active(c.Panel.Active).WithParentID(c.Panel.ParentID)
	if c.Panel.Fade {
		b.WithFade()
	}
	return b.Build()
}

// URLFormatter returns the formatter for action URLs.
func (c Config) URLFormatter() (*urlfmt.Formatter, error) {
	return urlfmt.New(c.Panel.BaseURL)
}

// Transport returns the websocket handler settings.
func (c Config) Transport() transport.Config {
	ws := transport.DefaultConfig()
	ws.AllowedOrigins = c.Server.AllowedOrigins
	ws.InsecureDevMode = c.Server.InsecureDevMode
	ws.MaxMessageSize = c.Server.MaxMessageSize
	return ws
}

// Logger builds the logger described by the log settings.
func (c Config) Logger(w io.Writer) (*logging.SlogLogger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	opts := []logging.LoggerOption{logging.WithLevel(level), logging.WithOutput(w)}
	if c.Log.JSON {
		opts = append(opts, logging.WithJSON())
	}
	if c.Log.Source {
		opts = append(opts, logging.WithSource())
	}
	return logging.NewSlogLogger(opts...), nil
}

// Configuration errors.
var (
	ErrInvalidStyle          = configError("style must be tab or pill")
	ErrInvalidBaseURL        = configError("base_url must be empty or an absolute URL")
	ErrAddressRequired       = configError("server address is required")
	ErrInvalidSessionTTL     = configError("session TTL must be positive")
	ErrInvalidMaxMessageSize = configError("max message size must be positive")
	ErrInvalidLogLevel       = configError("log level must be debug, info, warn or error")
)

type configError string

func (e configError) Error() string { return string(e) }
