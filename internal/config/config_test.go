package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gabrielmiguelok/tabkit/pkg/nav"
	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const yamlPanel = `
style: pill
active: 1
fade: true
parent_id: "42"
base_url: https://example.com
items:
  - title: One
    content: <p>a</p>
  - title: Two
    content: <p>b</p>
    content_id: second
    attributes:
      data-extra: x
    data:
      data-action: /items/%s/load
server:
  address: ":8080"
  allowed_origins: ["https://allowed.com"]
  session_ttl: 2h
log:
  level: debug
`

func TestLoadYAML(t *testing.T) {
	t.Setenv("TABKIT_CONFIG", "")
	c, err := Load(writeFile(t, "panel.yaml", yamlPanel))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if c.Panel.Style != "pill" || c.Panel.Active != 1 || !c.Panel.Fade || c.Panel.ParentID != "42" {
		t.Errorf("Unexpected panel settings: %+v", c.Panel)
	}
	if len(c.Panel.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(c.Panel.Items))
	}
	second := c.Panel.Items[1]
	if second.ContentID != "second" || second.Attributes["data-extra"] != "x" || second.Data["data-action"] != "/items/%s/load" {
		t.Errorf("Unexpected second item: %+v", second)
	}
	if c.Server.Address != ":8080" || c.Server.SessionTTL != 2*time.Hour {
		t.Errorf("Unexpected server settings: %+v", c.Server)
	}
	if len(c.Server.AllowedOrigins) != 1 || c.Server.AllowedOrigins[0] != "https://allowed.com" {
		t.Errorf("Unexpected allowed origins: %v", c.Server.AllowedOrigins)
	}
	if c.Server.MaxMessageSize != Default().Server.MaxMessageSize {
		t.Errorf("Expected default max message size, got %d", c.Server.MaxMessageSize)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Expected debug level, got %q", c.Log.Level)
	}
}

func TestLoadJSONAndTOML(t *testing.T) {
	t.Setenv("TABKIT_CONFIG", "")
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "panel.json",
			content: `{"style": "tab", "items": [{"title": "One", "content": "a"}, {"title": "Two", "content": "b"}]}`,
		},
		{
			name: "toml",
			file: "panel.toml",
			content: `style = "tab"

[[items]]
title = "One"
content = "a"

[[items]]
title = "Two"
content = "b"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(c.Panel.Items) != 2 || c.Panel.Items[1].Title != "Two" {
				t.Errorf("Unexpected items: %+v", c.Panel.Items)
			}
			if c.Server.Address != ":3000" {
				t.Errorf("Expected default address, got %q", c.Server.Address)
			}
		})
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("TABKIT_CONFIG", "")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
	if c.Panel.Style != string(nav.Tab) || c.Server.SessionTTL != 24*time.Hour {
		t.Errorf("Unexpected defaults: %+v", c)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "panel.yaml", yamlPanel)
	t.Setenv("TABKIT_CONFIG", path)
	t.Setenv("TABKIT_SERVER_ADDRESS", ":9999")
	t.Setenv("TABKIT_LOG_JSON", "true")
	t.Setenv("TABKIT_LOG_SOURCE", "true")
	t.Setenv("TABKIT_STYLE", "tab")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Address != ":9999" {
		t.Errorf("Expected env address, got %q", c.Server.Address)
	}
	if !c.Log.JSON || !c.Log.Source {
		t.Errorf("Expected JSON logging with source from env, got %+v", c.Log)
	}
	if c.Panel.Style != "tab" {
		t.Errorf("Expected env style, got %q", c.Panel.Style)
	}
	if len(c.Panel.Items) != 2 {
		t.Errorf("Expected items from TABKIT_CONFIG file, got %d", len(c.Panel.Items))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadItemContentKey(t *testing.T) {
	t.Setenv("TABKIT_CONFIG", "")

	_, err := Load(writeFile(t, "missing.json", `{"items": [{"title": "One", "content": "a"}, {"title": "Two"}]}`))
	var mf *tabbable.MissingFieldError
	if !errors.As(err, &mf) || mf.Index != 1 || mf.Field != "content" {
		t.Errorf("Expected missing content on item 1, got %v", err)
	}
	if !errors.Is(err, tabbable.ErrMissingField) {
		t.Errorf("Expected ErrMissingField, got %v", err)
	}

	c, err := Load(writeFile(t, "empty.yaml", `
items:
  - title: Orders
    content: ""
    data:
      data-action: /orders/%s
`))
	if err != nil {
		t.Fatalf("Empty content should load: %v", err)
	}
	if len(c.Panel.Items) != 1 || c.Panel.Items[0].Content != "" {
		t.Errorf("Unexpected items: %+v", c.Panel.Items)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid", func(c *Config) {}, nil},
		{"unknown style", func(c *Config) { c.Panel.Style = "accordion" }, ErrInvalidStyle},
		{"relative base url", func(c *Config) { c.Panel.BaseURL = "/app" }, ErrInvalidBaseURL},
		{"no address", func(c *Config) { c.Server.Address = "" }, ErrAddressRequired},
		{"zero ttl", func(c *Config) { c.Server.SessionTTL = 0 }, ErrInvalidSessionTTL},
		{"zero message size", func(c *Config) { c.Server.MaxMessageSize = 0 }, ErrInvalidMaxMessageSize},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTabbable(t *testing.T) {
	t.Setenv("TABKIT_CONFIG", "")
	c, err := Load(writeFile(t, "panel.yaml", yamlPanel))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := c.Tabbable()
	if cfg.Style != nav.Pill || cfg.Active != 1 || !cfg.Fade || cfg.ParentID != "42" {
		t.Errorf("Unexpected panel config: %+v", cfg)
	}
	if len(cfg.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(cfg.Items))
	}

	cfg.Items[0].Title = "changed"
	if c.Panel.Items[0].Title != "One" {
		t.Error("Tabbable must not share items with the loaded config")
	}
}

func TestTransportAndLogger(t *testing.T) {
	c := Default()
	c.Server.AllowedOrigins = []string{"https://allowed.com"}
	c.Server.InsecureDevMode = true

	ws := c.Transport()
	if !ws.InsecureDevMode || len(ws.AllowedOrigins) != 1 || ws.MaxMessageSize != c.Server.MaxMessageSize {
		t.Errorf("Unexpected transport config: %+v", ws)
	}

	var buf bytes.Buffer
	c.Log.JSON = true
	logger, err := c.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("Expected JSON log line, got %q", buf.String())
	}

	buf.Reset()
	c.Log.Source = true
	logger, err = c.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	logger.Info("located")
	if !strings.Contains(buf.String(), `"source"`) {
		t.Errorf("Expected source location in log line, got %q", buf.String())
	}

	c.Log.Level = "loud"
	if _, err := c.Logger(&buf); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Expected ErrInvalidLogLevel, got %v", err)
	}
}
