package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
	"github.com/christophergentle/tpsgraph/internal/surface"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by GetConfigPath.
const FileName = "tpsgraph.yaml"

type Config struct {
	Graph   GraphConfig   `yaml:"graph"`
	Style   StyleConfig   `yaml:"style"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
	Publish PublishConfig `yaml:"publish"`
}

type GraphConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	WindowHours      int     `yaml:"window_hours"`
	TickCount        int     `yaml:"tick_count"`
	TickMergePx      *float64 `yaml:"tick_merge_px"`
	DayLabelMergePx  *float64 `yaml:"day_label_merge_px"`
	HourLabelMergePx *float64 `yaml:"hour_label_merge_px"`
	MarginLeft       float64 `yaml:"margin_left"`
	MarginBottom     float64 `yaml:"margin_bottom"`
	Buffer           float64 `yaml:"buffer"`
	Scrollbar        float64 `yaml:"scrollbar"`
	Timezone         string  `yaml:"timezone"`
	GoldenRatio      *bool   `yaml:"golden_ratio"`
	GridLines        *bool   `yaml:"grid_lines"`
}

type StyleConfig struct {
	Background string  `yaml:"background"`
	Bar        string  `yaml:"bar"`
	Axis       string  `yaml:"axis"`
	Grid       string  `yaml:"grid"`
	Text       string  `yaml:"text"`
	FontSize   float64 `yaml:"font_size"`
	Title      string  `yaml:"title"`
}

type StoreConfig struct {
	App           string `yaml:"app"`
	SQLitePath    string `yaml:"sqlite_path"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	RetentionDays int    `yaml:"retention_days"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	RedisAddr       string `yaml:"redis_addr"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type PublishConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found. Please copy tpsgraph.example.yaml to %s", path, FileName)
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// FromValues fills defaults into a partially populated configuration and
// validates it.
func FromValues(c *Config) (*Config, error) {
	out := *c
	out.applyDefaults()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfigFromEnv loads configuration from environment variables (fallback)
func LoadConfigFromEnv() *Config {
	config := &Config{
		Graph: GraphConfig{
			Width:       envInt("TPSGRAPH_WIDTH"),
			Height:      envInt("TPSGRAPH_HEIGHT"),
			WindowHours: envInt("TPSGRAPH_WINDOW_HOURS"),
			Timezone:    os.Getenv("TPSGRAPH_TIMEZONE"),
		},
		Style: StyleConfig{
			Title: os.Getenv("TPSGRAPH_TITLE"),
		},
		Store: StoreConfig{
			App:           os.Getenv("TPSGRAPH_APP"),
			SQLitePath:    os.Getenv("TPSGRAPH_SQLITE_PATH"),
			DynamoDBTable: os.Getenv("TPSGRAPH_DYNAMODB_TABLE"),
		},
		Server: ServerConfig{
			Addr:      os.Getenv("TPSGRAPH_ADDR"),
			RedisAddr: os.Getenv("TPSGRAPH_REDIS_ADDR"),
		},
		Publish: PublishConfig{
			Bucket: os.Getenv("TPSGRAPH_S3_BUCKET"),
			Prefix: os.Getenv("TPSGRAPH_S3_PREFIX"),
		},
	}
	config.applyDefaults()
	return config
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// Try current directory first
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	// Try executable directory
	if exe, err := os.Executable(); err == nil {
		configPath := filepath.Join(filepath.Dir(exe), FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return FileName
}

// Validate checks values defaults cannot repair.
func (c *Config) Validate() error {
	if c.Graph.Width <= 0 || c.Graph.Height <= 0 {
		return fmt.Errorf("graph size must be positive, got %dx%d", c.Graph.Width, c.Graph.Height)
	}
	for name, v := range map[string]*float64{
		"tick_merge_px":       c.Graph.TickMergePx,
		"day_label_merge_px":  c.Graph.DayLabelMergePx,
		"hour_label_merge_px": c.Graph.HourLabelMergePx,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("graph %s must not be negative, got %v", name, *v)
		}
	}
	if _, err := time.LoadLocation(c.Graph.Timezone); err != nil {
		return fmt.Errorf("invalid graph timezone %q: %w", c.Graph.Timezone, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	g := &c.Graph
	if g.Width == 0 {
		g.Width = 800
	}
	if g.Height == 0 {
		g.Height = 500
	}
	if g.WindowHours == 0 {
		g.WindowHours = 24
	}
	if g.TickCount == 0 {
		g.TickCount = graph.DefaultTickCount
	}

	d := graph.DefaultOptions()
	// zero is a valid threshold: it turns merging off
	if g.TickMergePx == nil {
		g.TickMergePx = floatPtr(d.Thresholds.TickMergePx)
	}
	if g.DayLabelMergePx == nil {
		g.DayLabelMergePx = floatPtr(d.Thresholds.DayLabelMergePx)
	}
	if g.HourLabelMergePx == nil {
		g.HourLabelMergePx = floatPtr(d.Thresholds.HourLabelMergePx)
	}
	if g.MarginLeft == 0 {
		g.MarginLeft = d.Margins.Left
	}
	if g.MarginBottom == 0 {
		g.MarginBottom = d.Margins.Bottom
	}
	if g.Buffer == 0 {
		g.Buffer = d.Margins.Buffer
	}
	if g.Scrollbar == 0 {
		g.Scrollbar = d.Margins.Scrollbar
	}
	if g.Timezone == "" {
		g.Timezone = "UTC"
	}
	if g.GoldenRatio == nil {
		g.GoldenRatio = boolPtr(d.GoldenRatio)
	}
	if g.GridLines == nil {
		g.GridLines = boolPtr(d.GridLines)
	}

	if c.Store.App == "" {
		c.Store.App = "default"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "tpsgraph.db"
	}
	if c.Store.DynamoDBTable == "" {
		c.Store.DynamoDBTable = "tpsgraph-history"
	}
	if c.Store.RetentionDays == 0 {
		c.Store.RetentionDays = 7
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.CacheTTLSeconds == 0 {
		c.Server.CacheTTLSeconds = 60
	}
	if c.Publish.Prefix == "" {
		c.Publish.Prefix = "graphs"
	}
}

// RendererOptions builds graph options from the graph section.
func (g *GraphConfig) RendererOptions() (*graph.Options, error) {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", g.Timezone, err)
	}

	o := graph.DefaultOptions()
	o.TickCount = g.TickCount
	if g.TickMergePx != nil {
		o.Thresholds.TickMergePx = *g.TickMergePx
	}
	if g.DayLabelMergePx != nil {
		o.Thresholds.DayLabelMergePx = *g.DayLabelMergePx
	}
	if g.HourLabelMergePx != nil {
		o.Thresholds.HourLabelMergePx = *g.HourLabelMergePx
	}
	o.Margins = graph.Margins{
		Left:      g.MarginLeft,
		Bottom:    g.MarginBottom,
		Buffer:    g.Buffer,
		Scrollbar: g.Scrollbar,
	}
	o.Location = loc
	if g.GoldenRatio != nil {
		o.GoldenRatio = *g.GoldenRatio
	}
	if g.GridLines != nil {
		o.GridLines = *g.GridLines
	}
	return o, nil
}

// Window is the default history span to render.
func (g *GraphConfig) Window() time.Duration {
	return time.Duration(g.WindowHours) * time.Hour
}

// SurfaceStyle converts the style section for the surfaces.
func (s StyleConfig) SurfaceStyle() *surface.Style {
	return &surface.Style{
		Background: s.Background,
		Bar:        s.Bar,
		Axis:       s.Axis,
		Grid:       s.Grid,
		Text:       s.Text,
		FontSize:   s.FontSize,
		Title:      s.Title,
	}
}

// Apps splits the comma-separated app setting. The first app is the
// default one.
func (s StoreConfig) Apps() []string {
	var apps []string
	for _, app := range strings.Split(s.App, ",") {
		if app = strings.TrimSpace(app); app != "" {
			apps = append(apps, app)
		}
	}
	return apps
}

// CacheTTL is the lifetime of cached renders.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(v float64) *float64 {
	return &v
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}
