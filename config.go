package atlas

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

const (
	DefaultListen       = ":3000"
	DefaultGeoJSONPath  = "../mpk_to_geojson/geojson_dir"
	DefaultPaletteSize  = 12
	DefaultWMSTimeout   = 30 * time.Second
	DefaultBackendURL   = "http://localhost:8000"
	DefaultLayerColor   = "#3b82f6"
	GeoJSONPathEnvVar   = "GEOJSON_PATH"
	defaultWMSUserAgent = "atlas"
)

type Config struct {
	Concurrency int                      `hcl:"concurrency,optional"`
	LogLevel    string                   `hcl:"log_level,optional"`
	Server      *ServerConfigBlock       `hcl:"server,block"`
	GeoJSON     *GeoJSONConfigBlock      `hcl:"geojson,block"`
	WMS         *WMSConfigBlock          `hcl:"wms,block"`
	Backend     *BackendConfigBlock      `hcl:"backend,block"`
	Services    []*WMSServiceConfigBlock `hcl:"wms_service,block"`
}

type ServerConfigBlock struct {
	Listen string `hcl:"listen,optional"`
}

type GeoJSONConfigBlock struct {
	Path        string `hcl:"path,optional"`
	PaletteSize int    `hcl:"palette_size,optional"`
}

type WMSConfigBlock struct {
	Timeout   string `hcl:"timeout,optional"`
	UserAgent string `hcl:"user_agent,optional"`
}

type BackendConfigBlock struct {
	URL string `hcl:"url,optional"`
}

// WMSServiceConfigBlock is a preset WMS service offered to the map UI.
type WMSServiceConfigBlock struct {
	Name   string   `hcl:"name,label"`
	URL    string   `hcl:"url"`
	Title  string   `hcl:"title,optional"`
	Layers []string `hcl:"layers,optional"`
}

var envFunc = function.New(&function.Spec{
	Description: "Returns the value of an environment variable, or the optional default when unset.",
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	VarParam: &function.Parameter{Name: "default", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		if len(args) > 2 {
			return cty.NilVal, fmt.Errorf("env takes at most two arguments")
		}
		if v, ok := os.LookupEnv(args[0].AsString()); ok {
			return cty.StringVal(v), nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return cty.StringVal(""), nil
	},
})

func newHCLEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// DefaultConfig returns a configuration with every block populated.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig decodes the HCL file at path. A missing file is only an error
// when required is set; otherwise the defaults are used.
func LoadConfig(path string, required bool) (*Config, error) {
	var cfg Config

	_, err := os.Stat(path)
	switch {
	case err == nil:
		err = hclsimple.DecodeFile(path, newHCLEvalContext(), &cfg)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, err
	}

	cfg.applyDefaults()
	if v, ok := os.LookupEnv(GeoJSONPathEnvVar); ok && v != "" {
		cfg.GeoJSON.Path = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server == nil {
		c.Server = &ServerConfigBlock{}
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.GeoJSON == nil {
		c.GeoJSON = &GeoJSONConfigBlock{}
	}
	if c.GeoJSON.Path == "" {
		c.GeoJSON.Path = DefaultGeoJSONPath
	}
	if c.GeoJSON.PaletteSize == 0 {
		c.GeoJSON.PaletteSize = DefaultPaletteSize
	}
	if c.WMS == nil {
		c.WMS = &WMSConfigBlock{}
	}
	if c.WMS.UserAgent == "" {
		c.WMS.UserAgent = defaultWMSUserAgent
	}
	if c.Backend == nil {
		c.Backend = &BackendConfigBlock{}
	}
	if c.Backend.URL == "" {
		c.Backend.URL = DefaultBackendURL
	}
}

func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative (got %d)", c.Concurrency)
	}
	if c.GeoJSON.PaletteSize < 0 {
		return fmt.Errorf("geojson.palette_size must not be negative (got %d)", c.GeoJSON.PaletteSize)
	}
	if _, err := c.WMSTimeout(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, svc := range c.Services {
		if seen[svc.Name] {
			return fmt.Errorf("duplicate wms_service %q", svc.Name)
		}
		seen[svc.Name] = true
	}
	return nil
}

// WMSTimeout is the upstream timeout for WMS requests.
func (c *Config) WMSTimeout() (time.Duration, error) {
	if c.WMS == nil || c.WMS.Timeout == "" {
		return DefaultWMSTimeout, nil
	}
	d, err := time.ParseDuration(c.WMS.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid wms.timeout %q: %w", c.WMS.Timeout, err)
	}
	return d, nil
}
