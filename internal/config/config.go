package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHeight         = 130
	DefaultBackground     = ""
	DefaultResizable      = false
	DefaultColorFromLeft  = "blue"
	DefaultColorFromRight = "red"
	DefaultLazy           = true
	DefaultLog            = false
)

// Config is a fully merged airway configuration.
type Config struct {
	Height          int    `yaml:"height" json:"height"`
	BackgroundColor string `yaml:"backgroundColor" json:"backgroundColor"`
	Resizable       bool   `yaml:"resizable" json:"resizable"`
	ColorFromLeft   string `yaml:"colorFromLeft" json:"colorFromLeft"`
	ColorFromRight  string `yaml:"colorFromRight" json:"colorFromRight"`
	Lazy            bool   `yaml:"lazy" json:"lazy"`
	Log             bool   `yaml:"log" json:"log"`
}

// Options is a partial configuration. Nil fields fall back to defaults.
type Options struct {
	Height          *Height `yaml:"height,omitempty"`
	BackgroundColor *string `yaml:"backgroundColor,omitempty"`
	Resizable       *bool   `yaml:"resizable,omitempty"`
	ColorFromLeft   *string `yaml:"colorFromLeft,omitempty"`
	ColorFromRight  *string `yaml:"colorFromRight,omitempty"`
	Lazy            *bool   `yaml:"lazy,omitempty"`
	Log             *bool   `yaml:"log,omitempty"`
}

// Height is a pixel height. In YAML it may be written as a number or as a
// numeric string with an optional "px" suffix. Fractions are rejected.
type Height int

func (h *Height) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: height must be a scalar, line %d", value.Line)
	}
	s := strings.TrimSpace(value.Value)
	s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("config: height %q is not a number, line %d", value.Value, value.Line)
	}
	if n != math.Trunc(n) {
		return fmt.Errorf("config: height %q is not a whole number of pixels, line %d", value.Value, value.Line)
	}
	if n < math.MinInt || n >= math.MaxInt {
		return fmt.Errorf("config: height %q is out of range, line %d", value.Value, value.Line)
	}
	*h = Height(n)
	return nil
}

// Ptr returns a pointer to v, for filling Options literals.
func Ptr[T any](v T) *T { return &v }

func DefaultConfig() Config {
	return Config{
		Height:          DefaultHeight,
		BackgroundColor: DefaultBackground,
		Resizable:       DefaultResizable,
		ColorFromLeft:   DefaultColorFromLeft,
		ColorFromRight:  DefaultColorFromRight,
		Lazy:            DefaultLazy,
		Log:             DefaultLog,
	}
}

// Merge lays o over the defaults. It never consults a previously merged
// config.
func Merge(o Options) Config {
	c := DefaultConfig()
	if o.Height != nil {
		c.Height = int(*o.Height)
	}
	if o.BackgroundColor != nil {
		c.BackgroundColor = *o.BackgroundColor
	}
	if o.Resizable != nil {
		c.Resizable = *o.Resizable
	}
	if o.ColorFromLeft != nil {
		c.ColorFromLeft = *o.ColorFromLeft
	}
	if o.ColorFromRight != nil {
		c.ColorFromRight = *o.ColorFromRight
	}
	if o.Lazy != nil {
		c.Lazy = *o.Lazy
	}
	if o.Log != nil {
		c.Log = *o.Log
	}
	return c
}

// Override returns o with every field set in top replacing its value.
func (o Options) Override(top Options) Options {
	if top.Height != nil {
		o.Height = top.Height
	}
	if top.BackgroundColor != nil {
		o.BackgroundColor = top.BackgroundColor
	}
	if top.Resizable != nil {
		o.Resizable = top.Resizable
	}
	if top.ColorFromLeft != nil {
		o.ColorFromLeft = top.ColorFromLeft
	}
	if top.ColorFromRight != nil {
		o.ColorFromRight = top.ColorFromRight
	}
	if top.Lazy != nil {
		o.Lazy = top.Lazy
	}
	if top.Log != nil {
		o.Log = top.Log
	}
	return o
}

// Options converts c back into a fully populated Options.
func (c Config) Options() Options {
	return Options{
		Height:          Ptr(Height(c.Height)),
		BackgroundColor: Ptr(c.BackgroundColor),
		Resizable:       Ptr(c.Resizable),
		ColorFromLeft:   Ptr(c.ColorFromLeft),
		ColorFromRight:  Ptr(c.ColorFromRight),
		Lazy:            Ptr(c.Lazy),
		Log:             Ptr(c.Log),
	}
}

// Load reads a partial configuration from a YAML file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, err
	}
	return o, nil
}

func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
