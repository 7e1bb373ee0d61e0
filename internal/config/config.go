package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ratenet/internal/catalog"
	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/experiment"
	"github.com/san-kum/ratenet/internal/network"
)

const (
	DefaultModel  = "sir"
	DefaultMethod = "rk45"
	DefaultT1     = 365.0
	DefaultDt     = 0.1
)

var (
	ErrInvalidConfig  = errors.New("config: invalid")
	ErrUnknownSpecies = errors.New("config: unknown species")
)

// Config is a run description as stored in YAML run files.
type Config struct {
	Model    string  `yaml:"model"`
	Method   string  `yaml:"method"`
	T0       float64 `yaml:"t0"`
	T1       float64 `yaml:"t1"`
	Dt       float64 `yaml:"dt,omitempty"`
	RelTol   float64 `yaml:"rtol,omitempty"`
	AbsTol   float64 `yaml:"atol,omitempty"`
	MaxStep  float64 `yaml:"max_step,omitempty"`
	MaxSteps int     `yaml:"max_steps,omitempty"`
	// Initial values keyed by species id. Species left out keep the
	// model's default.
	Initial map[string]float64 `yaml:"initial,omitempty"`
	// Rates overrides rate constants keyed by transaction id.
	Rates map[string]float64 `yaml:"rates,omitempty"`
}

func DefaultConfig() *Config {
	opts := dynamo.DefaultOptions()
	return &Config{
		Model:    DefaultModel,
		Method:   DefaultMethod,
		T0:       0,
		T1:       DefaultT1,
		Dt:       DefaultDt,
		RelTol:   opts.RelTol,
		AbsTol:   opts.AbsTol,
		MaxStep:  opts.MaxStep,
		MaxSteps: opts.MaxSteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Initial = cloneMap(c.Initial)
	out.Rates = cloneMap(c.Rates)
	return &out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Method {
	case "rk45":
		if !(c.RelTol > 0) || !(c.AbsTol > 0) {
			return fmt.Errorf("%w: rtol and atol must be positive", ErrInvalidConfig)
		}
	case "rk4", "euler":
		if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
			return fmt.Errorf("%w: method %s needs dt > 0, got %g", ErrInvalidConfig, c.Method, c.Dt)
		}
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, c.Method)
	}
	if !finite(c.T0) || !finite(c.T1) || !(c.T1 > c.T0) {
		return fmt.Errorf("%w: empty time span [%g, %g]", ErrInvalidConfig, c.T0, c.T1)
	}
	if c.MaxSteps < 0 || c.MaxStep < 0 {
		return fmt.Errorf("%w: step limits must not be negative", ErrInvalidConfig)
	}
	for id, r := range c.Rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: rate %s=%g", ErrInvalidConfig, id, r)
		}
	}
	return nil
}

// InitialState builds the initial vector in net's species order: the
// catalog default for the model (zeros for unknown models) overlaid with
// c.Initial.
func (c *Config) InitialState(net *network.Network) ([]float64, error) {
	species := net.Species()
	x0, err := catalog.InitialState(c.Model)
	if err != nil || len(x0) != len(species) {
		x0 = make([]float64, len(species))
	}
	for id, v := range c.Initial {
		i := net.SpeciesIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q not in %v", ErrUnknownSpecies, id, species)
		}
		x0[i] = v
	}
	return x0, nil
}

// Options maps the tolerance fields onto solver options. Zero fields keep
// the solver defaults.
func (c *Config) Options() dynamo.Options {
	opts := dynamo.DefaultOptions()
	if c.RelTol > 0 {
		opts.RelTol = c.RelTol
	}
	if c.AbsTol > 0 {
		opts.AbsTol = c.AbsTol
	}
	if c.MaxSteps > 0 {
		opts.MaxSteps = c.MaxSteps
	}
	if c.MaxStep > 0 {
		opts.MaxStep = c.MaxStep
	}
	return opts
}

// Experiment validates c against net and returns the experiment
// configuration for it.
func (c *Config) Experiment(net *network.Network) (experiment.Config, error) {
	if err := c.Validate(); err != nil {
		return experiment.Config{}, err
	}
	x0, err := c.InitialState(net)
	if err != nil {
		return experiment.Config{}, err
	}
	return experiment.Config{
		Model:     c.Model,
		Method:    c.Method,
		InitState: x0,
		T0:        c.T0,
		T1:        c.T1,
		Dt:        c.Dt,
		Options:   c.Options(),
		Rates:     cloneMap(c.Rates),
	}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
