package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/ratenet/internal/catalog"
	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/integrators"
	"github.com/san-kum/ratenet/internal/metrics"
	"github.com/san-kum/ratenet/internal/network"
)

type Registry struct {
	models      map[string]func() *network.Network
	integrators map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() *network.Network),
		integrators: make(map[string]func() dynamo.Stepper),
	}

	for _, name := range catalog.Names() {
		r.models[name] = func() *network.Network {
			net, _ := catalog.Build(name)
			return net
		}
	}

	r.integrators["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Stepper { return integrators.NewRK45() }

	return r
}

// RegisterModel adds or replaces a model constructor.
func (r *Registry) RegisterModel(name string, fn func() *network.Network) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (*network.Network, error) {
	fn, ok := r.models[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownModel, name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics tracks population drift, the peak of every infected
// compartment and the final value of every species.
func (r *Registry) DefaultMetrics(net *network.Network) []dynamo.Metric {
	ms := []dynamo.Metric{metrics.NewConservation()}
	for i, s := range net.Species() {
		if strings.HasPrefix(s, "I") {
			ms = append(ms, metrics.NewPeak(s, i))
		}
	}
	for i, s := range net.Species() {
		ms = append(ms, metrics.NewFinal(s, i))
	}
	return ms
}
