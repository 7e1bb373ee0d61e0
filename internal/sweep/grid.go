package sweep

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadGrid = errors.New("sweep: invalid grid")

// Axis is one transaction and the rate values to try for it.
type Axis struct {
	Transaction string
	Values      []float64
}

// ParseAxis reads "id=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	id, list, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" || strings.TrimSpace(list) == "" {
		return Axis{}, fmt.Errorf("%w: %q, want id=v1,v2", ErrBadGrid, s)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: %q: %v", ErrBadGrid, s, err)
		}
		values = append(values, v)
	}
	return Axis{Transaction: id, Values: values}, nil
}

// Grid expands axes into their cartesian product. The last axis varies
// fastest.
func Grid(axes ...Axis) ([]Variant, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes", ErrBadGrid)
	}
	seen := make(map[string]bool, len(axes))
	for _, a := range axes {
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: axis %q has no values", ErrBadGrid, a.Transaction)
		}
		if seen[a.Transaction] {
			return nil, fmt.Errorf("%w: axis %q repeated", ErrBadGrid, a.Transaction)
		}
		seen[a.Transaction] = true
	}

	var out []Variant
	expand(axes, 0, map[string]float64{}, &out)
	return out, nil
}

func expand(axes []Axis, depth int, current map[string]float64, out *[]Variant) {
	if depth == len(axes) {
		rates := make(map[string]float64, len(current))
		parts := make([]string, 0, len(axes))
		for _, a := range axes {
			rates[a.Transaction] = current[a.Transaction]
			parts = append(parts, a.Transaction+"="+strconv.FormatFloat(current[a.Transaction], 'g', -1, 64))
		}
		*out = append(*out, Variant{Name: strings.Join(parts, ","), Rates: rates})
		return
	}

	axis := axes[depth]
	for _, v := range axis.Values {
		current[axis.Transaction] = v
		expand(axes, depth+1, current, out)
	}
}
