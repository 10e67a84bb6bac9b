package sources

import (
	"fmt"

	"github.com/lepinkainen/shamash/internal/source"
)

// Set bundles the domain wrappers of every configured source.
type Set struct {
	Sefaria   *Sefaria
	Hebcal    *Hebcal
	NLI       *NLI
	Chabad    *Chabad
	TorahCalc *TorahCalc
	Dicta     *Dicta
}

// NewSet builds wrappers over the clients of a registry. Every source must
// be present.
func NewSet(r *source.Registry) (*Set, error) {
	get := func(name string) (*source.Client, error) {
		c, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("source %s not configured", name)
		}
		return c, nil
	}

	set := &Set{}
	for _, bind := range []struct {
		name string
		wire func(*source.Client)
	}{
		{"sefaria", func(c *source.Client) { set.Sefaria = NewSefaria(c) }},
		{"hebcal", func(c *source.Client) { set.Hebcal = NewHebcal(c) }},
		{"nli", func(c *source.Client) { set.NLI = NewNLI(c) }},
		{"chabad", func(c *source.Client) { set.Chabad = NewChabad(c) }},
		{"torahcalc", func(c *source.Client) { set.TorahCalc = NewTorahCalc(c) }},
		{"dicta", func(c *source.Client) { set.Dicta = NewDicta(c) }},
	} {
		c, err := get(bind.name)
		if err != nil {
			return nil, err
		}
		bind.wire(c)
	}
	return set, nil
}
