// Package configure applies DNA vectors to a scene.
//
// Configuring a character is three passes over the scene, always in this
// order:
//
//  1. [Configurator.Configure] assigns the pattern material to the body and
//     to every object of the selected physical part variants, and writes the
//     color combination into the materials' color ramps.
//  2. [Configurator.HideAll] hides every variant of every trait group.
//  3. [Configurator.RevealSelected] shows the selected variant of trait
//     groups 0 through 5.
//
// [Configurator.Apply] runs all three. Materials are shared library entries,
// so writing a ramp affects every object using that material, exactly as it
// does in the host.
package configure

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/palette"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// lastRevealed is the highest trait group index RevealSelected touches.
// The Color slot that follows has no variants.
const lastRevealed = int(dna.Pattern)

// Ramp stop indices written for each kind of material.
var (
	bodyStops      = [2]int{0, 1}
	eyeStops       = [2]int{1, 2}
	accessoryStops = [2]int{0, 1}
)

// Configurator maps DNA onto one scene. It is not safe for concurrent use;
// give each goroutine its own scene clone and Configurator.
type Configurator struct {
	scene  *scene.Scene
	colors *palette.Table
	logger *log.Logger
}

// New returns a configurator for s using the color combinations in colors.
// A nil logger discards output.
func New(s *scene.Scene, colors *palette.Table, logger *log.Logger) *Configurator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Configurator{scene: s, colors: colors, logger: logger}
}

// Scene returns the scene being configured.
func (c *Configurator) Scene() *scene.Scene { return c.scene }

// Apply configures d, hides every variant and reveals the ones d selects.
func (c *Configurator) Apply(d dna.DNA) error {
	if err := c.Configure(d); err != nil {
		return err
	}
	c.HideAll()
	return c.RevealSelected(d)
}

// Configure assigns materials and colors for d.
//
// The body receives Body[d[Pattern]] with ramp stops 0 and 1 set from the
// color combination d[Color]. Then, for every trait group aligned with a
// physical part slot, each object of the selected variant is visited
// depth-first:
//
//   - static objects keep their material
//   - eyeballs receive Eye[d[Pattern]] with ramp stops 1 and 2 set
//   - other objects with a slot receive Accessory[d[Pattern]], with stops 0
//     and 1 set if the material has a ramp
//
// Children are visited whatever their parent's tag. Any index that does not
// exist in the scene or palette is a LOOKUP error.
func (c *Configurator) Configure(d dna.DNA) error {
	pair, err := c.colors.Pair(d[dna.Color])
	if err != nil {
		return err
	}
	pattern := d[dna.Pattern]

	if err := c.configureBody(pattern, pair); err != nil {
		return err
	}

	for i, group := range c.scene.Parts {
		slot := dna.Slot(i)
		if slot >= dna.Color {
			break
		}
		variant, err := group.Variant(d[slot])
		if err != nil {
			return err
		}
		if !slot.IsPart() {
			continue
		}
		for _, o := range variant.Objects {
			if err := o.Walk(func(o *scene.Object) error { return c.apply(o, pattern, pair) }); err != nil {
				return err
			}
		}
	}

	c.logger.Debug("configured character", "dna", d.String(), "pattern", pattern, "color", d[dna.Color])
	return nil
}

func (c *Configurator) configureBody(pattern int, pair palette.Pair) error {
	body := c.scene.Body
	if body == nil {
		return errors.New(errors.ErrCodeLookup, "scene has no body object")
	}
	m, err := c.scene.CollectionMaterial(scene.BodyCollection, pattern)
	if err != nil {
		return err
	}
	if err := body.SetMaterial(0, m); err != nil {
		return err
	}
	if m.Ramp == nil {
		return errors.New(errors.ErrCodeLookup, "body material %q has no color ramp", m.Name)
	}
	return setStops(m.Ramp, bodyStops, pair)
}

// apply assigns the material for a single object. Traversal into children
// is handled by the caller.
func (c *Configurator) apply(o *scene.Object, pattern int, pair palette.Pair) error {
	switch o.Tag {
	case scene.Static, scene.Plain:
		return nil

	case scene.EyeballSurface:
		m, err := c.scene.CollectionMaterial(scene.EyeCollection, pattern)
		if err != nil {
			return err
		}
		if err := o.SetMaterial(0, m); err != nil {
			return err
		}
		if m.Ramp == nil {
			return errors.New(errors.ErrCodeLookup, "eye material %q has no color ramp", m.Name)
		}
		return setStops(m.Ramp, eyeStops, pair)

	case scene.AccessorySurface:
		m, err := c.scene.CollectionMaterial(scene.AccessoryCollection, pattern)
		if err != nil {
			return err
		}
		if err := o.SetMaterial(0, m); err != nil {
			return err
		}
		if m.Ramp == nil {
			return nil
		}
		return setStops(m.Ramp, accessoryStops, pair)
	}
	return nil
}

func setStops(r *scene.ColorRamp, stops [2]int, pair palette.Pair) error {
	if err := r.SetStop(stops[0], pair.First); err != nil {
		return err
	}
	return r.SetStop(stops[1], pair.Second)
}

// HideAll marks every variant of every trait group as not rendering.
func (c *Configurator) HideAll() {
	for _, g := range c.scene.Parts {
		for _, v := range g.Variants {
			v.Hidden = true
		}
	}
}

// RevealSelected shows variant d[i] of trait groups 0 through 5. Groups
// after index 5 are never touched.
func (c *Configurator) RevealSelected(d dna.DNA) error {
	for i, g := range c.scene.Parts {
		if i > lastRevealed {
			break
		}
		v, err := g.Variant(d[i])
		if err != nil {
			return err
		}
		v.Hidden = false
	}
	return nil
}
