package scene

import (
	"strings"

	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/palette"
)

// Naming markers recognised by [Classify].
const (
	StaticMarker  = "STATIC_MAT"
	EyeballMarker = "Eyeball"
)

// Material collection markers. A material belongs to every collection whose
// marker occurs in its name.
const (
	BodyCollection      = "Body"
	AccessoryCollection = "Accessory"
	EyeCollection       = "Eye"
)

// DefaultBodyName is the name of the object receiving the pattern material.
const DefaultBodyName = "Body"

// Tag classifies how an object takes part in material assignment.
type Tag int

const (
	// Plain objects have no material slot and are only traversed.
	Plain Tag = iota
	// Static objects keep their authored material.
	Static
	// EyeballSurface objects take the eye material.
	EyeballSurface
	// AccessorySurface objects take the accessory material.
	AccessorySurface
)

var tagNames = map[Tag]string{
	Plain:            "plain",
	Static:           "static",
	EyeballSurface:   "eyeball",
	AccessorySurface: "accessory",
}

// String returns the lowercase tag name.
func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	for tag, name := range tagNames {
		if name == string(b) {
			*t = tag
			return nil
		}
	}
	return errors.New(errors.ErrCodeParse, "unknown object tag %q", b)
}

// Classify derives the tag of an object from its name and its number of
// material slots. The static marker wins over the eyeball marker.
func Classify(name string, slots int) Tag {
	switch {
	case strings.Contains(name, StaticMarker):
		return Static
	case strings.Contains(name, EyeballMarker):
		return EyeballSurface
	case slots > 0:
		return AccessorySurface
	default:
		return Plain
	}
}

// ColorRamp is a gradient node carrying one solid color per stop.
type ColorRamp struct {
	Stops []palette.RGBA
}

// NewColorRamp returns a ramp with n white stops.
func NewColorRamp(n int) *ColorRamp {
	r := &ColorRamp{Stops: make([]palette.RGBA, n)}
	for i := range r.Stops {
		r.Stops[i] = palette.RGBA{R: 1, G: 1, B: 1, A: 1}
	}
	return r
}

// Len returns the number of stops.
func (r *ColorRamp) Len() int { return len(r.Stops) }

// SetStop sets the color of stop i.
func (r *ColorRamp) SetStop(i int, c palette.RGBA) error {
	if i < 0 || i >= len(r.Stops) {
		return errors.New(errors.ErrCodeLookup, "color ramp stop %d out of range [0, %d)", i, len(r.Stops))
	}
	r.Stops[i] = c
	return nil
}

// Material is an entry of the material library. Ramp is nil when the
// material's node tree has no color ramp.
type Material struct {
	Name string
	Ramp *ColorRamp
}

// Object is a renderable object with material slots and child objects.
type Object struct {
	Name     string
	Tag      Tag
	Slots    []*Material
	Children []*Object
}

// NewObject returns an object with the given number of empty material
// slots, classified with [Classify].
func NewObject(name string, slots int, children ...*Object) *Object {
	return &Object{
		Name:     name,
		Tag:      Classify(name, slots),
		Slots:    make([]*Material, slots),
		Children: children,
	}
}

// Material returns the material in slot i, or nil when the slot is empty or
// does not exist.
func (o *Object) Material(i int) *Material {
	if i < 0 || i >= len(o.Slots) {
		return nil
	}
	return o.Slots[i]
}

// SetMaterial assigns m to slot i.
func (o *Object) SetMaterial(i int, m *Material) error {
	if i < 0 || i >= len(o.Slots) {
		return errors.New(errors.ErrCodeLookup, "object %q has no material slot %d", o.Name, i)
	}
	o.Slots[i] = m
	return nil
}

// Walk calls fn for o and then for each descendant, depth-first in child
// order. It stops at the first error.
func (o *Object) Walk(fn func(*Object) error) error {
	if err := fn(o); err != nil {
		return err
	}
	for _, c := range o.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Variant is one choice of a trait group.
type Variant struct {
	Name    string
	Hidden  bool
	Objects []*Object
}

// AllObjects returns every object of the variant, depth-first.
func (v *Variant) AllObjects() []*Object {
	var out []*Object
	for _, o := range v.Objects {
		_ = o.Walk(func(x *Object) error {
			out = append(out, x)
			return nil
		})
	}
	return out
}

// TraitGroup holds the variants of one DNA slot.
type TraitGroup struct {
	Name     string
	Variants []*Variant
}

// Variant returns the variant at position i.
func (g *TraitGroup) Variant(i int) (*Variant, error) {
	if i < 0 || i >= len(g.Variants) {
		return nil, errors.New(errors.ErrCodeLookup, "trait group %q has no variant %d (has %d)", g.Name, i, len(g.Variants))
	}
	return g.Variants[i], nil
}

// Scene is the full part hierarchy plus material library. A Scene is
// mutated by configuration and is not safe for concurrent use; use
// [Scene.Clone] to give each goroutine its own copy.
type Scene struct {
	Body      *Object
	Parts     []*TraitGroup
	Materials []*Material

	body, accessory, eye []*Material
}

// New builds a scene and its material collections.
func New(body *Object, parts []*TraitGroup, materials []*Material) *Scene {
	s := &Scene{Body: body, Parts: parts, Materials: materials}
	s.index()
	return s
}

func (s *Scene) index() {
	s.body, s.accessory, s.eye = nil, nil, nil
	for _, m := range s.Materials {
		if strings.Contains(m.Name, BodyCollection) {
			s.body = append(s.body, m)
		}
		if strings.Contains(m.Name, AccessoryCollection) {
			s.accessory = append(s.accessory, m)
		}
		if strings.Contains(m.Name, EyeCollection) {
			s.eye = append(s.eye, m)
		}
	}
}

// Collection returns the materials whose name contains marker, in library
// order. Only the three standard markers are indexed.
func (s *Scene) Collection(marker string) []*Material {
	switch marker {
	case BodyCollection:
		return s.body
	case AccessoryCollection:
		return s.accessory
	case EyeCollection:
		return s.eye
	}
	return nil
}

// CollectionMaterial returns entry i of the collection named marker.
func (s *Scene) CollectionMaterial(marker string, i int) (*Material, error) {
	col := s.Collection(marker)
	if i < 0 || i >= len(col) {
		return nil, errors.New(errors.ErrCodeLookup, "%s material %d out of range [0, %d)", marker, i, len(col))
	}
	return col[i], nil
}

// PatternCount returns the number of body material variants, which is the
// size of the Pattern slot.
func (s *Scene) PatternCount() int { return len(s.body) }

// Group returns trait group i.
func (s *Scene) Group(i int) (*TraitGroup, error) {
	if i < 0 || i >= len(s.Parts) {
		return nil, errors.New(errors.ErrCodeLookup, "trait group %d out of range [0, %d)", i, len(s.Parts))
	}
	return s.Parts[i], nil
}

// Material returns the library material with the given name.
func (s *Scene) Material(name string) (*Material, bool) {
	for _, m := range s.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of s. Material sharing between objects is
// preserved within the copy.
func (s *Scene) Clone() *Scene {
	mats := make(map[*Material]*Material, len(s.Materials))
	cloneMat := func(m *Material) *Material {
		if m == nil {
			return nil
		}
		if c, ok := mats[m]; ok {
			return c
		}
		c := &Material{Name: m.Name}
		if m.Ramp != nil {
			c.Ramp = &ColorRamp{Stops: append([]palette.RGBA(nil), m.Ramp.Stops...)}
		}
		mats[m] = c
		return c
	}

	var cloneObj func(o *Object) *Object
	cloneObj = func(o *Object) *Object {
		if o == nil {
			return nil
		}
		c := &Object{Name: o.Name, Tag: o.Tag, Slots: make([]*Material, len(o.Slots))}
		for i, m := range o.Slots {
			c.Slots[i] = cloneMat(m)
		}
		for _, ch := range o.Children {
			c.Children = append(c.Children, cloneObj(ch))
		}
		return c
	}

	materials := make([]*Material, len(s.Materials))
	for i, m := range s.Materials {
		materials[i] = cloneMat(m)
	}

	parts := make([]*TraitGroup, len(s.Parts))
	for i, g := range s.Parts {
		cg := &TraitGroup{Name: g.Name, Variants: make([]*Variant, len(g.Variants))}
		for j, v := range g.Variants {
			cv := &Variant{Name: v.Name, Hidden: v.Hidden}
			for _, o := range v.Objects {
				cv.Objects = append(cv.Objects, cloneObj(o))
			}
			cg.Variants[j] = cv
		}
		parts[i] = cg
	}

	return New(cloneObj(s.Body), parts, materials)
}
