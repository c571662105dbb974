package scene

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/traitforge/pkg/errors"
)

// description is the TOML form of a scene.
type description struct {
	Materials []materialDesc `toml:"materials"`
	Body      objectDesc     `toml:"body"`
	Parts     []groupDesc    `toml:"parts"`
}

type materialDesc struct {
	Name      string `toml:"name"`
	RampStops int    `toml:"ramp_stops"`
}

type objectDesc struct {
	Name      string       `toml:"name"`
	Slots     int          `toml:"slots"`
	Materials []string     `toml:"materials"`
	Children  []objectDesc `toml:"children"`
}

type variantDesc struct {
	Name    string       `toml:"name"`
	Objects []objectDesc `toml:"objects"`
}

type groupDesc struct {
	Name     string        `toml:"name"`
	Variants []variantDesc `toml:"variants"`
}

// Decode reads a TOML scene description.
//
//	[[materials]]
//	name = "Body_Stripes"
//	ramp_stops = 2
//
//	[body]
//	name = "Body"
//
//	[[parts]]
//	name = "Head"
//	  [[parts.variants]]
//	  name = "Head_0"
//	    [[parts.variants.objects]]
//	    name = "Horn"
//	    slots = 1
//
// The body defaults to an object named "Body" with one slot. Objects that
// list initial materials get at least that many slots.
func Decode(r io.Reader) (*Scene, error) {
	var d description
	md, err := toml.NewDecoder(r).Decode(&d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode scene description")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeParse, "unknown scene key %q", undecoded[0].String())
	}
	return d.build()
}

// Load reads a TOML scene description from path.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open scene file %s", path)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "scene file %s", path)
	}
	return s, nil
}

func (d *description) build() (*Scene, error) {
	library := make(map[string]*Material, len(d.Materials))
	materials := make([]*Material, 0, len(d.Materials))
	for i, md := range d.Materials {
		if md.Name == "" {
			return nil, errors.New(errors.ErrCodeParse, "materials[%d] has no name", i)
		}
		if _, dup := library[md.Name]; dup {
			return nil, errors.New(errors.ErrCodeParse, "duplicate material %q", md.Name)
		}
		if md.RampStops < 0 {
			return nil, errors.New(errors.ErrCodeParse, "material %q has negative ramp_stops", md.Name)
		}
		m := &Material{Name: md.Name}
		if md.RampStops > 0 {
			m.Ramp = NewColorRamp(md.RampStops)
		}
		library[md.Name] = m
		materials = append(materials, m)
	}

	bodyDesc := d.Body
	if bodyDesc.Name == "" {
		bodyDesc.Name = DefaultBodyName
	}
	if bodyDesc.Slots == 0 {
		bodyDesc.Slots = 1
	}
	body, err := buildObject(bodyDesc, library)
	if err != nil {
		return nil, err
	}

	parts := make([]*TraitGroup, 0, len(d.Parts))
	for gi, gd := range d.Parts {
		if gd.Name == "" {
			return nil, errors.New(errors.ErrCodeParse, "parts[%d] has no name", gi)
		}
		g := &TraitGroup{Name: gd.Name}
		for _, vd := range gd.Variants {
			v := &Variant{Name: vd.Name}
			for _, od := range vd.Objects {
				o, err := buildObject(od, library)
				if err != nil {
					return nil, err
				}
				v.Objects = append(v.Objects, o)
			}
			g.Variants = append(g.Variants, v)
		}
		parts = append(parts, g)
	}

	return New(body, parts, materials), nil
}

func buildObject(od objectDesc, library map[string]*Material) (*Object, error) {
	if od.Name == "" {
		return nil, errors.New(errors.ErrCodeParse, "object has no name")
	}
	if od.Slots < 0 {
		return nil, errors.New(errors.ErrCodeParse, "object %q has negative slots", od.Name)
	}
	o := NewObject(od.Name, max(od.Slots, len(od.Materials)))
	for i, name := range od.Materials {
		m, ok := library[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeParse, "object %q references unknown material %q", od.Name, name)
		}
		o.Slots[i] = m
	}
	for _, cd := range od.Children {
		c, err := buildObject(cd, library)
		if err != nil {
			return nil, err
		}
		o.Children = append(o.Children, c)
	}
	return o, nil
}
