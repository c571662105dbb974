package scene

import "github.com/matzehuels/traitforge/pkg/palette"

// State is a serializable capture of a configured scene. It is the payload
// a host applies before rendering.
type State struct {
	Body      ObjectState     `json:"body"`
	Parts     []GroupState    `json:"parts"`
	Materials []MaterialState `json:"materials"`
}

// GroupState captures one trait group.
type GroupState struct {
	Name     string         `json:"name"`
	Variants []VariantState `json:"variants"`
}

// VariantState captures one variant and its objects.
type VariantState struct {
	Name    string        `json:"name"`
	Visible bool          `json:"visible"`
	Objects []ObjectState `json:"objects,omitempty"`
}

// ObjectState captures an object's tag and slot assignments. Empty slots
// are recorded as "".
type ObjectState struct {
	Name      string        `json:"name"`
	Tag       Tag           `json:"tag"`
	Materials []string      `json:"materials,omitempty"`
	Children  []ObjectState `json:"children,omitempty"`
}

// MaterialState captures a material's ramp. Stops holds linear values;
// Hex the same colors sRGB-encoded for display.
type MaterialState struct {
	Name  string         `json:"name"`
	Stops []palette.RGBA `json:"stops,omitempty"`
	Hex   []string       `json:"hex,omitempty"`
}

// Snapshot captures the current state of s.
func (s *Scene) Snapshot() State {
	st := State{}
	if s.Body != nil {
		st.Body = snapshotObject(s.Body)
	}
	for _, g := range s.Parts {
		gs := GroupState{Name: g.Name}
		for _, v := range g.Variants {
			vs := VariantState{Name: v.Name, Visible: !v.Hidden}
			for _, o := range v.Objects {
				vs.Objects = append(vs.Objects, snapshotObject(o))
			}
			gs.Variants = append(gs.Variants, vs)
		}
		st.Parts = append(st.Parts, gs)
	}
	for _, m := range s.Materials {
		ms := MaterialState{Name: m.Name}
		if m.Ramp != nil {
			ms.Stops = append([]palette.RGBA(nil), m.Ramp.Stops...)
			for _, c := range m.Ramp.Stops {
				ms.Hex = append(ms.Hex, c.Hex())
			}
		}
		st.Materials = append(st.Materials, ms)
	}
	return st
}

func snapshotObject(o *Object) ObjectState {
	out := ObjectState{Name: o.Name, Tag: o.Tag}
	for _, m := range o.Slots {
		name := ""
		if m != nil {
			name = m.Name
		}
		out.Materials = append(out.Materials, name)
	}
	for _, c := range o.Children {
		out.Children = append(out.Children, snapshotObject(c))
	}
	return out
}

// Visible returns the names of the visible variants of each trait group.
func (st State) Visible() map[string][]string {
	out := make(map[string][]string, len(st.Parts))
	for _, g := range st.Parts {
		names := []string{}
		for _, v := range g.Variants {
			if v.Visible {
				names = append(names, v.Name)
			}
		}
		out[g.Name] = names
	}
	return out
}

// Material returns the state of the named material.
func (st State) Material(name string) (MaterialState, bool) {
	for _, m := range st.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return MaterialState{}, false
}
