package scene

import (
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
)

// CheckBank reports whether the scene has the shape the slot sizes promise:
//   - one trait group per physical part slot, plus an optional Pattern group
//   - exactly bank[i] variants in trait group i
//   - at least bank[Pattern] body materials, and as many accessory or eye
//     materials when a part object takes one
//   - a body object with a material slot
func CheckBank(s *Scene, bank dna.Bank) error {
	if s.Body == nil || len(s.Body.Slots) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scene has no body object with a material slot")
	}

	physical := int(dna.Eye) + 1
	if len(s.Parts) < physical || len(s.Parts) > int(dna.Pattern)+1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"scene has %d trait groups, want %d or %d", len(s.Parts), physical, physical+1)
	}
	for i, g := range s.Parts {
		slot := dna.Slot(i)
		if len(g.Variants) != bank.Size(slot) {
			return errors.New(errors.ErrCodeInvalidConfig,
				"trait group %q has %d variants but slot %s has size %d", g.Name, len(g.Variants), slot, bank.Size(slot))
		}
	}

	patterns := bank.Size(dna.Pattern)
	for _, marker := range usedCollections(s) {
		if n := len(s.Collection(marker)); n < patterns {
			return errors.New(errors.ErrCodeInvalidConfig,
				"scene has %d %s materials but slot pattern has size %d", n, marker, patterns)
		}
	}
	return nil
}

// usedCollections lists the material collections configuration draws from:
// always the body collection, plus the accessory and eye collections when
// some part object carries the matching tag.
func usedCollections(s *Scene) []string {
	var accessory, eye bool
	for i, g := range s.Parts {
		if !dna.Slot(i).IsPart() {
			continue
		}
		for _, v := range g.Variants {
			for _, o := range v.AllObjects() {
				switch o.Tag {
				case AccessorySurface:
					accessory = true
				case EyeballSurface:
					eye = true
				}
			}
		}
	}
	out := []string{BodyCollection}
	if accessory {
		out = append(out, AccessoryCollection)
	}
	if eye {
		out = append(out, EyeCollection)
	}
	return out
}
