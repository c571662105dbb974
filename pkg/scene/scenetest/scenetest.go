// Package scenetest builds a small but complete scene for tests.
package scenetest

import (
	"fmt"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// Patterns is the number of body, accessory and eye materials in the
// fixture scene.
const Patterns = 4

// Bank returns the slot sizes matching [New].
func Bank() dna.Bank { return dna.DefaultBank(Patterns) }

// New returns a scene with six trait groups (Head, Arm, Leg, EyeLid, Eye,
// Pattern). Part groups have five variants each, the Pattern group has one
// per pattern.
//
// Variant objects, for trait group G and variant n:
//
//	Head, Arm, Leg:  G_n_Shell (1 slot)
//	                 └── G_n_Horn_STATIC_MAT (1 slot)
//	                     └── G_n_Tip (1 slot)
//	EyeLid:          EyeLid_n (1 slot)
//	Eye:             Eye_n (no slot)
//	                 └── Eyeball_n (1 slot)
//	Pattern:         Pattern_n_Decal (1 slot)
//
// Body and accessory materials have two-stop ramps, eye materials three,
// and "Accessory_Flat" (the last accessory) has no ramp.
func New() *scene.Scene {
	var mats []*scene.Material
	for i := 0; i < Patterns; i++ {
		mats = append(mats, &scene.Material{Name: fmt.Sprintf("Body_%d", i), Ramp: scene.NewColorRamp(2)})
	}
	for i := 0; i < Patterns-1; i++ {
		mats = append(mats, &scene.Material{Name: fmt.Sprintf("Accessory_%d", i), Ramp: scene.NewColorRamp(2)})
	}
	mats = append(mats, &scene.Material{Name: "Accessory_Flat"})
	for i := 0; i < Patterns; i++ {
		mats = append(mats, &scene.Material{Name: fmt.Sprintf("Eye_%d", i), Ramp: scene.NewColorRamp(3)})
	}
	mats = append(mats, &scene.Material{Name: "Authored"})

	authored := mats[len(mats)-1]

	group := func(name string, n int, objects func(i int) []*scene.Object) *scene.TraitGroup {
		g := &scene.TraitGroup{Name: name}
		for i := 0; i < n; i++ {
			g.Variants = append(g.Variants, &scene.Variant{
				Name:    fmt.Sprintf("%s_%d", name, i),
				Objects: objects(i),
			})
		}
		return g
	}
	limb := func(name string) func(int) []*scene.Object {
		return func(i int) []*scene.Object {
			horn := scene.NewObject(fmt.Sprintf("%s_%d_Horn_STATIC_MAT", name, i), 1,
				scene.NewObject(fmt.Sprintf("%s_%d_Tip", name, i), 1))
			horn.Slots[0] = authored
			return []*scene.Object{scene.NewObject(fmt.Sprintf("%s_%d_Shell", name, i), 1, horn)}
		}
	}

	parts := []*scene.TraitGroup{
		group("Head", dna.DefaultPartSize, limb("Head")),
		group("Arm", dna.DefaultPartSize, limb("Arm")),
		group("Leg", dna.DefaultPartSize, limb("Leg")),
		group("EyeLid", dna.DefaultPartSize, func(i int) []*scene.Object {
			return []*scene.Object{scene.NewObject(fmt.Sprintf("EyeLid_%d", i), 1)}
		}),
		group("Eye", dna.DefaultPartSize, func(i int) []*scene.Object {
			return []*scene.Object{scene.NewObject(fmt.Sprintf("Eye_%d", i), 0,
				scene.NewObject(fmt.Sprintf("Eyeball_%d", i), 1))}
		}),
		group("Pattern", Patterns, func(i int) []*scene.Object {
			return []*scene.Object{scene.NewObject(fmt.Sprintf("Pattern_%d_Decal", i), 1)}
		}),
	}

	return scene.New(scene.NewObject(scene.DefaultBodyName, 1), parts, mats)
}
