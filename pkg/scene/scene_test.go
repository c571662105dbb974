package scene_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/palette"
	"github.com/matzehuels/traitforge/pkg/scene"
	"github.com/matzehuels/traitforge/pkg/scene/scenetest"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		slots int
		want  scene.Tag
	}{
		{"Horn_STATIC_MAT", 1, scene.Static},
		{"Eyeball_STATIC_MAT", 1, scene.Static},
		{"Eyeball_L", 1, scene.EyeballSurface},
		{"Eyeball_L", 0, scene.EyeballSurface},
		{"Hat", 2, scene.AccessorySurface},
		{"Empty", 0, scene.Plain},
		{"eyeball_lower", 1, scene.AccessorySurface}, // markers are case-sensitive
	}
	for _, tt := range tests {
		if got := scene.Classify(tt.name, tt.slots); got != tt.want {
			t.Errorf("Classify(%q, %d) = %v, want %v", tt.name, tt.slots, got, tt.want)
		}
	}
}

func TestTagString(t *testing.T) {
	if scene.EyeballSurface.String() != "eyeball" || scene.Tag(42).String() != "unknown" {
		t.Error("unexpected tag names")
	}
	text, _ := scene.Static.MarshalText()
	if string(text) != "static" {
		t.Errorf("MarshalText = %q", text)
	}
	var tag scene.Tag
	if err := tag.UnmarshalText([]byte("accessory")); err != nil || tag != scene.AccessorySurface {
		t.Errorf("UnmarshalText(accessory) = %v, %v", tag, err)
	}
	if err := tag.UnmarshalText([]byte("glass")); err == nil {
		t.Error("UnmarshalText should reject unknown names")
	}
}

func TestColorRampSetStop(t *testing.T) {
	r := scene.NewColorRamp(2)
	red := palette.MustHex("FF0000")
	if err := r.SetStop(1, red); err != nil {
		t.Fatal(err)
	}
	if r.Stops[1] != red {
		t.Errorf("stop 1 = %v", r.Stops[1])
	}
	if err := r.SetStop(2, red); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("SetStop(2) error = %v, want LOOKUP", err)
	}
}

func TestObjectMaterialSlots(t *testing.T) {
	o := scene.NewObject("Hat", 1)
	m := &scene.Material{Name: "Accessory_0"}
	if err := o.SetMaterial(0, m); err != nil {
		t.Fatal(err)
	}
	if o.Material(0) != m {
		t.Error("Material(0) should return the assigned material")
	}
	if o.Material(3) != nil {
		t.Error("Material(3) should be nil")
	}
	if err := o.SetMaterial(1, m); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("SetMaterial(1) error = %v, want LOOKUP", err)
	}
}

func TestWalkOrder(t *testing.T) {
	root := scene.NewObject("a", 0,
		scene.NewObject("b", 0, scene.NewObject("c", 0)),
		scene.NewObject("d", 0))

	var names []string
	_ = root.Walk(func(o *scene.Object) error {
		names = append(names, o.Name)
		return nil
	})
	if got := strings.Join(names, ","); got != "a,b,c,d" {
		t.Errorf("Walk order = %s", got)
	}

	v := &scene.Variant{Objects: []*scene.Object{root}}
	if len(v.AllObjects()) != 4 {
		t.Errorf("AllObjects() = %d objects", len(v.AllObjects()))
	}
}

func TestCollections(t *testing.T) {
	s := scenetest.New()

	if s.PatternCount() != scenetest.Patterns {
		t.Errorf("PatternCount() = %d", s.PatternCount())
	}
	for _, marker := range []string{scene.BodyCollection, scene.AccessoryCollection, scene.EyeCollection} {
		if n := len(s.Collection(marker)); n != scenetest.Patterns {
			t.Errorf("%s collection has %d materials", marker, n)
		}
	}
	if s.Collection("Horn") != nil {
		t.Error("unindexed marker should return nil")
	}

	m, err := s.CollectionMaterial(scene.AccessoryCollection, 3)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Accessory_Flat" {
		t.Errorf("accessory 3 = %s", m.Name)
	}
	if _, err := s.CollectionMaterial(scene.EyeCollection, scenetest.Patterns); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("out of range error = %v", err)
	}
}

func TestGroupAndVariantLookup(t *testing.T) {
	s := scenetest.New()

	g, err := s.Group(0)
	if err != nil {
		t.Fatal(err)
	}
	v, err := g.Variant(4)
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "Head_4" {
		t.Errorf("variant = %s", v.Name)
	}
	if _, err := g.Variant(5); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("Variant(5) error = %v", err)
	}
	if _, err := s.Group(6); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("Group(6) error = %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := scenetest.New()
	acc, _ := s.CollectionMaterial(scene.AccessoryCollection, 0)
	shell := s.Parts[0].Variants[0].Objects[0]
	tip := shell.Children[0].Children[0]
	shell.Slots[0] = acc
	tip.Slots[0] = acc

	c := s.Clone()

	cshell := c.Parts[0].Variants[0].Objects[0]
	ctip := cshell.Children[0].Children[0]
	if cshell == shell || cshell.Slots[0] == acc {
		t.Fatal("clone shares objects or materials with the original")
	}
	if cshell.Slots[0] != ctip.Slots[0] {
		t.Error("clone should keep material sharing")
	}
	cacc, _ := c.CollectionMaterial(scene.AccessoryCollection, 0)
	if cacc != cshell.Slots[0] {
		t.Error("clone collections should point at cloned materials")
	}

	c.Parts[0].Variants[0].Hidden = true
	_ = cacc.Ramp.SetStop(0, palette.MustHex("000000"))
	if s.Parts[0].Variants[0].Hidden {
		t.Error("hiding in the clone changed the original")
	}
	if acc.Ramp.Stops[0] == cacc.Ramp.Stops[0] {
		t.Error("ramp change in the clone changed the original")
	}
}

func TestCheckBank(t *testing.T) {
	if err := scene.CheckBank(scenetest.New(), scenetest.Bank()); err != nil {
		t.Errorf("fixture should match its bank: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*scene.Scene) dna.Bank
	}{
		{"too many patterns", func(s *scene.Scene) dna.Bank { return dna.DefaultBank(scenetest.Patterns + 1) }},
		{"missing variant", func(s *scene.Scene) dna.Bank {
			s.Parts[1].Variants = s.Parts[1].Variants[:4]
			return scenetest.Bank()
		}},
		{"too few groups", func(s *scene.Scene) dna.Bank {
			s.Parts = s.Parts[:4]
			return scenetest.Bank()
		}},
		{"no body", func(s *scene.Scene) dna.Bank {
			s.Body = nil
			return scenetest.Bank()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scenetest.New()
			bank := tt.mutate(s)
			if err := scene.CheckBank(s, bank); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("CheckBank error = %v, want INVALID_CONFIG", err)
			}
		})
	}

	// The pattern group is optional.
	s := scenetest.New()
	s.Parts = s.Parts[:5]
	if err := scene.CheckBank(s, scenetest.Bank()); err != nil {
		t.Errorf("five trait groups should be accepted: %v", err)
	}
}

func TestCheckBankUnusedCollections(t *testing.T) {
	// without rebuilds s with one material collection removed.
	without := func(s *scene.Scene, marker string) *scene.Scene {
		var kept []*scene.Material
		for _, m := range s.Materials {
			if !strings.HasPrefix(m.Name, marker+"_") {
				kept = append(kept, m)
			}
		}
		return scene.New(s.Body, s.Parts, kept)
	}
	retag := func(s *scene.Scene, from scene.Tag) {
		for _, g := range s.Parts {
			for _, v := range g.Variants {
				for _, o := range v.AllObjects() {
					if o.Tag == from {
						o.Tag = scene.Static
					}
				}
			}
		}
	}

	for _, tt := range []struct {
		marker string
		tag    scene.Tag
	}{
		{scene.EyeCollection, scene.EyeballSurface},
		{scene.AccessoryCollection, scene.AccessorySurface},
	} {
		t.Run(tt.marker, func(t *testing.T) {
			s := without(scenetest.New(), tt.marker)
			if err := scene.CheckBank(s, scenetest.Bank()); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("%s objects without %s materials: error = %v, want INVALID_CONFIG", tt.tag, tt.marker, err)
			}

			retag(s, tt.tag)
			if err := scene.CheckBank(s, scenetest.Bank()); err != nil {
				t.Errorf("no %s objects, so %s materials are not needed: %v", tt.tag, tt.marker, err)
			}
		})
	}

	// Body materials are always required.
	s := without(scenetest.New(), scene.BodyCollection)
	if err := scene.CheckBank(s, scenetest.Bank()); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing body materials: error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad(t *testing.T) {
	s, err := scene.Load(filepath.Join("testdata", "scene.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Body.Name != "Body" || s.Body.Material(0) == nil || s.Body.Material(0).Name != "Body_Stripes" {
		t.Errorf("body = %+v", s.Body)
	}
	if len(s.Parts) != 2 || len(s.Parts[0].Variants) != 2 {
		t.Fatalf("parts = %d", len(s.Parts))
	}

	shell := s.Parts[0].Variants[0].Objects[0]
	if shell.Tag != scene.AccessorySurface {
		t.Errorf("shell tag = %v", shell.Tag)
	}
	horn := shell.Children[0]
	if horn.Tag != scene.Static || horn.Material(0).Name != "Horn_Bone" {
		t.Errorf("horn = %+v", horn)
	}
	eyeball := s.Parts[1].Variants[0].Objects[0].Children[0]
	if eyeball.Tag != scene.EyeballSurface {
		t.Errorf("eyeball tag = %v", eyeball.Tag)
	}

	eye, _ := s.Material("Eye_Stripes")
	if eye.Ramp == nil || eye.Ramp.Len() != 3 {
		t.Errorf("eye material ramp = %+v", eye.Ramp)
	}
	bone, _ := s.Material("Horn_Bone")
	if bone.Ramp != nil {
		t.Error("Horn_Bone should have no ramp")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", "[[parts"},
		{"unknown key", "colour = 1"},
		{"unknown material", "[body]\nmaterials = [\"Nope\"]"},
		{"duplicate material", "[[materials]]\nname = \"A\"\n[[materials]]\nname = \"A\""},
		{"unnamed group", "[[parts]]\n"},
		{"unnamed object", "[[parts]]\nname = \"Head\"\n[[parts.variants]]\nname = \"H\"\n[[parts.variants.objects]]\nslots = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := scene.Decode(strings.NewReader(tt.input)); !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("Decode error = %v, want PARSE", err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := scene.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDecodeDefaultsBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte("[[materials]]\nname = \"Body_A\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := scene.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Body.Name != scene.DefaultBodyName || len(s.Body.Slots) != 1 {
		t.Errorf("default body = %+v", s.Body)
	}
}

func TestSnapshot(t *testing.T) {
	s := scenetest.New()
	s.Parts[0].Variants[1].Hidden = true
	body, _ := s.CollectionMaterial(scene.BodyCollection, 2)
	s.Body.Slots[0] = body
	_ = body.Ramp.SetStop(0, palette.MustHex("FF0000"))

	st := s.Snapshot()

	if st.Body.Materials[0] != "Body_2" {
		t.Errorf("body materials = %v", st.Body.Materials)
	}
	visible := st.Visible()
	if len(visible["Head"]) != 4 {
		t.Errorf("visible heads = %v", visible["Head"])
	}
	ms, ok := st.Material("Body_2")
	if !ok {
		t.Fatal("Body_2 missing from snapshot")
	}
	if ms.Hex[0] != "#ff0000" || ms.Hex[1] != "#ffffff" {
		t.Errorf("Body_2 hex = %v", ms.Hex)
	}
	horn := st.Parts[0].Variants[0].Objects[0].Children[0]
	if horn.Tag != scene.Static || horn.Materials[0] != "Authored" {
		t.Errorf("horn state = %+v", horn)
	}
	if _, ok := st.Material("nope"); ok {
		t.Error("unknown material should not be found")
	}
}
