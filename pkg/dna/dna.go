package dna

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/matzehuels/traitforge/pkg/errors"
)

// Slot identifies one position of a DNA vector.
type Slot int

// Trait slots in DNA order.
const (
	Head Slot = iota
	Arm
	Leg
	EyeLid
	Eye
	Pattern
	Color
)

// NumSlots is the length of every DNA vector.
const NumSlots = 7

// Default slot sizes. Pattern has no default: it is the number of body
// material variants in the scene.
const (
	DefaultPartSize  = 5
	DefaultColorSize = 13
)

var slotNames = [NumSlots]string{"head", "arm", "leg", "eyelid", "eye", "pattern", "color"}

// Slots returns all slots in DNA order.
func Slots() []Slot {
	return []Slot{Head, Arm, Leg, EyeLid, Eye, Pattern, Color}
}

// String returns the lowercase slot name used in config files and output.
func (s Slot) String() string {
	if s < 0 || int(s) >= NumSlots {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return slotNames[s]
}

// ParseSlot returns the slot with the given name (case-insensitive).
func ParseSlot(name string) (Slot, error) {
	for i, n := range slotNames {
		if strings.EqualFold(n, name) {
			return Slot(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown slot %q", name)
}

// IsPart reports whether the slot selects a physical part whose objects
// receive accessory and eye materials. Pattern and Color are cosmetic.
func (s Slot) IsPart() bool {
	return s >= Head && s <= Eye
}

// DNA is one trait selection. Being an array, it is comparable and usable
// as a map key, and copies never alias.
type DNA [NumSlots]int

// Get returns the value of slot s.
func (d DNA) Get(s Slot) int { return d[s] }

// String formats d like its JSON form, e.g. "[2,0,4,1,1,3,7]".
func (d DNA) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(']')
	return b.String()
}

// Bank holds the number of choices for each slot, in DNA order.
type Bank [NumSlots]int

// DefaultBank returns the standard slot sizes with the given number of
// pattern (body material) variants.
func DefaultBank(patterns int) Bank {
	return Bank{
		DefaultPartSize, DefaultPartSize, DefaultPartSize,
		DefaultPartSize, DefaultPartSize,
		patterns,
		DefaultColorSize,
	}
}

// Size returns the number of choices for slot s.
func (b Bank) Size(s Slot) int { return b[s] }

// Check reports whether b can produce valid DNA at all: every slot needs at
// least one choice, and Eye must offer exactly as many choices as EyeLid
// since it mirrors it.
func (b Bank) Check() error {
	for _, s := range Slots() {
		if b[s] <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "slot %s must have at least one choice (got %d)", s, b[s])
		}
	}
	if b[Eye] != b[EyeLid] {
		return errors.New(errors.ErrCodeInvalidConfig, "eye size %d must equal eyelid size %d", b[Eye], b[EyeLid])
	}
	return nil
}

// Capacity returns the number of distinct DNA vectors b can produce. The
// Eye slot contributes no factor because it always equals EyeLid. The
// result saturates at the maximum uint64.
func (b Bank) Capacity() uint64 {
	total := uint64(1)
	for _, s := range Slots() {
		if s == Eye {
			continue
		}
		if b[s] <= 0 {
			return 0
		}
		hi, lo := bits.Mul64(total, uint64(b[s]))
		if hi != 0 {
			return ^uint64(0)
		}
		total = lo
	}
	return total
}

// Validate reports whether d is a vector b could have produced.
func (b Bank) Validate(d DNA) error {
	for _, s := range Slots() {
		if d[s] < 0 || d[s] >= b[s] {
			return errors.New(errors.ErrCodeInvalidDNA, "%s: %s value %d out of range [0, %d)", d, s, d[s], b[s])
		}
	}
	if d[Eye] != d[EyeLid] {
		return errors.New(errors.ErrCodeInvalidDNA, "%s: eye %d does not match eyelid %d", d, d[Eye], d[EyeLid])
	}
	return nil
}

// Set is an ordered sequence of unique DNA vectors.
type Set []DNA

// At returns the vector for render job id. Ids are 1-based.
func (s Set) At(id int) (DNA, error) {
	if id < 1 || id > len(s) {
		return DNA{}, errors.New(errors.ErrCodeLookup, "dna id %d out of range [1, %d]", id, len(s))
	}
	return s[id-1], nil
}

// Validate checks every vector against b and reports the first duplicate.
func (s Set) Validate(b Bank) error {
	seen := make(map[DNA]int, len(s))
	for i, d := range s {
		if err := b.Validate(d); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDNA, err, "entry %d", i+1)
		}
		if first, ok := seen[d]; ok {
			return errors.New(errors.ErrCodeInvalidDNA, "entry %d duplicates entry %d (%s)", i+1, first, d)
		}
		seen[d] = i + 1
	}
	return nil
}
