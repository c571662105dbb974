package dna

// Summary describes how often each value of each slot occurs in a set.
type Summary struct {
	Size     int
	Capacity uint64
	// Counts[s][v] is the number of vectors with value v in slot s.
	Counts [NumSlots][]int
}

// Summarize counts slot values of s against the slot sizes of b. Values
// outside the bank are ignored; run [Set.Validate] first to reject them.
func Summarize(s Set, b Bank) Summary {
	sum := Summary{Size: len(s), Capacity: b.Capacity()}
	for _, slot := range Slots() {
		sum.Counts[slot] = make([]int, max(b[slot], 0))
	}
	for _, d := range s {
		for _, slot := range Slots() {
			if v := d[slot]; v >= 0 && v < len(sum.Counts[slot]) {
				sum.Counts[slot][v]++
			}
		}
	}
	return sum
}

// Coverage returns the fraction of the combination space the set uses.
func (s Summary) Coverage() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Capacity)
}
