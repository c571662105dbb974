// Package dna generates and stores trait combinations ("DNA") for a
// character collection.
//
// A [DNA] vector is a fixed-order tuple with one value per trait [Slot]:
// Head, Arm, Leg, EyeLid, Eye, Pattern and Color. A [Bank] holds the number
// of choices available for each slot. Every vector produced by this package
// satisfies two invariants:
//
//   - 0 <= d[s] < bank[s] for every slot s
//   - d[Eye] == d[EyeLid], so eyes always match their eyelids
//
// # Generating
//
// A [Generator] draws each slot independently and uniformly, then copies the
// EyeLid value onto the Eye slot. [Generator.Set] repeats this, keeping the
// first occurrence of every distinct vector, until it has the requested
// number of vectors:
//
//	gen, err := dna.NewGenerator(dna.DefaultBank(12), dna.Options{Seed: 42})
//	set, err := gen.Set(ctx, 1000)
//
// Because the Eye slot is forced, the number of distinct vectors is smaller
// than the product of all slot sizes; see [Bank.Capacity]. Asking for more
// than that fails with an EXHAUSTED error instead of looping forever.
//
// # Storage
//
// A [Set] is persisted as a JSON array of 7-integer arrays, in generation
// order. Position N (1-based) of that array is render job N. Use
// [WriteFile] and [ReadFile], or [WriteJSON] and [ReadJSON] for streams.
package dna
