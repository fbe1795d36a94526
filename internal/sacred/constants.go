package sacred

import "math"

// Sacred constants used across all field derivations.
var (
	// Phi is the golden ratio (1.618...).
	Phi = (1 + math.Sqrt(5)) / 2
	// Sqrt3 appears in the vesica piscis and star tetrahedron geometry.
	Sqrt3 = math.Sqrt(3)
)

// SchumannResonance is Earth's primary resonance frequency in Hz and the
// default frequency for every intention.
const SchumannResonance = 7.83

// Fibonacci holds the reference sequence used for amplification multipliers.
var Fibonacci = []int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233, 377, 610, 987}

// MetatronSequence is Tesla's 3-6-9 sequence cycled over the 13 spheres.
var MetatronSequence = []int{3, 6, 9, 12, 15, 18, 21, 24, 27, 30, 33, 36, 39, 42, 45, 48}

// Solfeggio holds the solfeggio frequencies in ascending order.
var Solfeggio = []int{396, 417, 528, 639, 741, 852, 963}

type PlanetaryAngle struct {
	Planet string
	Degree float64
}

// PlanetaryAngles maps planets to angular positions. Order matters:
// nearest-entry ties resolve to the earliest planet in this list.
var PlanetaryAngles = []PlanetaryAngle{
	{"sun", 0},
	{"moon", 30},
	{"mercury", 60},
	{"venus", 90},
	{"mars", 120},
	{"jupiter", 150},
	{"saturn", 180},
	{"uranus", 210},
	{"neptune", 240},
	{"pluto", 270},
}

// FieldType names a sacred geometry derivation.
type FieldType string

const (
	FieldTorus        FieldType = "torus"
	FieldMerkaba      FieldType = "merkaba"
	FieldMetatron     FieldType = "metatron"
	FieldSriYantra    FieldType = "sri_yantra"
	FieldFlowerOfLife FieldType = "flower_of_life"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTorus, FieldMerkaba, FieldMetatron, FieldSriYantra, FieldFlowerOfLife:
		return true
	}
	return false
}
