// Package sacred implements the deterministic pattern derivations that turn
// an intention string plus numeric parameters into structured field
// descriptors. Every function is a pure function of its inputs except
// FlowerOfLife, which also reads the current wall-clock time-of-day for its
// planetary alignment.
package sacred

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyIntention = errors.New("intention cannot be empty")
	ErrBadFrequency   = errors.New("frequency must be positive")
	ErrBadDuration    = errors.New("duration must be positive")
)

type (
	// Engine derives field descriptors. The clock is injectable so the
	// flower of life pattern can be pinned to a fixed minute in tests.
	Engine struct {
		now func() time.Time
	}

	TorusField struct {
		Intention          string  `json:"intention"`
		TorusFrequency     float64 `json:"torus_frequency"`
		SchumannRatio      string  `json:"schumann_ratio"`
		InnerFlow          string  `json:"inner_flow"`
		OuterFlow          string  `json:"outer_flow"`
		PhaseAngle         float64 `json:"phase_angle"`
		Coherence          string  `json:"coherence"`
		TeslaNode          int     `json:"tesla_node"`
		ActivationSequence string  `json:"activation_sequence"`
	}

	MerkabaField struct {
		Intention          string  `json:"intention"`
		TetraUp            string  `json:"tetra_up"`
		TetraDown          string  `json:"tetra_down"`
		MerkabaFrequency   float64 `json:"merkaba_frequency"`
		SolfeggioAlignment int     `json:"solfeggio_alignment"`
		FieldIntensity     float64 `json:"field_intensity"`
		ActivationCode     string  `json:"activation_code"`
	}

	PlatonicSolids struct {
		Tetrahedron  string `json:"tetrahedron"`
		Hexahedron   string `json:"hexahedron"`
		Octahedron   string `json:"octahedron"`
		Dodecahedron string `json:"dodecahedron"`
		Icosahedron  string `json:"icosahedron"`
	}

	MetatronCube struct {
		Intention      string         `json:"intention"`
		MetatronCode   string         `json:"metatron_code"`
		Harmonic       int            `json:"harmonic"`
		PlatonicSolids PlatonicSolids `json:"platonic_solids"`
		ActivationKey  string         `json:"activation_key"`
	}

	SriYantraCode struct {
		Intention     string   `json:"intention"`
		Triangles     []string `json:"triangles"`
		Bindu         string   `json:"bindu"`
		Circuits      []string `json:"circuits"`
		InnerTriangle string   `json:"inner_triangle"`
		OuterTriangle string   `json:"outer_triangle"`
		YantraCode    string   `json:"yantra_code"`
	}

	FlowerOfLifePattern struct {
		Intention          string  `json:"intention"`
		FlowerPattern      string  `json:"flower_pattern"`
		PlanetaryAlignment string  `json:"planetary_alignment"`
		CosmicDegree       float64 `json:"cosmic_degree"`
		OptimalDuration    int     `json:"optimal_duration"`
		VesicaPiscesCode   string  `json:"vesica_pisces_code"`
	}

	DivineAmplification struct {
		Original            string `json:"original"`
		PhiAmplified        string `json:"phi_amplified"`
		FibonacciMultiplier int    `json:"fibonacci_multiplier"`
		MetatronicAlignment int    `json:"metatronic_alignment"`
	}
)

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock pins the wall clock, for deterministic tests.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Torus maps the frequency onto the optimal torus ratio relative to the
// Schumann resonance and derives the inner and outer circulation flows.
func (e *Engine) Torus(intention string, hz float64) (*TorusField, error) {
	if intention == "" {
		return nil, ErrEmptyIntention
	}
	if hz <= 0 {
		return nil, ErrBadFrequency
	}

	schumannRatio := hz / SchumannResonance
	innerFlow := sha512Hex(intention + "inner")[:12]
	outerFlow := sha512Hex(intention + "outer")[:12]
	phaseAngle := math.Mod(hz*360, 360)

	// 0.618 is the inverse of the golden ratio.
	coherence := 0.618 * schumannRatio

	teslaNode := nearest([]int{3, 6, 9}, math.Mod(hz, 10))

	return &TorusField{
		Intention:          intention,
		TorusFrequency:     hz,
		SchumannRatio:      fmt.Sprintf("%.3f", schumannRatio),
		InnerFlow:          innerFlow,
		OuterFlow:          outerFlow,
		PhaseAngle:         phaseAngle,
		Coherence:          fmt.Sprintf("%.3f", coherence),
		TeslaNode:          teslaNode,
		ActivationSequence: fmt.Sprintf("%d%d%s", teslaNode, teslaNode, innerFlow[:teslaNode]),
	}, nil
}

// Merkaba derives the two counter-rotating tetrahedrons and aligns the spin
// frequency with the nearest solfeggio value.
func (e *Engine) Merkaba(intention string, frequency float64) (*MerkabaField, error) {
	if intention == "" {
		return nil, ErrEmptyIntention
	}
	if frequency <= 0 {
		return nil, ErrBadFrequency
	}

	tetraUp := sha256Hex(intention + "ascend")[:12]
	tetraDown := sha256Hex(intention + "descend")[:12]

	solfeggio := nearest(Solfeggio, frequency*100)

	nine := math.Mod(frequency, 9)
	if nine == 0 {
		nine = 9
	}
	intensity := ((frequency * Sqrt3) / Phi) * nine

	return &MerkabaField{
		Intention:          intention,
		TetraUp:            tetraUp,
		TetraDown:          tetraDown,
		MerkabaFrequency:   frequency,
		SolfeggioAlignment: solfeggio,
		FieldIntensity:     intensity,
		ActivationCode: fmt.Sprintf("%d %d %d",
			int(math.Floor(intensity)),
			int(math.Floor(frequency*Phi)),
			int(math.Floor(float64(solfeggio)/Phi))),
	}, nil
}

// Metatron derives the 13 information spheres of Metatron's Cube. With
// boost the full grid is concatenated, otherwise only the first five
// spheres form the code.
func (e *Engine) Metatron(intention string, boost bool) (*MetatronCube, error) {
	if intention == "" {
		return nil, ErrEmptyIntention
	}

	spheres := make([]string, 13)
	for i := range spheres {
		salt := strconv.Itoa(MetatronSequence[i%len(MetatronSequence)])
		spheres[i] = sha512Hex(intention + salt)[:6]
	}

	var code string
	if boost {
		code = strings.Join(spheres, "")
	} else {
		code = strings.Join(spheres[:5], "")
	}

	harmonic := digitRoot(intention)

	return &MetatronCube{
		Intention:    intention,
		MetatronCode: code,
		Harmonic:     harmonic,
		PlatonicSolids: PlatonicSolids{
			Tetrahedron:  spheres[0],
			Hexahedron:   spheres[1],
			Octahedron:   spheres[2],
			Dodecahedron: spheres[3],
			Icosahedron:  spheres[4],
		},
		ActivationKey: fmt.Sprintf("%d-%d-%d", harmonic*3, harmonic*6, harmonic*9),
	}, nil
}

// SriYantra derives the nine interlocking triangles, the central bindu and
// the nine surrounding circuits. Even-indexed triangles carry the shiva
// salt, odd-indexed the shakti salt.
func (e *Engine) SriYantra(intention string) (*SriYantraCode, error) {
	if intention == "" {
		return nil, ErrEmptyIntention
	}

	triangles := make([]string, 9)
	for i := range triangles {
		salt := fmt.Sprintf("shakti%d", i)
		if i%2 == 0 {
			salt = fmt.Sprintf("shiva%d", i)
		}
		triangles[i] = sha256Hex(intention + salt)[:8]
	}

	bindu := sha256Hex(intention + "bindu")[:9]

	circuits := make([]string, 9)
	for i := range circuits {
		circuits[i] = sha256Hex(triangles[i] + bindu)[:6]
	}

	return &SriYantraCode{
		Intention:     intention,
		Triangles:     triangles,
		Bindu:         bindu,
		Circuits:      circuits,
		InnerTriangle: triangles[0],
		OuterTriangle: triangles[8],
		YantraCode:    fmt.Sprintf("%s-%s-%s", bindu[:3], triangles[0][:3], triangles[8][:3]),
	}, nil
}

// FlowerOfLife derives the seven seed circles and the current planetary
// alignment. The alignment depends on the wall-clock time-of-day mapped to
// degrees, which is the one documented non-determinism in this package.
func (e *Engine) FlowerOfLife(intention string, duration int) (*FlowerOfLifePattern, error) {
	if intention == "" {
		return nil, ErrEmptyIntention
	}
	if duration <= 0 {
		return nil, ErrBadDuration
	}

	// 24 hours map to 360 degrees.
	now := e.now()
	cosmicDegree := float64(now.Hour()*15) + float64(now.Minute())/4

	closestPlanet := "sun"
	closestDiff := 360.0
	for _, pa := range PlanetaryAngles {
		if diff := math.Abs(pa.Degree - cosmicDegree); diff < closestDiff {
			closestDiff = diff
			closestPlanet = pa.Planet
		}
	}

	seeds := make([]string, 7)
	for i := range seeds {
		angle := float64(i) * (360.0 / 7.0)
		radius := float64(i+1) * Phi
		seeds[i] = sha256Hex(fmt.Sprintf("%s:%v:%v", intention, angle, radius))[:8]
	}

	optimal := int(float64(duration) * Phi)
	if duration > optimal {
		optimal = duration
	}

	return &FlowerOfLifePattern{
		Intention:          intention,
		FlowerPattern:      strings.Join(seeds, ""),
		PlanetaryAlignment: closestPlanet,
		CosmicDegree:       cosmicDegree,
		OptimalDuration:    optimal,
		VesicaPiscesCode:   fmt.Sprintf("%s %s %s", seeds[0], seeds[3], seeds[6]),
	}, nil
}

// DivineAmplify walks the SHA-512 digest of the intention through a phi
// spiral and rehashes the spiral with the intention into the final
// signature. The multiplier snaps up to the nearest Fibonacci value.
func (e *Engine) DivineAmplify(intention string, multiplier float64) (*DivineAmplification, error) {
	if intention == "" {
		return nil, ErrEmptyIntention
	}

	digest := sha512Hex(intention)

	var spiral strings.Builder
	for i, c := range digest {
		segment := float64(c) * math.Pow(Phi, float64(i%7)+1)
		spiral.WriteString(fmt.Sprintf("%02d", int(math.Mod(segment, 100))))
	}

	amplified := sha256Hex(spiral.String() + intention)

	fib := Fibonacci[len(Fibonacci)-1]
	for _, f := range Fibonacci {
		if float64(f) >= multiplier {
			fib = f
			break
		}
	}

	return &DivineAmplification{
		Original:            intention,
		PhiAmplified:        amplified,
		FibonacciMultiplier: fib,
		MetatronicAlignment: digitRoot(intention),
	}, nil
}

// nearest picks the sequence value with the smallest absolute distance to
// target; ties resolve to the earliest entry.
func nearest(seq []int, target float64) int {
	best := seq[0]
	bestDiff := math.Abs(float64(seq[0]) - target)
	for _, v := range seq[1:] {
		if diff := math.Abs(float64(v) - target); diff < bestDiff {
			bestDiff = diff
			best = v
		}
	}
	return best
}
