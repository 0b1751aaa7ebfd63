package weather

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Mist descriptors from thinnest to thickest.
var mistLevels = []string{"clear", "misty", "foggy", "shrouded"}

// Mist is a procedural sky that drifts slowly with the tick counter.
type Mist struct {
	noise opensimplex.Noise
}

// NewMist creates a mist field for the given seed.
func NewMist(seed int64) *Mist {
	return &Mist{noise: opensimplex.NewNormalized(seed)}
}

// Density returns mist thickness in [0, 1] at the given tick.
func (m *Mist) Density(tick uint64) float64 {
	return octaveNoise(m.noise, float64(tick), 3, 0.01, 0.5)
}

// Describe returns the mist descriptor at the given tick.
func (m *Mist) Describe(tick uint64) string {
	if m == nil {
		return Default
	}
	idx := int(m.Density(tick) * float64(len(mistLevels)))
	if idx >= len(mistLevels) {
		idx = len(mistLevels) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return mistLevels[idx]
}

// octaveNoise layers several frequencies of noise along the time axis.
func octaveNoise(noise opensimplex.Noise, t float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(t*frequency, 0) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Sky picks the best available descriptor: live conditions, then mist.
type Sky struct {
	Client *Client
	Mist   *Mist
}

// Describe returns the weather descriptor for the given tick.
func (s *Sky) Describe(tick uint64) string {
	if s == nil {
		return Default
	}
	if s.Client != nil {
		if c, err := s.Client.Fetch(); err == nil {
			return Describe(c)
		}
	}
	return s.Mist.Describe(tick)
}
