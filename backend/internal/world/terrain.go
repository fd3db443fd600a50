package world

import (
	"hash/fnv"
	"math"
)

// ReliefResolution is the default side length of a relief grid
const ReliefResolution = 32

// Relief is a square grid of radial offsets in [-Amplitude, Amplitude], row-major,
// sampled over latitude (rows) and longitude (columns).
type Relief struct {
	Size      int
	Amplitude float64
	Heights   []float32
}

// At returns the offset at grid cell (i, j), clamped to the grid
func (r *Relief) At(i, j int) float64 {
	if r == nil || r.Size == 0 {
		return 0
	}
	i = clampIndex(i, r.Size)
	j = clampIndex(j, r.Size)
	return float64(r.Heights[j*r.Size+i])
}

func clampIndex(v, size int) int {
	if v < 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}

var (
	reliefScales       = []float64{1.0, 0.5, 0.25, 0.125}
	reliefAmplitudes   = []float64{0.5, 0.25, 0.125, 0.0625}
	reliefAmplitudeSum = 0.9375
)

// GenerateRelief builds fractal value noise seeded by name. The same name always yields
// the same grid.
func GenerateRelief(name string, size int, amplitude float64) *Relief {
	if size < 2 {
		size = ReliefResolution
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	seed := float64(h.Sum64()%10007) * 0.731

	heights := make([]float32, size*size)
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			nx := float64(i) / float64(size-1)
			nz := float64(j) / float64(size-1)

			v := 0.0
			for layer, scale := range reliefScales {
				v += smoothNoise(nx*scale*10+seed, nz*scale*10+seed) * reliefAmplitudes[layer]
			}
			// [0, sum] to [-1, 1]
			v = v/reliefAmplitudeSum*2 - 1
			heights[j*size+i] = float32(v * amplitude)
		}
	}
	return &Relief{Size: size, Amplitude: amplitude, Heights: heights}
}

func hashNoise(x, y float64) float64 {
	s := math.Sin(x*12.9898+y*78.233) * 43758.5453
	return s - math.Floor(s)
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func smoothNoise(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	sx, sy := smoothstep(x-x0), smoothstep(y-y0)

	top := lerp(hashNoise(x0, y0), hashNoise(x0+1, y0), sx)
	bottom := lerp(hashNoise(x0, y0+1), hashNoise(x0+1, y0+1), sx)
	return lerp(top, bottom, sy)
}
