package bandit

import (
	"math"
	"math/rand"
)

// NewThompson initializes a fresh per-user Thompson-sampling model: Beta(1,1)
// uninformative priors, Gaussian fallback at mean 0 / unit variance.
func NewThompson() *Thompson {
	t := &Thompson{}
	for a := 0; a < NumArms; a++ {
		t.Arms[a] = ThompsonArm{Alpha: 1, Beta: 1, Mean: 0, Variance: 1}
	}
	return t
}

// Score draws one sample per arm and returns the draws: an arm with no
// observed reward yet draws from its Beta posterior, an arm with at least
// one draws from its Gaussian posterior over continuous reward.
// rng is injected so selection is reproducible in tests.
func (t *Thompson) Score(rng *rand.Rand) [NumArms]float64 {
	var out [NumArms]float64
	for a := 0; a < NumArms; a++ {
		arm := t.Arms[a]
		if arm.N == 0 {
			out[a] = betaSample(rng, arm.Alpha, arm.Beta)
			continue
		}
		out[a] = gaussianSample(rng, arm.Mean, arm.Variance)
	}
	return out
}

// Update folds an observed reward into both posteriors: the Beta
// posterior on a binarized view (reward >= 0 = success), and the
// Gaussian posterior via an online mean/variance update, so either view
// is available regardless of which the caller ends up preferring.
func (t *Thompson) Update(arm int, reward float64) {
	a := t.Arms[arm]
	if reward >= 0 {
		a.Alpha++
	} else {
		a.Beta++
	}
	a.N++
	delta := reward - a.Mean
	a.Mean += delta / float64(a.N)
	a.Variance = ((a.Variance * float64(a.N-1)) + delta*(reward-a.Mean)) / float64(a.N)
	if a.Variance <= 0 {
		a.Variance = 1e-3
	}
	t.Arms[arm] = a
}

// betaSample draws from Beta(alpha,beta) via two Gamma draws, the
// standard construction when no direct Beta sampler is at hand.
func betaSample(rng *rand.Rand, alpha, beta float64) float64 {
	x := gammaSample(rng, alpha)
	y := gammaSample(rng, beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

func gammaSample(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		// Boost and correct, the standard trick for shape<1 with the
		// Marsaglia-Tsang method below.
		u := rng.Float64()
		return gammaSample(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		x2 := x * x
		if u < 1-0.0331*x2*x2 {
			return d * v
		}
		if math.Log(u) < 0.5*x2+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

func gaussianSample(rng *rand.Rand, mean, variance float64) float64 {
	return mean + rng.NormFloat64()*math.Sqrt(variance)
}
