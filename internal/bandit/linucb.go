package bandit

import (
	"math"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/errs"
	"gonum.org/v1/gonum/mat"
)

// diagEpsilon is the regularization added to the diagonal when A_a fails
// to Cholesky-factor (should not happen for a correctly-maintained ridge
// matrix, but protects against accumulated floating-point drift).
const diagEpsilon = 1e-6

// NewLinUCB initializes a fresh per-user LinUCB model: every arm's A
// starts at λI and b at the zero vector.
func NewLinUCB(cfg LinUCBConfig) *LinUCB {
	l := &LinUCB{Dimension: cfg.Dimension, Alpha: cfg.Alpha, Lambda: cfg.Lambda}
	for a := 0; a < NumArms; a++ {
		l.Arms[a] = freshArmState(cfg.Dimension, cfg.Lambda)
	}
	return l
}

func freshArmState(d int, lambda float64) ArmState {
	A := make([]float64, d*d)
	for i := 0; i < d; i++ {
		A[i*d+i] = lambda
	}
	return ArmState{A: A, B: make([]float64, d)}
}

// Select scores every arm and returns the argmax, tie-breaking on the
// lowest arm index, plus the raw per-arm scores for explanation.
func (l *LinUCB) Select(x []float64) (bestArm int, scores [NumArms]float64, err error) {
	best := -1
	var bestScore float64
	for a := 0; a < NumArms; a++ {
		score, serr := l.score(a, x)
		if serr != nil {
			return 0, scores, serr
		}
		scores[a] = score
		if best == -1 || score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best, scores, nil
}

// score computes ucb_a = θ_a·x + α·sqrt(x^T A_a^-1 x) by Cholesky-solving
// A_a v = x and A_a w = b_a, never forming A_a^-1 explicitly. A failed
// (non-SPD) factorization falls back to a regularized-diagonal solve for
// this call only; the stored A_a is left untouched either way.
func (l *LinUCB) score(arm int, x []float64) (float64, error) {
	d := l.Dimension
	state := l.Arms[arm]

	symA := mat.NewSymDense(d, append([]float64(nil), state.A...))
	var chol mat.Cholesky
	ok := chol.Factorize(symA)

	xVec := mat.NewVecDense(d, x)
	bVec := mat.NewVecDense(d, state.B)

	var theta, aInvX mat.VecDense
	if ok {
		if err := chol.SolveVecTo(&theta, bVec); err != nil {
			return 0, errs.Wrap(errs.ComputationError, err, "linucb: cholesky solve theta failed for arm %d", arm)
		}
		if err := chol.SolveVecTo(&aInvX, xVec); err != nil {
			return 0, errs.Wrap(errs.ComputationError, err, "linucb: cholesky solve A^-1x failed for arm %d", arm)
		}
	} else {
		theta = *diagonalSolve(state.A, state.B, d)
		aInvX = *diagonalSolve(state.A, x, d)
	}

	thetaDotX := mat.Dot(&theta, xVec)
	quad := mat.Dot(xVec, &aInvX)
	if quad < 0 {
		quad = 0 // guard tiny negative numerical noise under the sqrt
	}
	return thetaDotX + l.Alpha*sqrtSafe(quad), nil
}

// diagonalSolve solves (A + εI) v = rhs treating A as diagonal-only,
// the documented fallback for a non-SPD A_a.
func diagonalSolve(a []float64, rhs []float64, d int) *mat.VecDense {
	out := mat.NewVecDense(d, nil)
	for i := 0; i < d; i++ {
		denom := a[i*d+i] + diagEpsilon
		if denom == 0 {
			denom = diagEpsilon
		}
		out.SetVec(i, rhs[i]/denom)
	}
	return out
}

// Update applies the ridge update A_a += x x^T, b_a += r*x for the given
// arm. Idempotency at (decisionId, reward) granularity is enforced by
// the caller (internal/control via the reward queue), not here.
func (l *LinUCB) Update(arm int, x []float64, r float64) {
	d := l.Dimension
	state := l.Arms[arm]
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			state.A[i*d+j] += x[i] * x[j]
		}
		state.B[i] += r * x[i]
	}
	l.Arms[arm] = state
}

func sqrtSafe(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
