package forcefield

import (
	"errors"
	"fmt"
	"math"
)

// Rule names a pair combination rule.
type Rule string

const (
	Lorentz   Rule = "Lorentz"
	Berthelot Rule = "Berthelot"
)

var ErrUnknownRule = errors.New("forcefield: no combination rule defined")

// CombineEpsilon mixes two well depths. Only the geometric mean ("Lorentz")
// is defined.
func CombineEpsilon(rule Rule, eps1, eps2 float64) (float64, error) {
	if rule != Lorentz {
		return 0, fmt.Errorf("%w: epsilon rule %q", ErrUnknownRule, rule)
	}
	return math.Sqrt(eps1 * eps2), nil
}

// CombineSigma mixes two lengths. Only the arithmetic mean ("Berthelot") is
// defined.
func CombineSigma(rule Rule, sig1, sig2 float64) (float64, error) {
	if rule != Berthelot {
		return 0, fmt.Errorf("%w: sigma rule %q", ErrUnknownRule, rule)
	}
	return (sig1 + sig2) * 0.5, nil
}
