package motion

import (
	"errors"
	"math"
	"time"
)

// DefaultDelayBetween is the gap between adjacent stagger indices when
// the config leaves it unset.
const DefaultDelayBetween = 50 * time.Millisecond

var ErrNoChildren = errors.New("motion: stagger needs at least one child")

// Ease maps normalized progress in [0,1] to a multiplier. The engine
// ships no curve tables; callers bring their own function.
type Ease func(t float64) float64

type originMode uint8

const (
	originFirst originMode = iota
	originLast
	originCenter
	originIndex
)

// Origin selects which element a stagger radiates from.
type Origin struct {
	mode  originMode
	index int
}

var (
	FromFirst  = Origin{mode: originFirst}
	FromLast   = Origin{mode: originLast}
	FromCenter = Origin{mode: originCenter}
)

// FromIndex radiates the stagger outward from the n-th element.
func FromIndex(n int) Origin {
	return Origin{mode: originIndex, index: n}
}

// effective returns the policy-transformed distance for element i of total.
func (o Origin) effective(i, total int) float64 {
	switch o.mode {
	case originLast:
		return float64(total - 1 - i)
	case originCenter:
		return math.Abs(float64(i) - float64(total-1)/2)
	case originIndex:
		return math.Abs(float64(i - o.index))
	default:
		return float64(i)
	}
}

// StaggerConfig describes a per-element delay spread.
type StaggerConfig struct {
	Children     int
	DelayBetween time.Duration
	From         Origin
	Ease         Ease

	// EaseByDistance samples the easing over the policy distance instead
	// of the element's position in the list. The positional default keeps
	// the historical asymmetry for center/index origins; set this to get
	// the renormalized curve.
	EaseByDistance bool
}

// Delays computes one delay per child. The result is deterministic and
// the function has no side effects.
func Delays(cfg StaggerConfig) ([]time.Duration, error) {
	if cfg.Children < 1 {
		return nil, ErrNoChildren
	}
	delayBetween := cfg.DelayBetween
	if delayBetween == 0 {
		delayBetween = DefaultDelayBetween
	}

	total := cfg.Children
	maxDist := 0.0
	if cfg.EaseByDistance {
		for i := 0; i < total; i++ {
			if d := cfg.From.effective(i, total); d > maxDist {
				maxDist = d
			}
		}
	}

	delays := make([]time.Duration, total)
	for i := 0; i < total; i++ {
		ms := cfg.From.effective(i, total) * float64(delayBetween) / float64(time.Millisecond)
		if cfg.Ease != nil {
			progress := 0.0
			if cfg.EaseByDistance {
				if maxDist > 0 {
					progress = cfg.From.effective(i, total) / maxDist
				}
			} else if total > 1 {
				progress = float64(i) / float64(total-1)
			}
			ms *= cfg.Ease(progress)
		}
		delays[i] = time.Duration(ms * float64(time.Millisecond))
	}
	return delays, nil
}
