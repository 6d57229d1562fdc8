package layout

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

// ProgressFunc receives the partially-interpolated node set and the eased
// progress in [0,1] once per animation frame
type ProgressFunc func(nodes []*entities.Node, progress float64)

// TransitionTo computes the target layout and drives an animated
// interpolation from the current positions to it, sampling the configured
// easing curve each frame. Only one transition may be in flight; a second
// call fails fast with a typed error instead of queuing or interrupting the
// first. Context cancellation ends the transition at the next frame and the
// positions delivered so far stand.
func (e *Engine) TransitionTo(
	ctx context.Context,
	current []*entities.Node,
	links []*entities.Link,
	cfg Config,
	onProgress ProgressFunc,
) ([]*entities.Node, error) {
	if !e.transitionOn.CompareAndSwap(false, true) {
		return nil, pkgerrors.NewTransitionInProgress()
	}
	defer e.transitionOn.Store(false)

	target, err := e.Apply(current, links, cfg)
	if err != nil {
		return nil, err
	}

	cfg = cfg.normalized()
	from := make(map[string]valueobjects.Position, len(current))
	for _, n := range current {
		from[n.ID] = n.PositionOr(valueobjects.NewPosition(cfg.Width/2, cfg.Height/2))
	}

	e.logger.Debug("Starting layout transition",
		zap.String("algorithm", string(cfg.Algorithm)),
		zap.Duration("duration", cfg.TransitionDuration),
		zap.String("easing", string(cfg.TransitionEasing)),
	)

	ticker := time.NewTicker(cfg.FrameInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case now := <-ticker.C:
			t := float64(now.Sub(start)) / float64(cfg.TransitionDuration)
			if t >= 1 {
				if onProgress != nil {
					onProgress(cloneNodes(target), 1)
				}
				return target, nil
			}

			eased := ease(cfg.TransitionEasing, t)
			frame := cloneNodes(target)
			for _, n := range frame {
				origin := from[n.ID]
				pos := valueobjects.NewPosition(
					origin.X+(n.Position.X-origin.X)*eased,
					origin.Y+(n.Position.Y-origin.Y)*eased,
				)
				n.Position = &pos
			}
			if onProgress != nil {
				onProgress(frame, eased)
			}
		}
	}
}

// ease samples the named curve at t in [0,1]
func ease(easing Easing, t float64) float64 {
	switch easing {
	case EasingIn:
		return t * t
	case EasingOut:
		return 1 - (1-t)*(1-t)
	case EasingInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	case EasingBounce:
		return bounceOut(t)
	default:
		return t
	}
}

// bounceOut is the standard four-segment bounce curve
func bounceOut(t float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
