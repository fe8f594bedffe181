package timeline

import (
	"github.com/ivlev/videocanvas/internal/element"
)

// Window is the composition-time interval during which a frame effect applies
type Window struct {
	Start float64
	End   float64
}

func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// EffectWindow maps a frame effect from the element's media clock onto the
// composition clock using the element start time and playback rate.
func EffectWindow(el *element.Element, fe element.FrameEffect) Window {
	rate := el.Props.Rate()
	return Window{
		Start: el.StartTime + fe.Start/rate,
		End:   el.StartTime + fe.End/rate,
	}
}

// ActiveFrameEffect returns the frame effect active at playback time t, or
// nil. When windows overlap the earliest declared effect wins.
func ActiveFrameEffect(el *element.Element, t float64) *element.FrameEffect {
	if el == nil {
		return nil
	}
	for i := range el.FrameEffects {
		if EffectWindow(el, el.FrameEffects[i]).Contains(t) {
			fe := el.FrameEffects[i]
			return &fe
		}
	}
	return nil
}

// SnapTime converts a playback time into the source-media timestamp of el,
// accounting for trim offset (Props.Time) and playback rate.
func SnapTime(el *element.Element, seek float64) float64 {
	return (seek-el.StartTime)*el.Props.Rate() + el.Props.Time
}
