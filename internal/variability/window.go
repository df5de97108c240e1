package variability

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Window is one fixed-width slice of the observation timeline. CV is the
// coefficient of variation of the inter-arrival times observed within the
// window; CVDefined is false when fewer than two inter-arrivals landed in
// the window, in which case CV carries no meaning (it is not zero and it is
// not an error).
type Window struct {
	Index     int     `json:"index"`
	Start     float64 `json:"startSeconds"`
	End       float64 `json:"endSeconds"`
	Count     int     `json:"arrivals"`
	CV        float64 `json:"cv"`
	CVDefined bool    `json:"cvDefined"`
}

// WindowedCV partitions the observation span into fixed, non-overlapping
// windows of the given width (seconds) and computes the arrival count and
// local inter-arrival CV per window. Arrival timestamps must be
// non-decreasing; an inter-arrival time is attributed to the window that
// contains the later of its two arrivals. No smoothing or interpolation is
// applied across windows.
func WindowedCV(arrivals []float64, width float64) ([]Window, error) {
	if width <= 0 || math.IsNaN(width) {
		return nil, fmt.Errorf("%w: window width must be positive, got %g", ErrInvalidInput, width)
	}
	if len(arrivals) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 arrivals, have %d", ErrInsufficientData, len(arrivals))
	}
	for i := 1; i < len(arrivals); i++ {
		if arrivals[i] < arrivals[i-1] {
			return nil, fmt.Errorf("%w: arrival timestamps must be non-decreasing (index %d)", ErrInvalidInput, i)
		}
	}

	start := arrivals[0]
	span := arrivals[len(arrivals)-1] - start
	numWindows := int(math.Ceil(span / width))
	if numWindows == 0 {
		numWindows = 1 // all arrivals at the same instant
	}

	counts := make([]int, numWindows)
	interArrivals := make([][]float64, numWindows)
	for i, t := range arrivals {
		idx := windowIndex(t, start, width, numWindows)
		counts[idx]++
		if i > 0 {
			interArrivals[idx] = append(interArrivals[idx], t-arrivals[i-1])
		}
	}

	windows := make([]Window, numWindows)
	for i := range windows {
		w := Window{
			Index: i,
			Start: start + float64(i)*width,
			End:   start + float64(i+1)*width,
			Count: counts[i],
		}
		if len(interArrivals[i]) >= 2 {
			mean := stat.Mean(interArrivals[i], nil)
			if mean > 0 {
				w.CV = stat.StdDev(interArrivals[i], nil) / mean
				w.CVDefined = true
			}
		}
		windows[i] = w
	}
	return windows, nil
}

// windowIndex clamps the final timestamp into the last window so the
// half-open partition still covers the span's upper edge.
func windowIndex(t, start, width float64, numWindows int) int {
	idx := int((t - start) / width)
	if idx >= numWindows {
		idx = numWindows - 1
	}
	return idx
}
