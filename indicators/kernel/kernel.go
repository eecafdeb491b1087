// Package kernel holds the numeric building blocks shared by the indicators.
//
// Every function is pure: inputs are never modified and every result is a
// freshly allocated slice. Recurrences (Wilder smoothing, EMA, cumulative
// sum) run strictly left to right.
package kernel

import (
	"fmt"
	"math"
)

// TrueRange returns the per-bar true range. tr[0] is high[0]-low[0];
// afterwards the largest of high-low, |high-prevClose| and |low-prevClose|.
func TrueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(high))
	if len(tr) == 0 {
		return tr
	}
	tr[0] = high[0] - low[0]
	parallelFor(1, len(tr), func(i int) {
		tr[i] = trueRange(high[i], low[i], close[i-1])
	})
	return tr
}

func trueRange(high, low, prevClose float64) float64 {
	highLow := high - low
	highClose := math.Abs(high - prevClose)
	lowClose := math.Abs(low - prevClose)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

// DirectionalMovement returns +DM and -DM per bar. Both are zero at index 0.
func DirectionalMovement(high, low []float64) (plus, minus []float64) {
	plus = make([]float64, len(high))
	minus = make([]float64, len(high))
	for i := 1; i < len(high); i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]

		if upMove > downMove && upMove > 0 {
			plus[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minus[i] = downMove
		}
	}
	return plus, minus
}

// WilderSmoothing seeds s[period-1] with the mean of the first period values
// and then applies s[i] = s[i-1] + (data[i]-s[i-1])/period. Indices before the
// seed are left at zero and must be treated as not yet valid.
func WilderSmoothing(data []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("wilder smoothing: period must be positive, got %d", period)
	}
	if len(data) < period {
		return nil, fmt.Errorf("wilder smoothing: not enough data: need %d, got %d", period, len(data))
	}

	out := make([]float64, len(data))
	out[period-1] = Mean(data[:period])

	p := float64(period)
	for i := period; i < len(data); i++ {
		out[i] = out[i-1] + (data[i]-out[i-1])/p
	}
	return out, nil
}

// EMA is the exponential moving average with multiplier 2/(period+1), seeded
// at period-1 with the simple mean of the first period values. Indices before
// the seed are zero.
func EMA(data []float64, period int) ([]float64, error) {
	if period <= 0 || period > len(data) {
		return nil, fmt.Errorf("ema: invalid period %d for %d values", period, len(data))
	}

	multiplier := 2.0 / float64(period+1)

	out := make([]float64, len(data))
	out[period-1] = Mean(data[:period])
	for i := period; i < len(data); i++ {
		out[i] = (data[i]-out[i-1])*multiplier + out[i-1]
	}
	return out, nil
}

// CumulativeSum returns the running total of x.
func CumulativeSum(x []float64) []float64 {
	out := make([]float64, len(x))
	sum := 0.0
	for i, v := range x {
		sum += v
		out[i] = sum
	}
	return out
}

// MoneyFlowMultiplier is ((close-low)-(high-close))/(high-low) per bar, in
// [-1, 1]. A zero-range bar contributes 0.
func MoneyFlowMultiplier(high, low, close []float64) []float64 {
	mfm := make([]float64, len(high))
	parallelFor(0, len(mfm), func(i int) {
		rng := high[i] - low[i]
		if rng == 0 {
			return
		}
		mfm[i] = ((close[i] - low[i]) - (high[i] - close[i])) / rng
	})
	return mfm
}

// ADL is the accumulation/distribution line: the cumulative sum of the
// money-flow multiplier times volume. A zero-range bar carries the previous
// value forward.
func ADL(high, low, close, volume []float64) []float64 {
	mfv := MoneyFlowMultiplier(high, low, close)
	for i := range mfv {
		mfv[i] *= volume[i]
	}
	return CumulativeSum(mfv)
}

// RollingMeanStd returns the rolling mean and population standard deviation
// over windows of period values ending at each index, using prefix sums of
// the values and their squares. Indices before period-1 are NaN.
func RollingMeanStd(data []float64, period int) (mean, std []float64, err error) {
	if period <= 0 {
		return nil, nil, fmt.Errorf("rolling: period must be positive, got %d", period)
	}

	mean = NaNs(len(data))
	std = NaNs(len(data))
	if len(data) < period {
		return mean, std, nil
	}

	sq := make([]float64, len(data))
	for i, v := range data {
		sq[i] = v * v
	}
	cum := CumulativeSum(data)
	cumSq := CumulativeSum(sq)

	p := float64(period)
	for i := period - 1; i < len(data); i++ {
		sum, sumSq := cum[i], cumSq[i]
		if start := i + 1 - period; start > 0 {
			sum -= cum[start-1]
			sumSq -= cumSq[start-1]
		}

		m := sum / p
		variance := (sumSq - 2*m*sum + m*m*p) / p
		if variance < 0 {
			// rounding on flat windows
			variance = 0
		}
		mean[i] = m
		std[i] = math.Sqrt(variance)
	}
	return mean, std, nil
}

// ArgMax returns the index of the first maximum of w, or -1 when empty.
func ArgMax(w []float64) int {
	idx := -1
	for i, v := range w {
		if idx < 0 || v > w[idx] {
			idx = i
		}
	}
	return idx
}

// ArgMin returns the index of the first minimum of w, or -1 when empty.
func ArgMin(w []float64) int {
	idx := -1
	for i, v := range w {
		if idx < 0 || v < w[idx] {
			idx = i
		}
	}
	return idx
}

// Mean is the arithmetic mean; NaN for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Finite maps NaN and ±Inf to 0. Used where a legitimate 0/0 would otherwise
// leak into a downstream recurrence.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
