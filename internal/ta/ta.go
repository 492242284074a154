package ta

import "math"

const (
	PositionAbove  = "above"
	PositionBelow  = "below"
	PositionMiddle = "middle"
)

func EMA(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}

func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// Bollinger uses the population standard deviation over the last period
// points. Bands are NaN and position is "middle" when the series is short.
func Bollinger(prices []float64, period int, k float64) (upper, lower, middle float64, position string) {
	if len(prices) < period || period <= 0 {
		return math.NaN(), math.NaN(), math.NaN(), PositionMiddle
	}
	window := prices[len(prices)-period:]
	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= float64(period)
	s := 0.0
	for _, p := range window {
		d := p - mean
		s += d * d
	}
	sd := math.Sqrt(s / float64(period))
	upper = mean + k*sd
	lower = mean - k*sd
	middle = mean
	last := prices[len(prices)-1]
	position = PositionMiddle
	if last > upper {
		position = PositionAbove
	} else if last < lower {
		position = PositionBelow
	}
	return upper, lower, middle, position
}

func VolumeRatio(volumes []float64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range volumes {
		sum += v
	}
	mean := sum / float64(len(volumes))
	if mean == 0 {
		return 0
	}
	return volumes[len(volumes)-1] / mean
}

func PeriodReturn(prices []float64, lookback int) float64 {
	if lookback <= 0 || len(prices) <= lookback {
		return 0
	}
	base := prices[len(prices)-1-lookback]
	if base == 0 {
		return 0
	}
	return (prices[len(prices)-1] - base) / base
}
