package ta

import (
	"math"
	"testing"
)

func TestEMALengthAndSeed(t *testing.T) {
	prices := []float64{100, 101, 102, 103, 104}
	out := EMA(prices, 3)

	if len(out) != len(prices) {
		t.Fatalf("expected output length %d, got %d", len(prices), len(out))
	}
	if out[0] != prices[0] {
		t.Errorf("expected EMA seeded with first price %f, got %f", prices[0], out[0])
	}

	// Second value follows price[1]*k + prev*(1-k) with k = 2/(period+1).
	k := 2.0 / 4.0
	want := prices[1]*k + prices[0]*(1-k)
	if math.Abs(out[1]-want) > 1e-9 {
		t.Errorf("expected EMA[1] = %f, got %f", want, out[1])
	}
}

func TestEMAEmptySeries(t *testing.T) {
	if out := EMA(nil, 21); out != nil {
		t.Errorf("expected nil for empty series, got %v", out)
	}
	if out := EMA([]float64{100}, 0); out != nil {
		t.Errorf("expected nil for non-positive period, got %v", out)
	}
}

func TestRSIBounds(t *testing.T) {
	prices := []float64{100, 102, 99, 103, 101, 104, 100, 105, 102, 106, 103, 107, 104, 108, 105}
	rsi := RSI(prices, 14)
	if rsi < 0 || rsi > 100 {
		t.Errorf("RSI out of [0,100]: %f", rsi)
	}
}

func TestRSIAllGains(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	if rsi := RSI(prices, 14); rsi != 100 {
		t.Errorf("expected RSI 100 for monotonically rising series, got %f", rsi)
	}
}

func TestRSIInsufficientHistory(t *testing.T) {
	if rsi := RSI([]float64{100, 101}, 14); !math.IsNaN(rsi) {
		t.Errorf("expected NaN for short series, got %f", rsi)
	}
}

func TestBollingerShortSeries(t *testing.T) {
	upper, lower, middle, position := Bollinger([]float64{100, 101}, 20, 2)
	if !math.IsNaN(upper) || !math.IsNaN(lower) || !math.IsNaN(middle) {
		t.Errorf("expected NaN bands for short series, got U=%f L=%f M=%f", upper, lower, middle)
	}
	if position != PositionMiddle {
		t.Errorf("expected middle position for short series, got %q", position)
	}
}

func TestBollingerConstantPrices(t *testing.T) {
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 50
	}
	upper, lower, middle, position := Bollinger(prices, 20, 2)
	if upper != 50 || lower != 50 || middle != 50 {
		t.Errorf("expected collapsed bands at 50, got U=%f L=%f M=%f", upper, lower, middle)
	}
	if position != PositionMiddle {
		t.Errorf("expected middle position, got %q", position)
	}
}

func TestBollingerPositionBelow(t *testing.T) {
	prices := make([]float64, 21)
	for i := range prices {
		prices[i] = 100
	}
	prices[20] = 80 // sharp drop through the lower band
	_, _, _, position := Bollinger(prices, 20, 2)
	if position != PositionBelow {
		t.Errorf("expected below position after sharp drop, got %q", position)
	}
}

func TestVolumeRatio(t *testing.T) {
	if v := VolumeRatio(nil); v != 0 {
		t.Errorf("expected 0 for empty series, got %f", v)
	}
	if v := VolumeRatio([]float64{0, 0, 0}); v != 0 {
		t.Errorf("expected 0 for zero mean, got %f", v)
	}
	// Latest 40 over mean 20 == 2.
	if v := VolumeRatio([]float64{10, 10, 40}); math.Abs(v-2.0) > 1e-9 {
		t.Errorf("expected ratio 2.0, got %f", v)
	}
}

func TestPeriodReturn(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	got := PeriodReturn(prices, 24)
	base := prices[len(prices)-25]
	want := (prices[len(prices)-1] - base) / base
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}

	if v := PeriodReturn(prices[:10], 24); v != 0 {
		t.Errorf("expected 0 when history shorter than lookback, got %f", v)
	}
}
