// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signal

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ConvolveSame returns the linear convolution of x and kernel trimmed to
// len(x) samples. x is treated as zero outside its bounds, so samples near
// either edge are attenuated rather than averaged over a shrinking window.
// The trim starts at index (len(kernel)-1)/2 of the full convolution.
//
// Each output sums its in-bounds products in increasing index of x, one
// rounded product at a time, so results are identical on every platform.
func ConvolveSame(x, kernel []float64) ([]float64, error) {
	m := len(kernel)
	if m == 0 {
		return nil, errors.New("convolving: empty kernel")
	}
	n := len(x)
	out := make([]float64, n)

	start := (m - 1) / 2
	for i := range out {
		k := i + start
		lo, hi := max(0, k-m+1), min(n-1, k)
		var sum float64
		for j := lo; j <= hi; j++ {
			// The conversion keeps the product rounded on its own (no FMA).
			sum += float64(x[j] * kernel[k-j])
		}
		out[i] = sum
	}
	return out, nil
}

// BoxKernel returns window taps of weight 1/window.
func BoxKernel(window int) []float64 {
	k := make([]float64, window)
	for i := range k {
		k[i] = 1
	}
	floats.Scale(1/float64(window), k)
	return k
}

// MovingAverage smooths x with a centered box filter of the given window
// using ConvolveSame. The result always has len(x) samples, including when
// len(x) < window.
func MovingAverage(x []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("moving average: window %d must be at least 1", window)
	}
	return ConvolveSame(x, BoxKernel(window))
}
