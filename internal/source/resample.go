// SPDX-License-Identifier: MIT
package source

// ResampleMono converts a fully decoded mono clip from srcRate to
// dstRate using Catmull-Rom cubic interpolation. Edge samples are
// clamped rather than zero-padded so the clip does not click at its
// boundaries. Equal rates return the input unchanged.
func ResampleMono(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 || srcRate <= 0 || dstRate <= 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float32, outLen)

	last := len(samples) - 1
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i > last {
			return last
		}
		return i
	}

	for i := range out {
		srcPos := float64(i) * ratio
		i1 := int(srcPos)
		x := float32(srcPos - float64(i1))

		y0 := samples[clamp(i1-1)]
		y1 := samples[clamp(i1)]
		y2 := samples[clamp(i1+1)]
		y3 := samples[clamp(i1+2)]

		out[i] = cubicInterpolate(y0, y1, y2, y3, x)
	}

	return out
}

// cubicInterpolate evaluates a Catmull-Rom spline at fractional
// position x between y1 and y2.
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
