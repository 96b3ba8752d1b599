package iso

// Quadratic error function vertex solve: given up to twelve (normal,
// offset-from-mass) constraint pairs `dot(n_i, x) = b_i`, find the x
// (relative to the constraint mass point) minimizing sum (dot(n_i,x)-b_i)^2.
//
// _examples/original_source/qef.hpp only declares qef::evaluate (the
// definition lives outside the retrieval window); the original credits it
// to Ronen Tzur's SVD-based QEF solver. The normal-equations form used here
// -- solve the 3x3 system AᵀA x = Aᵀb, built straight from the same
// (matrix, vector) inputs the original passes to qef::evaluate -- is the
// standard substitute for that solver in dual-contouring ports (see
// _examples/other_examples/0a8f0bf0_Yeicor-sdfx__render-dc-dc3v2.go.go's
// computeVertexPos), with a small Tikhonov term so near-planar cells don't
// produce a singular system.

func qefEvaluate(n [12][3]float64, b [12]float64, num int) [3]float64 {
	var ata [3][3]float64
	var atb [3]float64
	for i := 0; i < num; i++ {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				ata[r][c] += n[i][r] * n[i][c]
			}
			atb[r] += n[i][r] * b[i]
		}
	}
	const ridge = 1e-6
	for k := 0; k < 3; k++ {
		ata[k][k] += ridge
	}
	return solve3x3(ata, atb)
}

// solve3x3 solves A x = b via Cramer's rule, falling back to x=0 if A is
// singular (a flat/degenerate QEF, which the ridge term above makes rare).
func solve3x3(a [3][3]float64, b [3]float64) [3]float64 {
	det := det3(a)
	if det == 0 {
		return [3]float64{}
	}
	var x [3]float64
	for col := 0; col < 3; col++ {
		m := a
		for row := 0; row < 3; row++ {
			m[row][col] = b[row]
		}
		x[col] = det3(m) / det
	}
	return x
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
