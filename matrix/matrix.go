package matrix

import (
	"fmt"
	"math"

	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// SymTolerance is the default absolute tolerance used when checking matrix symmetry.
const SymTolerance = 1e-9

// Eye returns n x n identity matrix.
// It panics if n is non-positive.
func Eye(n int) *mat.Dense {
	eye, err := mx.NewDenseValIdentity(n, 1.0)
	if err != nil {
		panic(err)
	}

	return eye
}

// Sym returns symmetric matrix built from the upper triangle of square matrix m.
// It panics if m is not square.
func Sym(m mat.Matrix) *mat.SymDense {
	r, c := m.Dims()
	if r != c {
		panic(mat.ErrSquare)
	}

	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, m.At(i, j))
		}
	}

	return sym
}

// IsSymmetric returns true if m is square and |m[i,j] - m[j,i]| <= tol for all elements.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}

// IsFinite returns true if none of the elements of m is NaN or Inf.
func IsFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}

	return true
}

// Format returns m formatted as a compact string suitable for log fields.
func Format(m mat.Matrix) string {
	return fmt.Sprintf("%v", mx.Format(m))
}
