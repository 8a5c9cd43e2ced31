package vectorizer

// Vector is a sparse feature vector. Indices are ascending and unique,
// Values holds the weight for the matching index.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NewVector returns an all-zero vector of the given dimension.
func NewVector(dim int) Vector {
	return Vector{Dim: dim}
}

// IsZero reports whether every weight is zero.
func (v Vector) IsZero() bool {
	for _, val := range v.Values {
		if val != 0 {
			return false
		}
	}
	return true
}

// At returns the weight stored at column idx.
func (v Vector) At(idx int) float64 {
	for i, existing := range v.Indices {
		if existing == idx {
			return v.Values[i]
		}
	}
	return 0
}

// Dot computes the dot product with a dense row.
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(dense) {
			sum += v.Values[i] * dense[idx]
		}
	}
	return sum
}

// ToDense expands the vector into a slice of length Dim.
func (v Vector) ToDense() []float64 {
	dense := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		if idx < v.Dim {
			dense[idx] = v.Values[i]
		}
	}
	return dense
}
