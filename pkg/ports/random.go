package ports

// RandomSource supplies uniform samples in [0,1).
type RandomSource interface {
	Float64() float64
}
