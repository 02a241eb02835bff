package output

type RandomSource interface {
	Intn(n int) int
}
