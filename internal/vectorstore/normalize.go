package vectorstore

// Normalize converts a provider-native embedding into the fixed stored
// width. Longer vectors are truncated to the first width elements (a
// documented lossy approximation); shorter ones are right-padded with
// zeros. The output length is always exactly width, the one invariant
// every downstream consumer relies on. Normalize never fails: an empty
// input yields an all-zero vector, because embedding generation failures
// are handled upstream by the provider contract.
func Normalize(raw []float32, width int) []float32 {
	if width <= 0 {
		return nil
	}
	out := make([]float32, width)
	copy(out, raw)
	return out
}
