//go:build gridreduce_nonative

package gridreduce

// probeNativeReduction reports that this build has no native single-pass
// reduction; flat ranges use the one-group fallback.
func probeNativeReduction() NativeReduction {
	return NativeNone
}
