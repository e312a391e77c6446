//go:build !gridreduce_nonative

package gridreduce

// probeNativeReduction reports the native single-pass reduction shape
// compiled into this build.
func probeNativeReduction() NativeReduction {
	return NativeIdentityPair
}
