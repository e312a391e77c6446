// Package gridreduce configuration constants
package gridreduce

import (
	"os"
	"strconv"

	"k8s.io/klog/v2"
)

// Thread and block dimensions
const (
	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024

	// Sub-group width used when no SIMD extension is detected
	DefaultSubGroupSize = 4
)

// Queue parameters
const (
	// Number of tasks a queue buffers before Submit blocks
	TaskQueueDepth = 1000

	// Environment variable overriding the default parallelism of new queues
	MaxParallelismEnv = "GRIDREDUCE_MAX_PARALLELISM"
)

// Config holds the parameters a Queue is bound with. They are fixed for the
// lifetime of the queue.
type Config struct {
	// MaxParallelism is the number of worker goroutines a launch spreads
	// its blocks over.
	MaxParallelism int

	// SubGroupSize is the width of a lock-step lane cluster.
	SubGroupSize int

	// Native selects how flat-range reductions are executed.
	Native NativeReduction
}

// Option modifies a Config.
type Option func(*Config)

// WithMaxParallelism limits the number of workers a launch uses.
// Values < 1 are ignored.
func WithMaxParallelism(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxParallelism = n
		}
	}
}

// WithSubGroupSize overrides the lane-cluster width probed from the device.
// Values < 1 are ignored.
func WithSubGroupSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.SubGroupSize = n
		}
	}
}

// WithNativeReduction overrides the build-time native reduction strategy.
func WithNativeReduction(kind NativeReduction) Option {
	return func(c *Config) {
		c.Native = kind
	}
}

// defaultConfig derives the configuration from the device and environment.
func defaultConfig(dev *Device) Config {
	cfg := Config{
		MaxParallelism: dev.MaxThreads,
		SubGroupSize:   dev.SubGroupSize,
		Native:         probeNativeReduction(),
	}
	if v, ok := os.LookupEnv(MaxParallelismEnv); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			klog.Warningf("ignoring %s=%q: must be a positive integer", MaxParallelismEnv, v)
		} else {
			cfg.MaxParallelism = n
		}
	}
	return cfg
}
