package gridreduce

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sys/cpu"
)

// Device represents a compute device. Here this is the CPU with its cores;
// the width of a lock-step lane cluster follows the widest SIMD extension
// available.
type Device struct {
	ID           int    // Unique device identifier
	Name         string // Human-readable device name
	NumCores     int    // Number of CPU cores
	MaxThreads   int    // Maximum concurrent workers
	SubGroupSize int    // Lanes per lock-step cluster
	Features     []string
}

var (
	defaultDevice *Device
	deviceOnce    sync.Once
)

// GetDevice returns the current device information.
// This is always the CPU.
func GetDevice() *Device {
	deviceOnce.Do(func() {
		features := detectCPUFeatures()
		defaultDevice = &Device{
			ID:           0,
			Name:         "CPU",
			NumCores:     runtime.NumCPU(),
			MaxThreads:   runtime.NumCPU(),
			SubGroupSize: laneWidth(features),
			Features:     features,
		}
	})
	return defaultDevice
}

// GetDeviceCount returns the number of available devices.
func GetDeviceCount() int {
	return 1 // Only CPU
}

// GetDeviceProperties returns device properties
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, NewInvalidArgError("GetDeviceProperties", fmt.Sprintf("invalid device ID: %d", id))
	}
	return GetDevice(), nil
}

// SetDevice sets the active device (no-op for CPU)
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// String describes the device and its SIMD extensions.
func (d *Device) String() string {
	features := "no SIMD extensions"
	if len(d.Features) > 0 {
		features = strings.Join(d.Features, ", ")
	}
	return fmt.Sprintf("%s: %d cores, sub-group size %d (%s)", d.Name, d.NumCores, d.SubGroupSize, features)
}

// detectCPUFeatures lists the SIMD extensions relevant to lane width.
func detectCPUFeatures() []string {
	var features []string
	if cpu.X86.HasSSE41 || cpu.X86.HasSSE42 {
		features = append(features, "SSE4")
	}
	if cpu.X86.HasAVX {
		features = append(features, "AVX")
	}
	if cpu.X86.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpu.X86.HasFMA {
		features = append(features, "FMA")
	}
	if cpu.X86.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if cpu.ARM64.HasASIMD {
		features = append(features, "ASIMD")
	}
	if cpu.ARM64.HasSVE {
		features = append(features, "SVE")
	}
	return features
}

// laneWidth maps SIMD extensions to the number of 32-bit lanes a vector
// register holds.
func laneWidth(features []string) int {
	has := func(name string) bool {
		for _, f := range features {
			if f == name {
				return true
			}
		}
		return false
	}
	switch {
	case has("AVX512F"):
		return 16
	case has("AVX2"):
		return 8
	case has("ASIMD"):
		return 4
	default:
		return DefaultSubGroupSize
	}
}
