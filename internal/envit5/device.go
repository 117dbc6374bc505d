package envit5

import (
	"fmt"

	"envit5d/internal/common/fsutil"
)

// Device names the execution provider a model runs on.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// CapabilityProbe reports whether CUDA is usable on this host. Tests inject
// fakes; production code uses NewSystemProbe.
type CapabilityProbe interface {
	CUDAAvailable() bool
}

type sysProbe struct{}

// NewSystemProbe returns a probe that inspects the host for an NVIDIA driver.
func NewSystemProbe() CapabilityProbe { return sysProbe{} }

func (sysProbe) CUDAAvailable() bool {
	return fsutil.PathExists("/proc/driver/nvidia/version") ||
		fsutil.PathExists("/dev/nvidia0")
}

// ResolveDevice maps the requested device name to a Device using the probe.
// Empty and "auto" pick CUDA when available, CPU otherwise. An explicit
// "cuda" request fails when the probe reports no CUDA.
func ResolveDevice(want string, probe CapabilityProbe) (Device, error) {
	switch want {
	case "", "auto":
		if probe != nil && probe.CUDAAvailable() {
			return DeviceCUDA, nil
		}
		return DeviceCPU, nil
	case string(DeviceCPU):
		return DeviceCPU, nil
	case string(DeviceCUDA):
		if probe == nil || !probe.CUDAAvailable() {
			return "", fmt.Errorf("device cuda requested but no CUDA-capable driver detected")
		}
		return DeviceCUDA, nil
	default:
		return "", fmt.Errorf("unknown device %q (want auto, cpu or cuda)", want)
	}
}
