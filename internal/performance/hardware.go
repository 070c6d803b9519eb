package performance

import "runtime"

// Hardware is the set of facts the default configuration is derived from.
type Hardware struct {
	CPUCount          int
	MemoryTotalMB     float64
	MemoryAvailableMB float64
}

// SampleHardware reads CPU count and memory figures for the current machine.
// Memory is left at zero where the platform gives no cheap answer.
func SampleHardware() Hardware {
	hw := Hardware{CPUCount: runtime.NumCPU()}
	if total, avail, ok := systemMemory(); ok {
		hw.MemoryTotalMB = float64(total) / 1024 / 1024
		hw.MemoryAvailableMB = float64(avail) / 1024 / 1024
	}
	return hw
}
