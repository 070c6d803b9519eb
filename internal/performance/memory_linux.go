//go:build linux

package performance

import "golang.org/x/sys/unix"

func systemMemory() (total, available uint64, ok bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, false
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	total = uint64(info.Totalram) * unit
	available = (uint64(info.Freeram) + uint64(info.Bufferram)) * unit
	return total, available, true
}
