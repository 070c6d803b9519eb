//go:build !linux

package performance

func systemMemory() (total, available uint64, ok bool) {
	return 0, 0, false
}
