//go:build !linux

package platform

// TotalMemory returns 0: the physical memory size is not queried here.
func TotalMemory() uint64 {
	return 0
}
