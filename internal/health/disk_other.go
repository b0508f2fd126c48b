//go:build !(linux || darwin || freebsd)

package health

import (
	"errors"
	"runtime"
)

type unsupportedDiskStats struct{}

// NewDiskStats returns a provider that always fails on this platform.
func NewDiskStats() DiskStats {
	return unsupportedDiskStats{}
}

func (unsupportedDiskStats) Usage(string) (DiskUsage, error) {
	return DiskUsage{}, errors.New("disk statistics unsupported on " + runtime.GOOS)
}
