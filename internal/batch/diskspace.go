package batch

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statfsFunc reports the free bytes available at path. Injectable so tests
// can simulate a full disk.
type statfsFunc func(path string) (uint64, error)

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// checkFreeSpace fails when the filesystem holding path has less than
// minMiB mebibytes available. A non-positive minimum disables the check.
func checkFreeSpace(statfs statfsFunc, path string, minMiB int) error {
	if minMiB <= 0 {
		return nil
	}
	free, err := statfs(path)
	if err != nil {
		return fmt.Errorf("statfs %s: %w", path, err)
	}
	need := uint64(minMiB) * 1024 * 1024
	if free < need {
		return fmt.Errorf("insufficient free space in %s: %d MiB available, %d MiB required",
			path, free/(1024*1024), minMiB)
	}
	return nil
}
