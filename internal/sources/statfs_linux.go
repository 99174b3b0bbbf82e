//go:build linux

package sources

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// Statfs reads filesystem usage for path.
func Statfs(path string) (FSUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSUsage{}, &fs.PathError{Op: "statfs", Path: path, Err: err}
	}

	bsize := uint64(st.Bsize)
	total := st.Blocks * bsize
	free := st.Bfree * bsize
	return FSUsage{
		Total: total,
		Used:  total - free,
		Avail: st.Bavail * bsize,
	}, nil
}
