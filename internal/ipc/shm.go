package ipc

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Perm is the permission mode of every shared object: owner only.
const Perm = 0o600

// mapFile opens (flags may add O_CREAT|O_EXCL) the file at path and maps
// size bytes of it shared and read-write. Created files are sized first;
// opened files must already be large enough. An exclusively created file
// is removed again if mapping it fails.
func mapFile(path string, size int, flags int) (mem []byte, err error) {
	fd, err := unix.Open(path, flags|unix.O_RDWR|unix.O_CLOEXEC, Perm)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	defer unix.Close(fd)
	if flags&unix.O_EXCL != 0 {
		defer func() {
			if err != nil {
				_ = unix.Unlink(path)
			}
		}()
	}

	if flags&unix.O_CREAT != 0 {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			return nil, &os.PathError{Op: "ftruncate", Path: path, Err: err}
		}
	} else {
		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			return nil, &os.PathError{Op: "fstat", Path: path, Err: err}
		}
		if st.Size < int64(size) {
			return nil, fmt.Errorf("%s: %d bytes, want %d: %w", path, st.Size, size, ErrCorrupt)
		}
	}

	mem, err = unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: err}
	}
	return mem, nil
}

// unlink removes path, treating an already missing file as success.
func unlink(path string) error {
	if err := unix.Unlink(path); err != nil && !errors.Is(err, unix.ENOENT) {
		return &os.PathError{Op: "unlink", Path: path, Err: err}
	}
	return nil
}
