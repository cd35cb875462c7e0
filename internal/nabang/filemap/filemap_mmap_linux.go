//go:build linux

package filemap

import (
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	mmapFile = mmapFileUnix
	munmapMem = unix.Munmap
	msyncRange = msyncUnix
}

func mmapFileUnix(f *os.File, size int, writable bool) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	return unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
}

func msyncUnix(mem []byte, async bool) error {
	flags := unix.MS_SYNC
	if async {
		flags = unix.MS_ASYNC
	}
	return unix.Msync(mem, flags)
}
