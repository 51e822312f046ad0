//go:build !windows

package fileident

import (
	"os"
	"syscall"
)

func identityFromInfo(info os.FileInfo) Identity {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return Identity{Device: uint64(stat.Dev), Inode: uint64(stat.Ino)}
	}
	// Fallback: no syscall stat available (unusual FileInfo implementation).
	return Identity{}
}
