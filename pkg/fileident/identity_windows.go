//go:build windows

package fileident

import (
	"os"
	"syscall"
)

func identityFromInfo(info os.FileInfo) Identity {
	// On Windows the Identity is an FNV-1a hash of the file's base name;
	// the volume serial number and file index are not read, so two files
	// with the same name in different directories share an Identity.
	if sys, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		_ = sys
	}
	return Identity{Device: 0, Inode: hashName(info.Name())}
}

func hashName(name string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= 1099511628211
	}
	return h
}
