package persistence

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

var (
	// ErrUnsupportedPlatform is returned on platforms whose in-memory layout
	// differs from the little-endian snapshot encoding.
	ErrUnsupportedPlatform = errors.New("unsupported platform: snapshots need a little-endian amd64 or arm64 host")
	ErrUnalignedAccess     = errors.New("unaligned memory access")
)

func init() {
	if err := checkPlatform(runtime.GOARCH, littleEndian()); err != nil {
		panic(fmt.Sprintf("dknn/persistence: %v", err))
	}
}

func checkPlatform(arch string, little bool) error {
	if (arch != "amd64" && arch != "arm64") || !little {
		return fmt.Errorf("%w (GOARCH=%s)", ErrUnsupportedPlatform, arch)
	}
	return nil
}

func littleEndian() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}

func validateAlignment[T word](s []T, align uintptr) error {
	if len(s) == 0 {
		return nil
	}
	if p := uintptr(unsafe.Pointer(&s[0])); p%align != 0 {
		return fmt.Errorf("%w: 0x%x not %d-byte aligned", ErrUnalignedAccess, p, align)
	}
	return nil
}
