//go:build !windows

package winapi

import "kmmacro/src/desktop"

// New reports that window management needs Windows.
func New() (desktop.Backend, error) {
	return nil, desktop.ErrUnsupported
}
