// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package envmgr

import "errors"

// errFlockUnavailable is returned on non-Linux platforms. The caller falls
// back to the Manager's in-process mutex, which is the best available
// protection there.
var errFlockUnavailable = errors.New("flock not available on this platform")

// acquireCreateLock is a no-op on non-Linux platforms.
func acquireCreateLock() (*createLock, error) {
	return nil, errFlockUnavailable
}

// createLock is the non-Linux stub. Release is a no-op.
type createLock struct{}

// Release is a no-op on non-Linux platforms.
func (l *createLock) Release() {}
