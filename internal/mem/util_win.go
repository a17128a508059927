//go:build windows
// +build windows

package mem

func lockMemoryPlatform() (ProtectionLevel, error) {
	// On Windows, VirtualLock has limitations; memguard's per-buffer
	// locking still applies, so report partial protection
	return ProtectionPartial, nil
}

func unlockMemoryPlatform() error {
	// Nothing to unlock
	return nil
}
