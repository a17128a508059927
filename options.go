package session

import "github.com/Aerilym/libsession-util/audit"

// Options configures optional behavior of a config object. The zero value
// is valid: no auditing, platform memory locking attempted once per
// process.
type Options struct {
	// Auditor receives construct/dump/merge events. Nil disables auditing.
	Auditor audit.Logger

	// SkipMemoryLock suppresses the one-time process-wide mlockall
	// attempt. Intended for tests and sandboxed environments where the
	// syscall is unavailable; per-buffer memguard protection still applies.
	SkipMemoryLock bool
}

func (o Options) auditor() audit.Logger {
	if o.Auditor == nil {
		return audit.NewNoOpLogger()
	}
	return o.Auditor
}
