package discover

// Report aggregates the outcome of one reconciliation run. Every target
// address appears exactly once in Scanned; a device-level outcome lands in at
// most one of Created, Updated, or Skipped. Interface and IP failures are
// additive in Errors and never reclassify the device-level outcome.
type Report struct {
	RunID   string          `json:"run_id,omitempty"`
	Scanned []string        `json:"scanned"`
	Created []DeviceOutcome `json:"created"`
	Updated []DeviceOutcome `json:"updated"`
	Skipped []SkipOutcome   `json:"skipped"`
	Errors  []ErrorOutcome  `json:"errors"`
}

// DeviceOutcome records a device that was created or updated for a target.
type DeviceOutcome struct {
	IP     string `json:"ip"`
	Device string `json:"device"`
}

// SkipOutcome records a target that was scanned but not reconciled.
type SkipOutcome struct {
	IP     string `json:"ip"`
	Reason string `json:"reason"`
}

// ErrorOutcome records a failed inventory operation with enough context to
// diagnose it: the target address, and where applicable the interface name
// and the interface's IP address.
type ErrorOutcome struct {
	IP        string `json:"ip"`
	Interface string `json:"iface,omitempty"`
	Address   string `json:"address,omitempty"`
	Error     string `json:"error"`
}

// newReport returns a Report with all lists non-nil so they serialize as
// empty arrays, matching the reference response shape.
func newReport() *Report {
	return &Report{
		Scanned: []string{},
		Created: []DeviceOutcome{},
		Updated: []DeviceOutcome{},
		Skipped: []SkipOutcome{},
		Errors:  []ErrorOutcome{},
	}
}
