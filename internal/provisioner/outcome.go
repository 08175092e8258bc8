package provisioner

// Outcome is the result of a single provisioning run.
type Outcome int

const (
	// AlreadyPresent means the target existed and nothing was touched.
	AlreadyPresent Outcome = iota + 1
	// Success means the asset was downloaded and written.
	Success
	// NetworkFailure means the request failed; the asset stays absent.
	NetworkFailure
	// WriteFailure means the transfer broke after the file was opened; the
	// partial file has been removed.
	WriteFailure
)

func (o Outcome) String() string {
	switch o {
	case AlreadyPresent:
		return "already-present"
	case Success:
		return "success"
	case NetworkFailure:
		return "network-failure"
	case WriteFailure:
		return "write-failure"
	default:
		return "unknown"
	}
}

// Result reports what Ensure did. Err holds the cause of a recoverable
// failure and is nil otherwise. Outcome is zero when Ensure returned an error.
type Result struct {
	Outcome Outcome
	Path    string
	Bytes   int64
	Err     error
}

// Available reports whether the asset is on disk after the run.
func (r Result) Available() bool {
	return r.Outcome == AlreadyPresent || r.Outcome == Success
}
