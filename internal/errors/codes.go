package errors

// Error codes raised while provisioning build assets.
const (
	CodeSystemGeneric  = "SYS-000"
	CodeNetworkGeneric = "NET-000"
	CodeConfigGeneric  = "CFG-000"

	// CodeCreateDirectory marks a destination directory that could not be created.
	CodeCreateDirectory = "PRV-001"
	// CodeCreateFile marks a destination file that could not be opened for writing.
	CodeCreateFile = "PRV-002"
	// CodePartialWrite marks a transfer interrupted after the destination was opened.
	CodePartialWrite = "PRV-003"

	CodeRequestFailed = "NET-001"
	CodeBadStatus     = "NET-002"

	CodeConfigRead  = "CFG-001"
	CodeConfigParse = "CFG-002"
)
