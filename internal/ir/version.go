package ir

// Version constants for the record format and the tool.
const (
	// RecordVersion is mixed into record digests.
	RecordVersion = "1"

	// ToolVersion is the mutsweep version.
	ToolVersion = "0.1.0"
)
