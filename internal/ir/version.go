package ir

// Version constants for the fixture schema and the planner.
const (
	// IRVersion is the fixture schema version.
	IRVersion = "1"

	// EngineVersion is the planner version recorded in journals.
	EngineVersion = "0.1.0"
)
