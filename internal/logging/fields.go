package logging

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldKind is the structured logging key for media kinds (gel, gobo, disc, effect).
	FieldKind = "kind"
	// FieldDCID is the structured logging key for vendor record identifiers.
	FieldDCID = "dcid"
	// FieldRunID correlates every line written by one update run.
	FieldRunID = "run_id"
	// FieldEventType classifies notable events such as cache recovery.
	FieldEventType = "event_type"
	// FieldPath is the structured logging key for file paths.
	FieldPath = "path"
)
