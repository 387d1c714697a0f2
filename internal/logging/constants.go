package logging

// Field names shared by every component so log lines can be filtered consistently.
const (
	FieldSource     = "source"
	FieldLocation   = "location"
	FieldKind       = "kind"
	FieldGroup      = "group"
	FieldRamp       = "ramp"
	FieldCount      = "count"
	FieldSkipped    = "skipped"
	FieldDropped    = "dropped"
	FieldDefaulted  = "defaulted"
	FieldDelimiter  = "delimiter"
	FieldEncoding   = "encoding"
	FieldControl    = "control"
	FieldTicket     = "ticket"
	FieldSession    = "session"
	FieldDuration   = "duration_ms"
	FieldStatus     = "status"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
