package domain

const (
	ProtocolVersionKeyValue = "v0.1"
	ProtocolVersionStream   = "v0.2"
	DefaultDocFlag          = "--tldr"
	DefaultTopN             = 10
	DefaultOutputDir        = "."
	DefaultLogLevel         = "info"
	DefaultWatchDebounceMs  = 200
	TopLevelNamespace       = "top-level"
	KeyValueFlagType        = "BOOL"
	StreamFlagType          = "unknown"
	UnknownType             = "unknown"
	GeneratedBy             = "tldrscope"
)

// DefaultFormats lists the report formats written when none are configured.
var DefaultFormats = []string{"json"}
