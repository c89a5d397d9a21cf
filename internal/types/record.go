package types

// Placeholder group labels used when a recovered entry carries no usable
// group name.
const (
	// UnknownGroup marks records recovered from bare URL matches, where no
	// surrounding group structure survived.
	UnknownGroup = "Unknown Group"
	// UnnamedGroup marks structurally decoded groups whose name field was
	// empty or missing.
	UnnamedGroup = "Unnamed Group"
)

// Record provenance values.
const (
	// SourceState means the record was decoded from a tabGroups state
	// fragment and carries its original title and group.
	SourceState = "state"
	// SourceText means the record came from a bare URL match in extracted
	// text; title is empty and the group is UnknownGroup.
	SourceText = "text"
)

// Record is a single recovered URL entry. It is the unit of data moved
// between the scanner and the reconstructor.
type Record struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Group  string `json:"group"`
	Source string `json:"source,omitempty"`
}

// Tab is a reconstructed tab entry inside a TabGroup.
type Tab struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// TabGroup is the extension's native grouping unit.
type TabGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tabs []Tab  `json:"tabs"`
}

// State is the candidate replacement for the extension's lost internal
// state, written by the reconstructor.
type State struct {
	TabGroups []TabGroup `json:"tabGroups"`
}
