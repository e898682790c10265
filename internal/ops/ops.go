package ops

// Response values shared by the HTTP, CLI and MCP surfaces.
const (
	StatusSaved = "saved"
	StatusError = "error"

	// EmptyTextMessage is returned when note text is blank after trimming.
	EmptyTextMessage = "Empty text"
)

// RecentCount is the number of notes reported by Stats.
const RecentCount = 3
