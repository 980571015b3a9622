package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ListLibrary Phase = iota
	FetchAudio
	WriteExport
)

func listLibraryUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListLibrary,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d analyses", total),
	}
}

func exportUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %q (%d/%d)", title, step, total),
	}
}
