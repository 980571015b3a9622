// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders the session controller's view state as full-screen panes:
//  1. Home : entry menu with quick navigation
//  2. Library : browse saved analyses
//  3. Analysis : risk breakdown and narrative report for the selection
//  4. Catalog : browse the public Cleared Catalog
//  5. Analyzing : transient loader while an upload or fetch is in flight
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Assistant replies stream through a channel from the chat session, delivered
// one chunk per message so tokens render as they arrive.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
