// Package repositories implements SQLite persistence for local session state.
//
// The client is the only writer; access is confined to one process. Two
// stores share the database:
//   - [StateStore] : JSON key/value snapshots of session fields under the
//     application prefix, with a version counter bumped on every write so a
//     partial write can never masquerade as a newer snapshot
//   - [LibraryRepository] : the user's saved analyses, listed newest first
//
// Logout is the only full reset: [StateStore.Clear] plus
// [LibraryRepository.Clear] together erase everything the client persists.
package repositories
