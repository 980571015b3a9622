// Package models defines domain entities shared across the MelodyCompare client.
//
// The package contains two categories of types:
//
// 1. API payloads: structs mirroring the backend's JSON surface
//   - [AnalysisData] : Structured copyright-risk evaluation of a track
//   - [AnalysisResultPayload] : Analysis data paired with a generated report
//   - [CatalogItem] : Publicly shared, cleared track in the licensing catalog
//   - [SystemStatus] : Backend health flags
//
// 2. Session entities: values owned by the local session and persisted through
// the state store
//   - [User] : The signed-in account (client-side identity, no auth enforcement)
//   - [LibraryItem] : A saved analysis with title and timestamp
//   - [ChatMessage] : One assistant-chat turn, tagged with a [MessageKind]
//   - [Notification] : A queued, auto-expiring user-visible event
//
// JSON tags follow the backend's field names so payloads round-trip unchanged.
package models
