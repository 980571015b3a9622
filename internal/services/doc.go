// Package services defines the [Backend] interface for the MelodyCompare API and implements it over HTTP.
//
// # Backend Interface
//
// Every remote operation the client performs goes through [Backend], so the
// session controller, chat consumer, and TUI can be exercised against a test
// double without a live server.
//
// # HTTP Implementation
//
// [APIService] talks to the backend configured via [api] base_url. Audio
// uploads are multipart form posts; everything else is JSON. The two chat
// endpoints return the raw response body as a [Stream] that decodes text
// chunk by chunk, carrying incomplete trailing UTF-8 bytes over to the next
// chunk.
//
// Outbound calls share a [rate.Limiter]. System status and fetched audio
// bytes sit in a short-TTL in-memory cache; the catalog listing is never
// cached and is refetched in full on each visit.
//
// # Error Handling
//
// Non-2xx responses decode the backend's {"error": ...} body when present
// and wrap [shared.ErrAPIRequest]. A missing shared analysis wraps
// [shared.ErrAnalysisNotFound].
package services
