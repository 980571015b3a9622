package models

import "time"

// RiskLevel is the backend's coarse classification of copyright risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// AnalysisData is the structured output of a copyright-risk evaluation.
// It is produced by the backend and never partially mutated by the client;
// a session replaces the whole value on each new analysis or selection.
type AnalysisData struct {
	SongTitle          string              `json:"songTitle"`
	Artist             string              `json:"artist,omitempty"`
	RiskLevel          RiskLevel           `json:"riskLevel"`
	RiskScore          float64             `json:"riskScore"`
	OverallSimilarity  float64             `json:"overallSimilarity"`
	AIProbability      float64             `json:"aiProbability"`
	StemAnalysis       map[string]float64  `json:"stemAnalysis,omitempty"`
	AIAnalysis         *AIDetectionResult  `json:"aiAnalysis,omitempty"`
	Fingerprinting     *FingerprintSummary `json:"fingerprinting,omitempty"`
	SimilarityTimeline []TimelinePoint     `json:"similarityTimeline,omitempty"`
}

// AIDetectionResult describes which generation platform the backend suspects.
type AIDetectionResult struct {
	Platform   string  `json:"platform"`
	Confidence float64 `json:"confidence"`
}

// FingerprintSummary aggregates fingerprint-database matches.
type FingerprintSummary struct {
	Matches           int                `json:"matches"`
	HighestSimilarity float64            `json:"highestSimilarity"`
	Results           []FingerprintMatch `json:"results,omitempty"`
}

// FingerprintMatch is a single matched track from the fingerprint database.
type FingerprintMatch struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Similarity float64 `json:"similarity"`
}

// TimelinePoint is one sample of the similarity-over-time curve.
type TimelinePoint struct {
	Time       float64 `json:"time"`
	Similarity float64 `json:"similarity"`
}

// AnalysisResultPayload pairs analysis data with its generated report text.
// This is the response shape of the analyze, compare, and shared-analysis endpoints.
type AnalysisResultPayload struct {
	AnalysisData AnalysisData `json:"analysisData"`
	ReportText   string       `json:"reportText"`
}

// User identifies the signed-in account. Login is a client-side stub; the
// record carries no credentials or tokens.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Subscription string `json:"subscription,omitempty"`
}

// LibraryItem is a persisted, user-owned analysis result.
type LibraryItem struct {
	ID        string       `json:"id"`
	SongTitle string       `json:"songTitle"`
	Date      time.Time    `json:"date"`
	Data      AnalysisData `json:"data"`
}

// CatalogItem is a publicly shared, cleared track listed for licensing discovery.
type CatalogItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Description string `json:"description"`
	AudioURL    string `json:"audioUrl,omitempty"`
}

// Role distinguishes who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageKind tags a chat message at creation time. The kind is never
// inferred from content.
type MessageKind string

const (
	KindGreeting MessageKind = "greeting"
	KindChat     MessageKind = "chat"
	KindReport   MessageKind = "report"
)

// ChatMessage is one turn of the assistant conversation. Streaming is true
// only while the assistant's reply is still being assembled from the stream.
type ChatMessage struct {
	Role      Role        `json:"role"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Streaming bool        `json:"isStreaming,omitempty"`
}

// ChatContext is the small context object sent with each assistant turn.
type ChatContext struct {
	AppState     string        `json:"appState,omitempty"`
	AnalysisData *AnalysisData `json:"analysisData,omitempty"`
	ReportText   string        `json:"reportText,omitempty"`
}

// Severity classifies a notification for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is a queued user-visible event. Entries expire after a fixed
// delay or on explicit dismissal.
type Notification struct {
	ID       string   `json:"id"`
	Severity Severity `json:"type"`
	Message  string   `json:"message"`
}

// BrainstormMode selects a remix brainstorming strategy.
type BrainstormMode struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Alternative is one generated stem replacement suggestion.
type Alternative struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SystemStatus reports backend health per dependent service.
type SystemStatus struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// FeedbackKind is the category of a feedback submission.
type FeedbackKind string

const (
	FeedbackBug     FeedbackKind = "bug"
	FeedbackFeature FeedbackKind = "feature"
	FeedbackGeneral FeedbackKind = "general"
)

// CatalogSubmission is the form payload for listing a track in the catalog.
type CatalogSubmission struct {
	Title        string
	Artist       string
	Description  string
	ContactEmail string
	AudioPath    string
}
