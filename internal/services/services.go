// package services defines interface Backend for the MelodyCompare HTTP API
package services

import (
	"context"

	"github.com/melodycompare/mcx/internal/models"
)

// Backend defines the remote operations exposed by the MelodyCompare API.
// All analysis, report generation, and sharing happen server-side; the
// client only submits inputs and renders the results.
type Backend interface {
	// Analyze uploads one audio file for a full copyright-risk analysis.
	Analyze(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error)

	// Compare uploads an AI-generated song and a copyrighted song for a
	// pairwise similarity analysis.
	Compare(ctx context.Context, aiSongPath, copyrightedPath string) (*models.AnalysisResultPayload, error)

	// UploadAnalysisAudio attaches the analyzed audio to a library entry so
	// it can be streamed back later.
	UploadAnalysisAudio(ctx context.Context, analysisID, audioPath string) error

	// AssistantChatStream submits one assistant turn and returns the reply
	// as an incrementally decoded text stream. The caller owns the stream
	// and must close it.
	AssistantChatStream(ctx context.Context, history []models.ChatMessage, message string, chatCtx models.ChatContext) (*Stream, error)

	// ReportChatStream submits a follow-up question about a generated report.
	ReportChatStream(ctx context.Context, history []models.ChatMessage, message string) (*Stream, error)

	// Brainstorm generates remix ideas for an analysis.
	Brainstorm(ctx context.Context, data models.AnalysisData, mode models.BrainstormMode, theme string) ([]string, error)

	// EnhancePrompt rewrites a base music-generation prompt.
	EnhancePrompt(ctx context.Context, basePrompt string) (string, error)

	// GenerateReport synthesizes the narrative report for an analysis.
	GenerateReport(ctx context.Context, data models.AnalysisData) (string, error)

	// Publish shares an analysis publicly and returns its share id.
	Publish(ctx context.Context, data models.AnalysisData, reportText string) (string, error)

	// SharedAnalysis fetches a published analysis by share id.
	SharedAnalysis(ctx context.Context, id string) (*models.AnalysisResultPayload, error)

	// SendFeedback submits user feedback.
	SendFeedback(ctx context.Context, kind models.FeedbackKind, message, email string) error

	// SubmitToCatalog lists a cleared track in the public catalog.
	SubmitToCatalog(ctx context.Context, sub models.CatalogSubmission) (*models.CatalogItem, error)

	// CatalogEntries fetches the full public catalog.
	CatalogEntries(ctx context.Context) ([]models.CatalogItem, error)

	// SystemStatus reports backend health.
	SystemStatus(ctx context.Context) (*models.SystemStatus, error)

	// StemAlternatives generates replacement suggestions for a stem.
	StemAlternatives(ctx context.Context, stemName string) ([]models.Alternative, error)

	// Audio fetches the stored audio bytes for a library entry.
	Audio(ctx context.Context, id string) ([]byte, error)

	// Name returns a short identifier for logging.
	Name() string
}
