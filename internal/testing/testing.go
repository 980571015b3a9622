// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/services"
)

// MockBackend is a test double for [services.Backend]. Each method delegates
// to the matching Fn field when set and otherwise returns an empty success,
// so tests only script the calls they care about.
type MockBackend struct {
	AnalyzeFn             func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error)
	CompareFn             func(ctx context.Context, aiSongPath, copyrightedPath string) (*models.AnalysisResultPayload, error)
	UploadAnalysisAudioFn func(ctx context.Context, analysisID, audioPath string) error
	AssistantChatFn       func(ctx context.Context, history []models.ChatMessage, message string, chatCtx models.ChatContext) (*services.Stream, error)
	ReportChatFn          func(ctx context.Context, history []models.ChatMessage, message string) (*services.Stream, error)
	BrainstormFn          func(ctx context.Context, data models.AnalysisData, mode models.BrainstormMode, theme string) ([]string, error)
	EnhancePromptFn       func(ctx context.Context, basePrompt string) (string, error)
	GenerateReportFn      func(ctx context.Context, data models.AnalysisData) (string, error)
	PublishFn             func(ctx context.Context, data models.AnalysisData, reportText string) (string, error)
	SharedAnalysisFn      func(ctx context.Context, id string) (*models.AnalysisResultPayload, error)
	SendFeedbackFn        func(ctx context.Context, kind models.FeedbackKind, message, email string) error
	SubmitToCatalogFn     func(ctx context.Context, sub models.CatalogSubmission) (*models.CatalogItem, error)
	CatalogEntriesFn      func(ctx context.Context) ([]models.CatalogItem, error)
	SystemStatusFn        func(ctx context.Context) (*models.SystemStatus, error)
	StemAlternativesFn    func(ctx context.Context, stemName string) ([]models.Alternative, error)
	AudioFn               func(ctx context.Context, id string) ([]byte, error)
}

func (m *MockBackend) Analyze(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(ctx, audioPath)
	}
	return &models.AnalysisResultPayload{}, nil
}

func (m *MockBackend) Compare(ctx context.Context, aiSongPath, copyrightedPath string) (*models.AnalysisResultPayload, error) {
	if m.CompareFn != nil {
		return m.CompareFn(ctx, aiSongPath, copyrightedPath)
	}
	return &models.AnalysisResultPayload{}, nil
}

func (m *MockBackend) UploadAnalysisAudio(ctx context.Context, analysisID, audioPath string) error {
	if m.UploadAnalysisAudioFn != nil {
		return m.UploadAnalysisAudioFn(ctx, analysisID, audioPath)
	}
	return nil
}

func (m *MockBackend) AssistantChatStream(ctx context.Context, history []models.ChatMessage, message string, chatCtx models.ChatContext) (*services.Stream, error) {
	if m.AssistantChatFn != nil {
		return m.AssistantChatFn(ctx, history, message, chatCtx)
	}
	return services.NewStream(io.NopCloser(strings.NewReader(""))), nil
}

func (m *MockBackend) ReportChatStream(ctx context.Context, history []models.ChatMessage, message string) (*services.Stream, error) {
	if m.ReportChatFn != nil {
		return m.ReportChatFn(ctx, history, message)
	}
	return services.NewStream(io.NopCloser(strings.NewReader(""))), nil
}

func (m *MockBackend) Brainstorm(ctx context.Context, data models.AnalysisData, mode models.BrainstormMode, theme string) ([]string, error) {
	if m.BrainstormFn != nil {
		return m.BrainstormFn(ctx, data, mode, theme)
	}
	return nil, nil
}

func (m *MockBackend) EnhancePrompt(ctx context.Context, basePrompt string) (string, error) {
	if m.EnhancePromptFn != nil {
		return m.EnhancePromptFn(ctx, basePrompt)
	}
	return basePrompt, nil
}

func (m *MockBackend) GenerateReport(ctx context.Context, data models.AnalysisData) (string, error) {
	if m.GenerateReportFn != nil {
		return m.GenerateReportFn(ctx, data)
	}
	return "", nil
}

func (m *MockBackend) Publish(ctx context.Context, data models.AnalysisData, reportText string) (string, error) {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, data, reportText)
	}
	return "", nil
}

func (m *MockBackend) SharedAnalysis(ctx context.Context, id string) (*models.AnalysisResultPayload, error) {
	if m.SharedAnalysisFn != nil {
		return m.SharedAnalysisFn(ctx, id)
	}
	return &models.AnalysisResultPayload{}, nil
}

func (m *MockBackend) SendFeedback(ctx context.Context, kind models.FeedbackKind, message, email string) error {
	if m.SendFeedbackFn != nil {
		return m.SendFeedbackFn(ctx, kind, message, email)
	}
	return nil
}

func (m *MockBackend) SubmitToCatalog(ctx context.Context, sub models.CatalogSubmission) (*models.CatalogItem, error) {
	if m.SubmitToCatalogFn != nil {
		return m.SubmitToCatalogFn(ctx, sub)
	}
	return &models.CatalogItem{Title: sub.Title, Artist: sub.Artist}, nil
}

func (m *MockBackend) CatalogEntries(ctx context.Context) ([]models.CatalogItem, error) {
	if m.CatalogEntriesFn != nil {
		return m.CatalogEntriesFn(ctx)
	}
	return []models.CatalogItem{}, nil
}

func (m *MockBackend) SystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	if m.SystemStatusFn != nil {
		return m.SystemStatusFn(ctx)
	}
	return &models.SystemStatus{}, nil
}

func (m *MockBackend) StemAlternatives(ctx context.Context, stemName string) ([]models.Alternative, error) {
	if m.StemAlternativesFn != nil {
		return m.StemAlternativesFn(ctx, stemName)
	}
	return nil, nil
}

func (m *MockBackend) Audio(ctx context.Context, id string) ([]byte, error) {
	if m.AudioFn != nil {
		return m.AudioFn(ctx, id)
	}
	return nil, nil
}

func (m *MockBackend) Name() string { return "mock" }

// TextStream builds a Stream over a fixed body, for chat tests.
func TextStream(body string) *services.Stream {
	return services.NewStream(io.NopCloser(strings.NewReader(body)))
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
