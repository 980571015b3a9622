// HTTP implementation of the Backend interface for the MelodyCompare API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/shared"
)

const (
	statusCacheTTL = 30 * time.Second
	audioCacheTTL  = 5 * time.Minute
)

// APIService implements [Backend] over HTTP against the MelodyCompare backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
}

var _ Backend = (*APIService)(nil)

// NewAPIService creates a Backend client. An empty baseURL falls back to a
// local development server, a nil client to [http.DefaultClient]. rps caps
// outbound requests per second; zero or negative disables limiting.
func NewAPIService(baseURL string, client *http.Client, rps float64) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      gocache.New(statusCacheTTL, time.Minute),
	}
}

func (a *APIService) Name() string { return "melodycompare" }

// apiError is the backend's JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}

// statusError carries the HTTP status of a failed request. It unwraps to
// [shared.ErrAPIRequest] so call sites can match the sentinel.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%v: %s (status %d)", shared.ErrAPIRequest, e.message, e.status)
	}
	return fmt.Sprintf("%v: status %d %s", shared.ErrAPIRequest, e.status, http.StatusText(e.status))
}

func (e *statusError) Unwrap() error { return shared.ErrAPIRequest }

// errorStatus reports whether err is a backend failure with the given status.
func errorStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == status
}

// checkResponse turns a non-2xx response into a wrapped error, decoding the
// backend's error envelope when one is present.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &statusError{status: resp.StatusCode, message: envelope.Error}
	}

	return &statusError{status: resp.StatusCode}
}

// do applies the shared rate limit and executes the request.
func (a *APIService) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (a *APIService) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// postJSON performs a POST with a JSON body and decodes the JSON response into out.
func (a *APIService) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// postMultipart uploads files (form field name → local path) plus plain form
// fields, decoding the JSON response into out when non-nil.
func (a *APIService) postMultipart(ctx context.Context, path string, files map[string]string, fields map[string]string, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, filePath := range files {
		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", filePath, err)
		}

		part, err := writer.CreateFormFile(field, filepath.Base(filePath))
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		f.Close()
	}

	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// openStream performs a POST with a JSON body and hands back the raw response
// body as a chunked text stream.
func (a *APIService) openStream(ctx context.Context, path string, payload any) (*Stream, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.do(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return NewStream(resp.Body), nil
}

// Analyze uploads one audio file for a full copyright-risk analysis.
func (a *APIService) Analyze(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
	var result models.AnalysisResultPayload
	err := a.postMultipart(ctx, "/api/analyze", map[string]string{"audioFile": audioPath}, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Compare uploads two songs for a pairwise similarity analysis.
func (a *APIService) Compare(ctx context.Context, aiSongPath, copyrightedPath string) (*models.AnalysisResultPayload, error) {
	files := map[string]string{
		"aiSong":          aiSongPath,
		"copyrightedSong": copyrightedPath,
	}

	var result models.AnalysisResultPayload
	if err := a.postMultipart(ctx, "/api/compare", files, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadAnalysisAudio attaches the analyzed audio to a library entry.
func (a *APIService) UploadAnalysisAudio(ctx context.Context, analysisID, audioPath string) error {
	path := "/api/analysis-audio/" + analysisID
	return a.postMultipart(ctx, path, map[string]string{"audioFile": audioPath}, nil, nil)
}

// chatRequest is the JSON payload for both streaming chat endpoints.
type chatRequest struct {
	History []models.ChatMessage `json:"history"`
	Message string               `json:"message"`
	Context *models.ChatContext  `json:"context,omitempty"`
}

// AssistantChatStream submits one assistant turn and returns the reply stream.
func (a *APIService) AssistantChatStream(ctx context.Context, history []models.ChatMessage, message string, chatCtx models.ChatContext) (*Stream, error) {
	payload := chatRequest{History: history, Message: message, Context: &chatCtx}
	return a.openStream(ctx, "/api/assistant-chat", payload)
}

// ReportChatStream submits a follow-up question about a generated report.
func (a *APIService) ReportChatStream(ctx context.Context, history []models.ChatMessage, message string) (*Stream, error) {
	payload := chatRequest{History: history, Message: message}
	return a.openStream(ctx, "/api/chat", payload)
}

// Brainstorm generates remix ideas for an analysis.
func (a *APIService) Brainstorm(ctx context.Context, data models.AnalysisData, mode models.BrainstormMode, theme string) ([]string, error) {
	payload := struct {
		AnalysisData models.AnalysisData   `json:"analysisData"`
		Mode         models.BrainstormMode `json:"mode"`
		Theme        string                `json:"theme,omitempty"`
	}{data, mode, theme}

	var ideas []string
	if err := a.postJSON(ctx, "/api/brainstorm", payload, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// EnhancePrompt rewrites a base music-generation prompt.
func (a *APIService) EnhancePrompt(ctx context.Context, basePrompt string) (string, error) {
	payload := struct {
		BasePrompt string `json:"basePrompt"`
	}{basePrompt}

	var result struct {
		EnhancedPrompt string `json:"enhancedPrompt"`
	}
	if err := a.postJSON(ctx, "/api/enhance-prompt", payload, &result); err != nil {
		return "", err
	}
	return result.EnhancedPrompt, nil
}

// GenerateReport synthesizes the narrative report for an analysis.
func (a *APIService) GenerateReport(ctx context.Context, data models.AnalysisData) (string, error) {
	payload := struct {
		AnalysisData models.AnalysisData `json:"analysisData"`
	}{data}

	var result struct {
		ReportText string `json:"reportText"`
	}
	if err := a.postJSON(ctx, "/api/generate-report", payload, &result); err != nil {
		return "", err
	}
	return result.ReportText, nil
}

// Publish shares an analysis publicly and returns its share id.
func (a *APIService) Publish(ctx context.Context, data models.AnalysisData, reportText string) (string, error) {
	payload := struct {
		AnalysisData models.AnalysisData `json:"analysisData"`
		ReportText   string              `json:"reportText"`
	}{data, reportText}

	var result struct {
		ID string `json:"id"`
	}
	if err := a.postJSON(ctx, "/api/share", payload, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// SharedAnalysis fetches a published analysis by share id.
func (a *APIService) SharedAnalysis(ctx context.Context, id string) (*models.AnalysisResultPayload, error) {
	var result models.AnalysisResultPayload
	if err := a.getJSON(ctx, "/api/analysis/"+id, &result); err != nil {
		if errorStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrAnalysisNotFound, id)
		}
		return nil, err
	}
	return &result, nil
}

// SendFeedback submits user feedback.
func (a *APIService) SendFeedback(ctx context.Context, kind models.FeedbackKind, message, email string) error {
	payload := struct {
		Type    models.FeedbackKind `json:"type"`
		Message string              `json:"message"`
		Email   string              `json:"email,omitempty"`
	}{kind, message, email}

	var result struct {
		Success bool `json:"success"`
	}
	return a.postJSON(ctx, "/api/feedback", payload, &result)
}

// SubmitToCatalog lists a cleared track in the public catalog.
func (a *APIService) SubmitToCatalog(ctx context.Context, sub models.CatalogSubmission) (*models.CatalogItem, error) {
	fields := map[string]string{
		"title":       sub.Title,
		"artist":      sub.Artist,
		"description": sub.Description,
	}
	if sub.ContactEmail != "" {
		fields["contactEmail"] = sub.ContactEmail
	}

	files := map[string]string{}
	if sub.AudioPath != "" {
		files["audioFile"] = sub.AudioPath
	}

	var item models.CatalogItem
	if err := a.postMultipart(ctx, "/api/catalog/submit", files, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CatalogEntries fetches the full public catalog. Never cached; the catalog
// view always reflects a fresh fetch.
func (a *APIService) CatalogEntries(ctx context.Context) ([]models.CatalogItem, error) {
	var entries []models.CatalogItem
	if err := a.getJSON(ctx, "/api/catalog/entries", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SystemStatus reports backend health, cached for a short interval.
func (a *APIService) SystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	if cached, ok := a.cache.Get("status"); ok {
		status := cached.(models.SystemStatus)
		return &status, nil
	}

	var status models.SystemStatus
	if err := a.getJSON(ctx, "/api/status", &status); err != nil {
		return nil, err
	}

	a.cache.Set("status", status, statusCacheTTL)
	return &status, nil
}

// StemAlternatives generates replacement suggestions for a stem.
func (a *APIService) StemAlternatives(ctx context.Context, stemName string) ([]models.Alternative, error) {
	payload := struct {
		StemName string `json:"stemName"`
	}{stemName}

	var alternatives []models.Alternative
	if err := a.postJSON(ctx, "/api/stem-alternatives", payload, &alternatives); err != nil {
		return nil, err
	}
	return alternatives, nil
}

// Audio fetches the stored audio bytes for a library entry, cached so that
// repeated playback within a session does not refetch.
func (a *APIService) Audio(ctx context.Context, id string) ([]byte, error) {
	cacheKey := "audio:" + id
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.([]byte), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/audio/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	a.cache.Set(cacheKey, body, audioCacheTTL)
	return body, nil
}
