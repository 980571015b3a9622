package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/repositories"
	"github.com/melodycompare/mcx/internal/services"
	"github.com/melodycompare/mcx/internal/shared"
)

// Loader texts shown while the analyzing view is active.
const (
	loaderAnalyze = "Uploading... Analyzing audio... Generating report..."
	loaderCompare = "Uploading... Comparing songs... Generating report..."
	loaderCatalog = "Loading Cleared Catalog..."
	loaderShared  = "Loading shared analysis..."
)

// Controller owns the Session and serializes every state transition. Remote
// fetches run outside the lock; a generation counter discards results of an
// operation that a newer one has superseded, so the displayed screen always
// matches the last completed operation.
type Controller struct {
	mu     sync.Mutex
	sess   Session
	gen    uint64
	api    services.Backend
	store  *repositories.StateStore
	lib    *repositories.LibraryRepository
	logger *log.Logger
	notes  *notificationQueue
	now    func() time.Time
}

// ControllerOpts configures a Controller.
type ControllerOpts struct {
	API     services.Backend
	Store   *repositories.StateStore
	Library *repositories.LibraryRepository
	Logger  *log.Logger

	// NotificationTTL overrides the 5 second auto-dismiss delay. Tests use
	// a shorter value together with Now.
	NotificationTTL time.Duration
	Now             func() time.Time
}

// NewController creates a Controller starting on the home screen. Call
// Bootstrap to restore persisted state or resolve a shared link.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		sess:   Session{View: StateHome},
		api:    opts.API,
		store:  opts.Store,
		lib:    opts.Library,
		logger: opts.Logger,
		notes:  newNotificationQueue(opts.NotificationTTL, opts.Now),
		now:    opts.Now,
	}
}

// Snapshot returns a copy of the current session for rendering.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.sess
	out.Library = append([]models.LibraryItem(nil), c.sess.Library...)
	out.Catalog = append([]models.CatalogItem(nil), c.sess.Catalog...)
	return out
}

// Notifications returns the live notification queue in arrival order.
func (c *Controller) Notifications() []models.Notification {
	return c.notes.active()
}

// DismissNotification removes a notification before its auto-expiry.
func (c *Controller) DismissNotification(id string) {
	c.notes.dismiss(id)
}

// notify enqueues a user-visible event; duplicates of a still-queued
// message are suppressed.
func (c *Controller) notify(severity models.Severity, message string) {
	if id := c.notes.push(severity, message); id == "" {
		c.logger.Debug("duplicate notification suppressed", "message", message)
	}
}

// Bootstrap initializes the session at startup. A non-empty shareID takes
// precedence over restoring any prior session.
func (c *Controller) Bootstrap(ctx context.Context, shareID string) error {
	if shareID != "" {
		return c.ResolveSharedLink(ctx, shareID)
	}
	return c.restore(ctx)
}

// restore loads persisted session values, skipping transient view states.
func (c *Controller) restore(ctx context.Context) error {
	c.mu.Lock()

	var user models.User
	if found, err := c.store.Load(repositories.KeyUser, &user); err != nil {
		c.mu.Unlock()
		return err
	} else if found {
		c.sess.User = &user
	}

	var analysis models.AnalysisData
	if found, err := c.store.Load(repositories.KeySelectedAnalysis, &analysis); err != nil {
		c.mu.Unlock()
		return err
	} else if found {
		c.sess.SelectedAnalysis = &analysis
	}

	if _, err := c.store.Load(repositories.KeyInitialReport, &c.sess.InitialReport); err != nil {
		c.mu.Unlock()
		return err
	}

	items, err := c.lib.List()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.sess.Library = items

	var saved ViewState
	if _, err := c.store.Load(repositories.KeyAppState, &saved); err != nil {
		c.mu.Unlock()
		return err
	}
	if !saved.Valid() || saved.Transient() {
		saved = StateHome
	}
	c.mu.Unlock()

	// The catalog view needs fresh data, so re-enter it through Navigate.
	if saved == StateCatalog {
		return c.Navigate(ctx, StateCatalog)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.View = saved
	return nil
}

// beginLoading flips the view to Analyzing and returns the generation token
// the caller must present when completing.
func (c *Controller) beginLoading(loader string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.sess.LoaderText = loader
	c.sess.View = StateAnalyzing
	return c.gen
}

// stale reports whether a newer operation superseded gen. Callers must hold
// the lock.
func (c *Controller) stale(gen uint64) bool { return c.gen != gen }

// save persists the session snapshot. Persistence is suspended while a
// shared analysis is displayed so the user's own session is untouched, and
// transient view states are never written. Callers must hold the lock.
func (c *Controller) save() {
	if c.sess.SharedView {
		return
	}

	if !c.sess.View.Transient() {
		if err := c.store.Save(repositories.KeyAppState, c.sess.View); err != nil {
			c.logger.Error("failed to persist view state", "error", err)
		}
	}

	persist := func(key string, value any) {
		if err := c.store.Save(key, value); err != nil {
			c.logger.Error("failed to persist session field", "key", key, "error", err)
		}
	}
	persist(repositories.KeyUser, c.sess.User)
	persist(repositories.KeySelectedAnalysis, c.sess.SelectedAnalysis)
	persist(repositories.KeyInitialReport, c.sess.InitialReport)
}

// Navigate moves to target. Data-bearing views fetch first through the
// Analyzing state; on failure the session falls back to Home with an error
// notification. Home while a shared view is active exits shared view
// entirely rather than just switching the enum.
func (c *Controller) Navigate(ctx context.Context, target ViewState) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrInvalidViewState, target)
	}

	c.mu.Lock()
	if target == StateHome && c.sess.SharedView {
		c.exitSharedViewLocked()
		c.save()
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if target == StateCatalog {
		return c.loadCatalog(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.sess.View = target
	c.save()
	return nil
}

// exitSharedViewLocked clears everything the shared overlay owned.
func (c *Controller) exitSharedViewLocked() {
	c.sess.SharedView = false
	c.sess.SelectedAnalysis = nil
	c.sess.InitialReport = ""
	c.sess.AudioRef = ""
	c.sess.AudioTitle = ""
	c.sess.View = StateHome
}

func (c *Controller) loadCatalog(ctx context.Context) error {
	gen := c.beginLoading(loaderCatalog)

	entries, err := c.api.CatalogEntries(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(gen) {
		return nil
	}

	if err != nil {
		c.logger.Error("catalog fetch failed", "error", err)
		c.notify(models.SeverityError, "Could not load the Cleared Catalog. Please try again later.")
		c.sess.View = StateHome
		c.save()
		return fmt.Errorf("catalog fetch failed: %w", err)
	}

	c.sess.Catalog = entries
	c.sess.View = StateCatalog
	c.save()
	return nil
}

// StartAnalysis uploads one audio file for analysis. The view flips to
// Analyzing before any network call and always resolves to Analysis or Home.
// Only a logged-in user gets a library entry and an audio upload.
func (c *Controller) StartAnalysis(ctx context.Context, audioPath string) error {
	return c.runAnalysis(ctx, loaderAnalyze, audioPath, "Analysis", func(runCtx context.Context) (*models.AnalysisResultPayload, error) {
		return c.api.Analyze(runCtx, audioPath)
	})
}

// StartComparison uploads an AI song and a copyrighted song for a pairwise
// analysis. Same transition contract as StartAnalysis.
func (c *Controller) StartComparison(ctx context.Context, aiSongPath, copyrightedPath string) error {
	return c.runAnalysis(ctx, loaderCompare, aiSongPath, "Comparison", func(runCtx context.Context) (*models.AnalysisResultPayload, error) {
		return c.api.Compare(runCtx, aiSongPath, copyrightedPath)
	})
}

func (c *Controller) runAnalysis(ctx context.Context, loader, audioPath, fallbackLabel string, call func(context.Context) (*models.AnalysisResultPayload, error)) error {
	title := shared.TitleFromFilename(audioPath)

	gen := c.beginLoading(loader)
	c.mu.Lock()
	c.sess.SharedView = false
	c.sess.AudioRef = audioPath
	c.sess.AudioTitle = title
	c.mu.Unlock()

	result, err := call(ctx)

	// The audio upload and library row commit happen under the lock, after
	// the staleness check, so a superseded run can never persist rows the
	// session does not show.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(gen) {
		return nil
	}
	if err != nil {
		return c.failAnalysisLocked(err)
	}

	saved := false
	if c.sess.LoggedIn() {
		item := models.LibraryItem{
			ID:        shared.GenerateID(),
			SongTitle: title,
			Date:      c.now(),
			Data:      result.AnalysisData,
		}
		if item.SongTitle == "" {
			item.SongTitle = fmt.Sprintf("%s #%d", fallbackLabel, len(c.sess.Library)+1)
		}

		if uploadErr := c.api.UploadAnalysisAudio(ctx, item.ID, audioPath); uploadErr != nil {
			return c.failAnalysisLocked(uploadErr)
		}
		if createErr := c.lib.Create(item); createErr != nil {
			return c.failAnalysisLocked(createErr)
		}
		c.sess.Library = append([]models.LibraryItem{item}, c.sess.Library...)
		saved = true
	}

	if saved {
		c.notify(models.SeveritySuccess, "Analysis complete and saved to library.")
	} else {
		c.notify(models.SeveritySuccess, "Analysis complete.")
	}

	data := result.AnalysisData
	c.sess.SelectedAnalysis = &data
	c.sess.InitialReport = result.ReportText
	c.sess.View = StateAnalysis
	c.save()
	return nil
}

func (c *Controller) failAnalysisLocked(err error) error {
	c.logger.Error("analysis failed", "error", err)
	c.notify(models.SeverityError, userMessage(err))
	c.sess.View = StateHome
	c.save()
	return fmt.Errorf("analysis failed: %w", err)
}

// ViewLibraryItem displays a stored analysis. The item's report is
// regenerated on demand, so any previously shown ad-hoc report is cleared.
func (c *Controller) ViewLibraryItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.sess.Library {
		if item.ID != id {
			continue
		}

		data := item.Data
		c.gen++
		c.sess.SelectedAnalysis = &data
		c.sess.InitialReport = ""
		c.sess.AudioRef = "/api/audio/" + item.ID
		c.sess.AudioTitle = item.SongTitle
		c.sess.SharedView = false
		c.sess.View = StateAnalysis
		c.save()
		return nil
	}

	return fmt.Errorf("%w: %s", shared.ErrLibraryItemAbsent, id)
}

// Login records the user and lands on the dashboard.
func (c *Controller) Login(user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.User = &user
	c.sess.View = StateDashboard
	c.save()
	c.notify(models.SeveritySuccess, fmt.Sprintf("Welcome back, %s!", firstName(user.Name)))
}

// UpdateUser replaces the account record.
func (c *Controller) UpdateUser(user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.User = &user
	c.save()
	c.notify(models.SeveritySuccess, "Account details updated successfully.")
}

// Logout is the only full session reset: persisted keys are erased and the
// library cleared before the view changes, so no stale per-user data can
// leak into the next session. The chat session is reset by the caller that
// owns it, after this returns.
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear persisted state: %w", err)
	}
	if err := c.lib.Clear(); err != nil {
		return fmt.Errorf("failed to clear library: %w", err)
	}

	c.gen++
	c.sess = Session{View: StateHome}
	c.notify(models.SeverityInfo, "You have been signed out.")
	return nil
}

// DeleteLibraryItem removes an entry. A second delete of the same id is a
// no-op: the library is left unchanged.
func (c *Controller) DeleteLibraryItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lib.Delete(id); err != nil {
		return err
	}

	kept := c.sess.Library[:0]
	removed := false
	for _, item := range c.sess.Library {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.sess.Library = kept

	if removed {
		c.notify(models.SeverityInfo, "Analysis deleted from library.")
	}
	return nil
}

// RenameLibraryItem retitles an entry.
func (c *Controller) RenameLibraryItem(id, newTitle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lib.Rename(id, newTitle); err != nil {
		return err
	}

	for i := range c.sess.Library {
		if c.sess.Library[i].ID == id {
			c.sess.Library[i].SongTitle = newTitle
		}
	}

	c.notify(models.SeveritySuccess, "Analysis renamed.")
	return nil
}

// SubmitFeedback sends user feedback. On failure the caller keeps its form
// open for retry; only a notification records the outcome.
func (c *Controller) SubmitFeedback(ctx context.Context, kind models.FeedbackKind, message, email string) error {
	c.mu.Lock()
	if c.sess.User != nil && c.sess.User.Email != "" {
		email = c.sess.User.Email
	}
	c.mu.Unlock()

	if err := c.api.SendFeedback(ctx, kind, message, email); err != nil {
		c.logger.Error("feedback submission failed", "error", err)
		c.notify(models.SeverityError, fmt.Sprintf("Feedback submission failed: %s", userMessage(err)))
		return fmt.Errorf("feedback submission failed: %w", err)
	}

	c.notify(models.SeveritySuccess, "Thank you! Your feedback has been submitted.")
	return nil
}

// SubmitToCatalog lists a track in the public catalog, then re-enters the
// catalog view so the listing reflects the fresh backend state.
func (c *Controller) SubmitToCatalog(ctx context.Context, sub models.CatalogSubmission) error {
	item, err := c.api.SubmitToCatalog(ctx, sub)
	if err != nil {
		c.logger.Error("catalog submission failed", "error", err)
		c.notify(models.SeverityError, fmt.Sprintf("Catalog submission failed: %s", userMessage(err)))
		return fmt.Errorf("catalog submission failed: %w", err)
	}

	c.mu.Lock()
	c.sess.Catalog = append([]models.CatalogItem{*item}, c.sess.Catalog...)
	c.mu.Unlock()

	c.notify(models.SeveritySuccess, "Your track has been submitted to the Cleared Catalog!")
	return c.Navigate(ctx, StateCatalog)
}

// ResolveSharedLink fetches a published analysis and enters the read-only
// shared view. This one-shot bootstrap takes precedence over restoring any
// prior session, and persistence stays suspended until the user leaves.
func (c *Controller) ResolveSharedLink(ctx context.Context, id string) error {
	gen := c.beginLoading(loaderShared)

	payload, err := c.api.SharedAnalysis(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(gen) {
		return nil
	}

	if err != nil {
		c.logger.Error("shared analysis fetch failed", "id", id, "error", err)
		c.notify(models.SeverityError, "Could not load the shared analysis. The link may be invalid or expired.")
		c.sess.View = StateHome
		return fmt.Errorf("shared analysis fetch failed: %w", err)
	}

	data := payload.AnalysisData
	c.sess.SelectedAnalysis = &data
	c.sess.InitialReport = payload.ReportText
	c.sess.SharedView = true
	c.sess.View = StateAnalysis
	c.notify(models.SeverityInfo, "Viewing a shared analysis.")
	return nil
}

// GenerateReport returns the narrative report for the selected analysis,
// reusing a cached report for the same library entry when one exists.
func (c *Controller) GenerateReport(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.sess.SelectedAnalysis == nil {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: no analysis selected", shared.ErrInvalidArgument)
	}
	data := *c.sess.SelectedAnalysis
	if c.sess.InitialReport != "" {
		report := c.sess.InitialReport
		c.mu.Unlock()
		return report, nil
	}
	cacheKey := c.reportCacheKeyLocked()
	c.mu.Unlock()

	if cacheKey != "" {
		var cached string
		if found, err := c.store.Load(cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	report, err := c.api.GenerateReport(ctx, data)
	if err != nil {
		c.notify(models.SeverityError, fmt.Sprintf("Report generation failed: %s", userMessage(err)))
		return "", fmt.Errorf("report generation failed: %w", err)
	}

	c.mu.Lock()
	c.sess.InitialReport = report
	sharedView := c.sess.SharedView
	c.save()
	c.mu.Unlock()

	if cacheKey != "" && !sharedView {
		if err := c.store.Save(cacheKey, report); err != nil {
			c.logger.Error("failed to cache report", "error", err)
		}
	}
	return report, nil
}

// reportCacheKeyLocked maps the selected analysis to its library entry's
// report-cache key, or "" when the analysis is not in the library.
func (c *Controller) reportCacheKeyLocked() string {
	if c.sess.SelectedAnalysis == nil {
		return ""
	}
	for _, item := range c.sess.Library {
		if item.Data.SongTitle == c.sess.SelectedAnalysis.SongTitle &&
			item.Data.RiskScore == c.sess.SelectedAnalysis.RiskScore {
			return repositories.KeyReportCachePrefix + item.ID
		}
	}
	return ""
}

// userMessage derives a user-readable description from a failed call.
func userMessage(err error) string {
	if err == nil {
		return "An unknown error occurred."
	}
	return err.Error()
}

func firstName(full string) string {
	for i, r := range full {
		if r == ' ' {
			return full[:i]
		}
	}
	return full
}
