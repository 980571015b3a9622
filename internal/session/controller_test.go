package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/repositories"
	"github.com/melodycompare/mcx/internal/services"
	"github.com/melodycompare/mcx/internal/shared"
	mocks "github.com/melodycompare/mcx/internal/testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newTestController(t *testing.T, api services.Backend) (*Controller, *repositories.StateStore, *repositories.LibraryRepository) {
	t.Helper()

	db := setupTestDB(t)
	store := repositories.NewStateStore(db)
	lib := repositories.NewLibraryRepository(db)
	ctrl := NewController(ControllerOpts{
		API:     api,
		Store:   store,
		Library: lib,
	})
	return ctrl, store, lib
}

func testUser() models.User {
	return models.User{ID: "u1", Email: "alex@example.com", Name: "Alex Rivera"}
}

func testPayload(title string) *models.AnalysisResultPayload {
	return &models.AnalysisResultPayload{
		AnalysisData: models.AnalysisData{
			SongTitle: title,
			RiskLevel: models.RiskMedium,
			RiskScore: 58,
		},
		ReportText: "## Report for " + title,
	}
}

func hasNotification(ctrl *Controller, severity models.Severity, contains string) bool {
	for _, n := range ctrl.Notifications() {
		if n.Severity == severity && n.Message == contains {
			return true
		}
	}
	return false
}

func TestControllerNavigate(t *testing.T) {
	ctx := context.Background()

	t.Run("moves between simple views and persists the state", func(t *testing.T) {
		ctrl, store, _ := newTestController(t, &mocks.MockBackend{})

		if err := ctrl.Navigate(ctx, StateDashboard); err != nil {
			t.Fatalf("Navigate failed: %v", err)
		}
		if got := ctrl.Snapshot().View; got != StateDashboard {
			t.Errorf("expected view %q, got %q", StateDashboard, got)
		}

		var saved ViewState
		if found, err := store.Load(repositories.KeyAppState, &saved); err != nil || !found {
			t.Fatalf("expected persisted view state, found=%v err=%v", found, err)
		}
		if saved != StateDashboard {
			t.Errorf("persisted %q, want %q", saved, StateDashboard)
		}
	})

	t.Run("rejects an unknown view", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, &mocks.MockBackend{})

		err := ctrl.Navigate(ctx, ViewState("settings"))
		if !errors.Is(err, shared.ErrInvalidViewState) {
			t.Errorf("expected ErrInvalidViewState, got %v", err)
		}
		if got := ctrl.Snapshot().View; got != StateHome {
			t.Errorf("view changed to %q on invalid target", got)
		}
	})

	t.Run("catalog navigation fetches entries first", func(t *testing.T) {
		api := &mocks.MockBackend{
			CatalogEntriesFn: func(ctx context.Context) ([]models.CatalogItem, error) {
				return []models.CatalogItem{{ID: "c1", Title: "Sunrise"}}, nil
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.Navigate(ctx, StateCatalog); err != nil {
			t.Fatalf("Navigate failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateCatalog {
			t.Errorf("expected catalog view, got %q", snap.View)
		}
		if len(snap.Catalog) != 1 || snap.Catalog[0].Title != "Sunrise" {
			t.Errorf("unexpected catalog: %v", snap.Catalog)
		}
	})

	t.Run("catalog fetch failure falls back to home keeping old entries", func(t *testing.T) {
		calls := 0
		api := &mocks.MockBackend{
			CatalogEntriesFn: func(ctx context.Context) ([]models.CatalogItem, error) {
				calls++
				if calls == 1 {
					return []models.CatalogItem{{ID: "c1", Title: "Sunrise"}}, nil
				}
				return nil, errors.New("upstream down")
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.Navigate(ctx, StateCatalog); err != nil {
			t.Fatalf("first catalog load failed: %v", err)
		}
		if err := ctrl.Navigate(ctx, StateCatalog); err == nil {
			t.Fatal("expected error on second catalog load")
		}

		snap := ctrl.Snapshot()
		if snap.View != StateHome {
			t.Errorf("expected fallback to home, got %q", snap.View)
		}
		if len(snap.Catalog) != 1 {
			t.Errorf("cached catalog should be unchanged, got %d entries", len(snap.Catalog))
		}
		if !hasNotification(ctrl, models.SeverityError, "Could not load the Cleared Catalog. Please try again later.") {
			t.Error("expected error notification")
		}
	})
}

func TestControllerAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("logged out analysis shows result without a library entry", func(t *testing.T) {
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload("Neon Drift"), nil
			},
		}
		ctrl, _, lib := newTestController(t, api)

		if err := ctrl.StartAnalysis(ctx, "/tmp/neon-drift.mp3"); err != nil {
			t.Fatalf("StartAnalysis failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateAnalysis {
			t.Errorf("expected analysis view, got %q", snap.View)
		}
		if snap.SelectedAnalysis == nil || snap.SelectedAnalysis.SongTitle != "Neon Drift" {
			t.Errorf("unexpected selected analysis: %+v", snap.SelectedAnalysis)
		}
		if snap.InitialReport == "" {
			t.Error("expected initial report to be set")
		}
		if len(snap.Library) != 0 {
			t.Errorf("logged-out analysis must not touch the library, got %d items", len(snap.Library))
		}

		stored, err := lib.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("expected empty stored library, got %d", len(stored))
		}
		if !hasNotification(ctrl, models.SeveritySuccess, "Analysis complete.") {
			t.Error("expected plain success notification")
		}
	})

	t.Run("logged in analysis uploads audio and prepends a library entry", func(t *testing.T) {
		uploaded := ""
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload("Neon Drift"), nil
			},
			UploadAnalysisAudioFn: func(ctx context.Context, analysisID, audioPath string) error {
				uploaded = analysisID
				return nil
			},
		}
		ctrl, _, lib := newTestController(t, api)
		ctrl.Login(testUser())

		if err := ctrl.StartAnalysis(ctx, "/tmp/neon-drift.mp3"); err != nil {
			t.Fatalf("StartAnalysis failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if len(snap.Library) != 1 {
			t.Fatalf("expected 1 library item, got %d", len(snap.Library))
		}
		if snap.Library[0].SongTitle != "neon-drift" {
			t.Errorf("expected title from filename, got %q", snap.Library[0].SongTitle)
		}
		if uploaded != snap.Library[0].ID {
			t.Errorf("uploaded id %q does not match library id %q", uploaded, snap.Library[0].ID)
		}

		stored, err := lib.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(stored) != 1 {
			t.Errorf("expected 1 stored item, got %d", len(stored))
		}
		if !hasNotification(ctrl, models.SeveritySuccess, "Analysis complete and saved to library.") {
			t.Error("expected saved-to-library notification")
		}
	})

	t.Run("new analyses land at the front of the library", func(t *testing.T) {
		title := "First"
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload(title), nil
			},
		}
		ctrl, _, _ := newTestController(t, api)
		ctrl.Login(testUser())

		if err := ctrl.StartAnalysis(ctx, "first.mp3"); err != nil {
			t.Fatalf("first analysis failed: %v", err)
		}
		title = "Second"
		if err := ctrl.StartAnalysis(ctx, "second.mp3"); err != nil {
			t.Fatalf("second analysis failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if len(snap.Library) != 2 {
			t.Fatalf("expected 2 items, got %d", len(snap.Library))
		}
		if snap.Library[0].SongTitle != "second" || snap.Library[1].SongTitle != "first" {
			t.Errorf("expected newest first, got %q then %q", snap.Library[0].SongTitle, snap.Library[1].SongTitle)
		}
	})

	t.Run("analysis failure returns home with an error notification", func(t *testing.T) {
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return nil, errors.New("file too large")
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.StartAnalysis(ctx, "huge.wav"); err == nil {
			t.Fatal("expected StartAnalysis to fail")
		}

		snap := ctrl.Snapshot()
		if snap.View != StateHome {
			t.Errorf("expected home after failure, got %q", snap.View)
		}
		if !hasNotification(ctrl, models.SeverityError, "file too large") {
			t.Error("expected error notification")
		}
	})

	t.Run("a superseded analysis commits nothing", func(t *testing.T) {
		uploads := 0
		var ctrl *Controller
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				// The user navigates away while the call is in flight.
				if err := ctrl.Navigate(ctx, StatePricing); err != nil {
					t.Fatalf("Navigate failed: %v", err)
				}
				return testPayload("Late Result"), nil
			},
			UploadAnalysisAudioFn: func(ctx context.Context, analysisID, audioPath string) error {
				uploads++
				return nil
			},
		}
		c, _, lib := newTestController(t, api)
		ctrl = c
		ctrl.Login(testUser())

		if err := ctrl.StartAnalysis(ctx, "track.mp3"); err != nil {
			t.Fatalf("StartAnalysis failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StatePricing {
			t.Errorf("expected the newer view to win, got %q", snap.View)
		}
		if len(snap.Library) != 0 {
			t.Errorf("expected no session library entry, got %d", len(snap.Library))
		}
		rows, err := lib.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no persisted library rows, got %d", len(rows))
		}
		if uploads != 0 {
			t.Errorf("expected no audio upload, got %d", uploads)
		}
	})

	t.Run("comparison flows through the same transition", func(t *testing.T) {
		api := &mocks.MockBackend{
			CompareFn: func(ctx context.Context, aiSongPath, copyrightedPath string) (*models.AnalysisResultPayload, error) {
				return testPayload("AI Track"), nil
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.StartComparison(ctx, "ai.mp3", "original.mp3"); err != nil {
			t.Fatalf("StartComparison failed: %v", err)
		}
		if got := ctrl.Snapshot().View; got != StateAnalysis {
			t.Errorf("expected analysis view, got %q", got)
		}
	})
}

func TestControllerLibrary(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*Controller, *repositories.LibraryRepository) {
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload(shared.TitleFromFilename(audioPath)), nil
			},
		}
		ctrl, _, lib := newTestController(t, api)
		ctrl.Login(testUser())
		if err := ctrl.StartAnalysis(ctx, "seeded.mp3"); err != nil {
			t.Fatalf("seeding analysis failed: %v", err)
		}
		return ctrl, lib
	}

	t.Run("view library item selects it", func(t *testing.T) {
		ctrl, _ := seed(t)
		id := ctrl.Snapshot().Library[0].ID

		if err := ctrl.ViewLibraryItem(id); err != nil {
			t.Fatalf("ViewLibraryItem failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateAnalysis {
			t.Errorf("expected analysis view, got %q", snap.View)
		}
		if snap.SelectedAnalysis == nil || snap.SelectedAnalysis.SongTitle != "seeded" {
			t.Errorf("unexpected selection: %+v", snap.SelectedAnalysis)
		}
		if snap.InitialReport != "" {
			t.Error("library view should not carry a stale report")
		}
	})

	t.Run("view of a missing item errors", func(t *testing.T) {
		ctrl, _ := seed(t)

		err := ctrl.ViewLibraryItem("nope")
		if !errors.Is(err, shared.ErrLibraryItemAbsent) {
			t.Errorf("expected ErrLibraryItemAbsent, got %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		ctrl, lib := seed(t)
		id := ctrl.Snapshot().Library[0].ID

		if err := ctrl.DeleteLibraryItem(id); err != nil {
			t.Fatalf("first delete failed: %v", err)
		}
		if err := ctrl.DeleteLibraryItem(id); err != nil {
			t.Fatalf("second delete should be a no-op, got %v", err)
		}

		if got := len(ctrl.Snapshot().Library); got != 0 {
			t.Errorf("expected empty library, got %d", got)
		}
		stored, err := lib.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("expected empty stored library, got %d", len(stored))
		}
	})

	t.Run("rename updates session and storage", func(t *testing.T) {
		ctrl, lib := seed(t)
		id := ctrl.Snapshot().Library[0].ID

		if err := ctrl.RenameLibraryItem(id, "Final Mix"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}

		if got := ctrl.Snapshot().Library[0].SongTitle; got != "Final Mix" {
			t.Errorf("session title %q, want %q", got, "Final Mix")
		}
		item, err := lib.Get(id)
		if err != nil || item == nil {
			t.Fatalf("Get failed: item=%v err=%v", item, err)
		}
		if item.SongTitle != "Final Mix" {
			t.Errorf("stored title %q, want %q", item.SongTitle, "Final Mix")
		}
	})
}

func TestControllerAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("login lands on the dashboard", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, &mocks.MockBackend{})

		ctrl.Login(testUser())

		snap := ctrl.Snapshot()
		if snap.View != StateDashboard {
			t.Errorf("expected dashboard, got %q", snap.View)
		}
		if !snap.LoggedIn() {
			t.Error("expected logged-in session")
		}
		if !hasNotification(ctrl, models.SeveritySuccess, "Welcome back, Alex!") {
			t.Error("expected welcome notification")
		}
	})

	t.Run("logout wipes persisted state before navigating", func(t *testing.T) {
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload("Track"), nil
			},
		}
		ctrl, store, lib := newTestController(t, api)
		ctrl.Login(testUser())
		if err := ctrl.StartAnalysis(ctx, "track.mp3"); err != nil {
			t.Fatalf("seeding analysis failed: %v", err)
		}

		if err := ctrl.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateHome {
			t.Errorf("expected home after logout, got %q", snap.View)
		}
		if snap.LoggedIn() || snap.SelectedAnalysis != nil || len(snap.Library) != 0 {
			t.Errorf("session not fully reset: %+v", snap)
		}

		keys, err := store.Keys()
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("expected no persisted keys, got %v", keys)
		}
		stored, err := lib.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("expected empty stored library, got %d", len(stored))
		}
	})

	t.Run("update user keeps the current view", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, &mocks.MockBackend{})
		ctrl.Login(testUser())
		if err := ctrl.Navigate(ctx, StateAccount); err != nil {
			t.Fatalf("Navigate failed: %v", err)
		}

		updated := testUser()
		updated.Name = "Alexandra Rivera"
		ctrl.UpdateUser(updated)

		snap := ctrl.Snapshot()
		if snap.View != StateAccount {
			t.Errorf("expected account view, got %q", snap.View)
		}
		if snap.User == nil || snap.User.Name != "Alexandra Rivera" {
			t.Errorf("user not updated: %+v", snap.User)
		}
	})
}

func TestControllerSharedView(t *testing.T) {
	ctx := context.Background()

	t.Run("shared link enters a read-only analysis view", func(t *testing.T) {
		api := &mocks.MockBackend{
			SharedAnalysisFn: func(ctx context.Context, id string) (*models.AnalysisResultPayload, error) {
				return testPayload("Shared Song"), nil
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.Bootstrap(ctx, "abc123"); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateAnalysis || !snap.SharedView {
			t.Errorf("expected shared analysis view, got view=%q shared=%v", snap.View, snap.SharedView)
		}
	})

	t.Run("persistence is suspended while shared", func(t *testing.T) {
		api := &mocks.MockBackend{
			SharedAnalysisFn: func(ctx context.Context, id string) (*models.AnalysisResultPayload, error) {
				return testPayload("Shared Song"), nil
			},
		}
		ctrl, store, _ := newTestController(t, api)

		if err := ctrl.Bootstrap(ctx, "abc123"); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}
		if err := ctrl.Navigate(ctx, StatePricing); err != nil {
			t.Fatalf("Navigate failed: %v", err)
		}

		var saved ViewState
		found, err := store.Load(repositories.KeyAppState, &saved)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if found {
			t.Errorf("view state persisted while shared: %q", saved)
		}
	})

	t.Run("home exits shared view entirely", func(t *testing.T) {
		api := &mocks.MockBackend{
			SharedAnalysisFn: func(ctx context.Context, id string) (*models.AnalysisResultPayload, error) {
				return testPayload("Shared Song"), nil
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.Bootstrap(ctx, "abc123"); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}
		if err := ctrl.Navigate(ctx, StateHome); err != nil {
			t.Fatalf("Navigate failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateHome || snap.SharedView || snap.SelectedAnalysis != nil {
			t.Errorf("shared view not fully exited: %+v", snap)
		}
	})

	t.Run("invalid link falls back to home", func(t *testing.T) {
		api := &mocks.MockBackend{
			SharedAnalysisFn: func(ctx context.Context, id string) (*models.AnalysisResultPayload, error) {
				return nil, shared.ErrAnalysisNotFound
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.Bootstrap(ctx, "expired"); err == nil {
			t.Fatal("expected Bootstrap to fail")
		}

		snap := ctrl.Snapshot()
		if snap.View != StateHome || snap.SharedView {
			t.Errorf("expected home without shared flag, got view=%q shared=%v", snap.View, snap.SharedView)
		}
	})
}

func TestControllerRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("restores user, selection, and view", func(t *testing.T) {
		db := setupTestDB(t)
		store := repositories.NewStateStore(db)
		lib := repositories.NewLibraryRepository(db)

		user := testUser()
		if err := store.Save(repositories.KeyUser, &user); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := store.Save(repositories.KeyAppState, StateLibrary); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := lib.Create(models.LibraryItem{ID: "l1", SongTitle: "Saved", Date: time.Now()}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		ctrl := NewController(ControllerOpts{API: &mocks.MockBackend{}, Store: store, Library: lib})
		if err := ctrl.Bootstrap(ctx, ""); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateLibrary {
			t.Errorf("expected library view, got %q", snap.View)
		}
		if !snap.LoggedIn() {
			t.Error("expected restored user")
		}
		if len(snap.Library) != 1 {
			t.Errorf("expected 1 library item, got %d", len(snap.Library))
		}
	})

	t.Run("a persisted transient state restores to home", func(t *testing.T) {
		db := setupTestDB(t)
		store := repositories.NewStateStore(db)
		lib := repositories.NewLibraryRepository(db)
		if err := store.Save(repositories.KeyAppState, StateAnalyzing); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		ctrl := NewController(ControllerOpts{API: &mocks.MockBackend{}, Store: store, Library: lib})
		if err := ctrl.Bootstrap(ctx, ""); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}

		if got := ctrl.Snapshot().View; got != StateHome {
			t.Errorf("expected home, got %q", got)
		}
	})

	t.Run("a persisted catalog state refetches entries", func(t *testing.T) {
		db := setupTestDB(t)
		store := repositories.NewStateStore(db)
		lib := repositories.NewLibraryRepository(db)
		if err := store.Save(repositories.KeyAppState, StateCatalog); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		fetched := false
		api := &mocks.MockBackend{
			CatalogEntriesFn: func(ctx context.Context) ([]models.CatalogItem, error) {
				fetched = true
				return []models.CatalogItem{{ID: "c1"}}, nil
			},
		}
		ctrl := NewController(ControllerOpts{API: api, Store: store, Library: lib})
		if err := ctrl.Bootstrap(ctx, ""); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}

		if !fetched {
			t.Error("expected catalog refetch on restore")
		}
		if got := ctrl.Snapshot().View; got != StateCatalog {
			t.Errorf("expected catalog view, got %q", got)
		}
	})
}

func TestControllerReportsAndSubmissions(t *testing.T) {
	ctx := context.Background()

	t.Run("generate report prefers the initial report", func(t *testing.T) {
		calls := 0
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload("Track"), nil
			},
			GenerateReportFn: func(ctx context.Context, data models.AnalysisData) (string, error) {
				calls++
				return "fresh report", nil
			},
		}
		ctrl, _, _ := newTestController(t, api)
		if err := ctrl.StartAnalysis(ctx, "track.mp3"); err != nil {
			t.Fatalf("StartAnalysis failed: %v", err)
		}

		report, err := ctrl.GenerateReport(ctx)
		if err != nil {
			t.Fatalf("GenerateReport failed: %v", err)
		}
		if report != "## Report for Track" {
			t.Errorf("expected initial report, got %q", report)
		}
		if calls != 0 {
			t.Errorf("backend should not be called, got %d calls", calls)
		}
	})

	t.Run("generate report without a selection errors", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, &mocks.MockBackend{})

		if _, err := ctrl.GenerateReport(ctx); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("library reports are cached across regenerations", func(t *testing.T) {
		calls := 0
		api := &mocks.MockBackend{
			AnalyzeFn: func(ctx context.Context, audioPath string) (*models.AnalysisResultPayload, error) {
				return testPayload("Track"), nil
			},
			GenerateReportFn: func(ctx context.Context, data models.AnalysisData) (string, error) {
				calls++
				return "generated report", nil
			},
		}
		ctrl, _, _ := newTestController(t, api)
		ctrl.Login(testUser())
		if err := ctrl.StartAnalysis(ctx, "track.mp3"); err != nil {
			t.Fatalf("StartAnalysis failed: %v", err)
		}
		id := ctrl.Snapshot().Library[0].ID

		// Re-entering from the library clears the initial report, so the
		// first call generates and the second hits the cache.
		for range 2 {
			if err := ctrl.ViewLibraryItem(id); err != nil {
				t.Fatalf("ViewLibraryItem failed: %v", err)
			}
			if _, err := ctrl.GenerateReport(ctx); err != nil {
				t.Fatalf("GenerateReport failed: %v", err)
			}
		}

		if calls != 1 {
			t.Errorf("expected 1 backend call, got %d", calls)
		}
	})

	t.Run("feedback success and failure notify", func(t *testing.T) {
		fail := false
		api := &mocks.MockBackend{
			SendFeedbackFn: func(ctx context.Context, kind models.FeedbackKind, message, email string) error {
				if fail {
					return errors.New("smtp down")
				}
				return nil
			},
		}
		ctrl, _, _ := newTestController(t, api)

		if err := ctrl.SubmitFeedback(ctx, models.FeedbackBug, "crashes on load", "me@example.com"); err != nil {
			t.Fatalf("SubmitFeedback failed: %v", err)
		}
		if !hasNotification(ctrl, models.SeveritySuccess, "Thank you! Your feedback has been submitted.") {
			t.Error("expected success notification")
		}

		fail = true
		if err := ctrl.SubmitFeedback(ctx, models.FeedbackBug, "still broken", ""); err == nil {
			t.Error("expected feedback failure")
		}
	})

	t.Run("feedback uses the account email over the supplied one", func(t *testing.T) {
		var got string
		api := &mocks.MockBackend{
			SendFeedbackFn: func(ctx context.Context, kind models.FeedbackKind, message, email string) error {
				got = email
				return nil
			},
		}
		ctrl, _, _ := newTestController(t, api)
		ctrl.Login(testUser())

		if err := ctrl.SubmitFeedback(ctx, models.FeedbackGeneral, "love it", "other@example.com"); err != nil {
			t.Fatalf("SubmitFeedback failed: %v", err)
		}
		if got != testUser().Email {
			t.Errorf("expected the account email, got %q", got)
		}
	})

	t.Run("catalog submission prepends and re-enters the catalog", func(t *testing.T) {
		api := &mocks.MockBackend{
			SubmitToCatalogFn: func(ctx context.Context, sub models.CatalogSubmission) (*models.CatalogItem, error) {
				return &models.CatalogItem{ID: "new", Title: sub.Title}, nil
			},
			CatalogEntriesFn: func(ctx context.Context) ([]models.CatalogItem, error) {
				return []models.CatalogItem{{ID: "new", Title: "Mine"}, {ID: "old"}}, nil
			},
		}
		ctrl, _, _ := newTestController(t, api)

		err := ctrl.SubmitToCatalog(ctx, models.CatalogSubmission{Title: "Mine", Artist: "Me"})
		if err != nil {
			t.Fatalf("SubmitToCatalog failed: %v", err)
		}

		snap := ctrl.Snapshot()
		if snap.View != StateCatalog {
			t.Errorf("expected catalog view, got %q", snap.View)
		}
		if len(snap.Catalog) == 0 || snap.Catalog[0].ID != "new" {
			t.Errorf("expected fresh entry first, got %v", snap.Catalog)
		}
	})
}
