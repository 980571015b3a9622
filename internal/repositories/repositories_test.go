package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testItem(id, title string, date time.Time) models.LibraryItem {
	return models.LibraryItem{
		ID:        id,
		SongTitle: title,
		Date:      date,
		Data: models.AnalysisData{
			SongTitle: title,
			RiskLevel: models.RiskLow,
			RiskScore: 12,
		},
	}
}

func TestStateStore(t *testing.T) {
	t.Run("Save And Load", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStateStore(db)
		user := models.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}

		if err := store.Save(KeyUser, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}

		var loaded models.User
		found, err := store.Load(KeyUser, &loaded)
		if err != nil {
			t.Fatalf("failed to load user: %v", err)
		}
		if !found {
			t.Fatal("expected user key to exist")
		}
		if loaded.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, loaded.Email)
		}
	})

	t.Run("Load Missing Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStateStore(db)

		var out string
		found, err := store.Load("nope", &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("expected missing key to report not found")
		}
	})

	t.Run("Version Increments Per Write", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStateStore(db)

		for i := 1; i <= 3; i++ {
			if err := store.Save(KeyAppState, "home"); err != nil {
				t.Fatalf("save %d failed: %v", i, err)
			}

			version, err := store.Version(KeyAppState)
			if err != nil {
				t.Fatalf("version read failed: %v", err)
			}
			if version != i {
				t.Errorf("expected version %d, got %d", i, version)
			}
		}
	})

	t.Run("Clear Removes Only Prefixed Keys", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStateStore(db)
		if err := store.Save(KeyAppState, "library"); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.Save(KeyChatHistory, []models.ChatMessage{}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		// A foreign row outside the prefix must survive the bulk clear.
		if _, err := db.Exec("INSERT INTO app_state (key, value) VALUES ('other_app', '1')"); err != nil {
			t.Fatalf("failed to insert foreign row: %v", err)
		}

		if err := store.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		keys, err := store.Keys()
		if err != nil {
			t.Fatalf("keys failed: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("expected no prefixed keys after clear, got %v", keys)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM app_state").Scan(&count); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected foreign row to survive, got %d rows", count)
		}
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStateStore(db)
		if err := store.Save(KeyInitialReport, "# Report"); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		for range 2 {
			if err := store.Delete(KeyInitialReport); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
		}
	})
}

func TestLibraryRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		item := testItem(shared.GenerateID(), "First Song", time.Now())

		if err := repo.Create(item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		got, err := repo.Get(item.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if got == nil {
			t.Fatal("expected item to exist")
		}
		if got.SongTitle != "First Song" {
			t.Errorf("expected title 'First Song', got %s", got.SongTitle)
		}
		if got.Data.RiskLevel != models.RiskLow {
			t.Errorf("expected risk level Low, got %s", got.Data.RiskLevel)
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		base := time.Now().Add(-time.Hour)
		for i, title := range []string{"oldest", "middle", "newest"} {
			item := testItem(shared.GenerateID(), title, base.Add(time.Duration(i)*time.Minute))
			if err := repo.Create(item); err != nil {
				t.Fatalf("failed to create %s: %v", title, err)
			}
		}

		items, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		if items[0].SongTitle != "newest" || items[2].SongTitle != "oldest" {
			t.Errorf("expected newest-first ordering, got %s..%s", items[0].SongTitle, items[2].SongTitle)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		item := testItem(shared.GenerateID(), "draft", time.Now())
		if err := repo.Create(item); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		if err := repo.Rename(item.ID, "final mix"); err != nil {
			t.Fatalf("failed to rename: %v", err)
		}

		got, err := repo.Get(item.ID)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.SongTitle != "final mix" {
			t.Errorf("expected renamed title, got %s", got.SongTitle)
		}
	})

	t.Run("Delete Twice Is No-Op", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		item := testItem(shared.GenerateID(), "gone soon", time.Now())
		if err := repo.Create(item); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		for range 2 {
			if err := repo.Delete(item.ID); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
		}

		items, err := repo.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty library, got %d items", len(items))
		}
	})

	t.Run("Get Missing Returns Nil", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLibraryRepository(db)
		got, err := repo.Get("missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Error("expected nil for missing item")
		}
	})
}
