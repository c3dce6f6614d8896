package userstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func rolePtr(r models.Role) *models.Role { return &r }

func TestUpdateDoc(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		profile models.UserProfile
		want    []string
		absent  []string
	}{
		{
			name:    "empty profile only refreshes lastLogin",
			profile: models.UserProfile{},
			want:    []string{"lastLogin"},
			absent:  []string{"name", "photoURL", "role"},
		},
		{
			name:    "supplied name and photo",
			profile: models.UserProfile{Name: strPtr("Ada"), PhotoURL: strPtr("https://x/p.png")},
			want:    []string{"lastLogin", "name", "photoURL"},
			absent:  []string{"role"},
		},
		{
			name:    "empty strings count as not supplied",
			profile: models.UserProfile{Name: strPtr(""), PhotoURL: strPtr("")},
			want:    []string{"lastLogin"},
			absent:  []string{"name", "photoURL"},
		},
		{
			name:    "role without admin flag is ignored",
			profile: models.UserProfile{Role: rolePtr(models.RoleAdmin)},
			absent:  []string{"role"},
		},
		{
			name:    "role with admin flag is applied",
			profile: models.UserProfile{Role: rolePtr(models.RoleOrganizer), AdminRequest: true},
			want:    []string{"role"},
		},
		{
			name:    "admin flag without role changes nothing",
			profile: models.UserProfile{AdminRequest: true},
			absent:  []string{"role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := userstore.UpdateDoc(tt.profile, now)
			for _, k := range tt.want {
				if _, ok := set[k]; !ok {
					t.Errorf("expected %q in update, got %v", k, set)
				}
			}
			for _, k := range tt.absent {
				if _, ok := set[k]; ok {
					t.Errorf("did not expect %q in update, got %v", k, set)
				}
			}
			if set["lastLogin"] != now {
				t.Errorf("lastLogin: got %v, want %v", set["lastLogin"], now)
			}
		})
	}
}

func TestNewUser_Defaults(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	u := userstore.NewUser("new@example.com", models.UserProfile{}, now)

	if u.Name != "" || u.PhotoURL != "" {
		t.Errorf("expected empty name/photoURL, got %q/%q", u.Name, u.PhotoURL)
	}
	if u.Role != models.RoleUser {
		t.Errorf("role: got %q, want %q", u.Role, models.RoleUser)
	}
	if u.Status != models.StatusActive {
		t.Errorf("status: got %q, want %q", u.Status, models.StatusActive)
	}
	if !u.CreatedAt.Equal(now) || u.LastLogin == nil || !u.LastLogin.Equal(now) {
		t.Errorf("expected createdAt and lastLogin at %v, got %v / %v", now, u.CreatedAt, u.LastLogin)
	}
	if u.ID.IsZero() {
		t.Error("expected an ID to be assigned")
	}
}

func TestNewUser_SuppliedRole(t *testing.T) {
	u := userstore.NewUser("org@example.com", models.UserProfile{Role: rolePtr(models.RoleOrganizer)}, time.Now())
	if u.Role != models.RoleOrganizer {
		t.Errorf("role: got %q, want %q", u.Role, models.RoleOrganizer)
	}
}

func TestStore_Upsert_CreatesThenUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, isNew, err := store.Upsert(ctx, "  Ada@Example.com ", models.UserProfile{Name: strPtr("Ada")})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !isNew {
		t.Error("expected first upsert to create")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("email: got %q, want normalized", created.Email)
	}

	updated, isNew, err := store.Upsert(ctx, "ada@example.com", models.UserProfile{PhotoURL: strPtr("https://x/ada.png")})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if isNew {
		t.Error("expected second upsert to update")
	}
	if updated.ID != created.ID {
		t.Errorf("ID changed across upserts: %v vs %v", created.ID, updated.ID)
	}
	if updated.Name != "Ada" {
		t.Errorf("name should be kept when not supplied, got %q", updated.Name)
	}
	if updated.PhotoURL != "https://x/ada.png" {
		t.Errorf("photoURL: got %q", updated.PhotoURL)
	}
}

func TestStore_Upsert_PartialBodyIsStable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := models.UserProfile{Name: strPtr("Grace")}
	first, _, err := store.Upsert(ctx, "grace@example.com", p)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	second, _, err := store.Upsert(ctx, "grace@example.com", p)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if first.Name != second.Name || first.PhotoURL != second.PhotoURL {
		t.Errorf("name/photoURL changed: %q/%q -> %q/%q", first.Name, first.PhotoURL, second.Name, second.PhotoURL)
	}
}

func TestStore_Upsert_RoleEscalationBlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Plain", "plain@example.com", models.RoleUser)

	u, _, err := store.Upsert(ctx, "plain@example.com", models.UserProfile{Role: rolePtr(models.RoleAdmin)})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Errorf("role escalated without admin flag: got %q", u.Role)
	}

	u, _, err = store.Upsert(ctx, "plain@example.com", models.UserProfile{Role: rolePtr(models.RoleAdmin), AdminRequest: true})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role with admin flag: got %q, want admin", u.Role)
	}
}

func TestStore_Upsert_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _, err := store.Upsert(ctx, "x@example.com", models.UserProfile{Role: rolePtr("superadmin")})
	var ve *apierr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStore_Upsert_ConcurrentSameEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(testutil.NewManager(db))

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := store.Upsert(ctx, "race@example.com", models.UserProfile{}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Upsert failed: %v", err)
	}

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": "race@example.com"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one user document, got %d", count)
	}
}

func TestStore_UpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Org", "org@example.com", models.RoleUser)

	u, err := store.UpdateRole(ctx, "org@example.com", models.RoleOrganizer)
	if err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if u.Role != models.RoleOrganizer {
		t.Errorf("role: got %q, want organizer", u.Role)
	}
	if u.UpdatedAt == nil {
		t.Error("expected updatedAt to be set")
	}
}

func TestStore_UpdateRole_InvalidLeavesRoleUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Keep", "keep@example.com", models.RoleOrganizer)

	_, err := store.UpdateRole(ctx, "keep@example.com", "superadmin")
	var ve *apierr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, err := store.GetByEmail(ctx, "keep@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Role != models.RoleOrganizer {
		t.Errorf("role changed to %q", got.Role)
	}
}

func TestStore_UpdateRole_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.UpdateRole(ctx, "ghost@example.com", models.RoleAdmin)
	var nf *apierr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Sus", "sus@example.com", models.RoleUser)

	u, err := store.UpdateStatus(ctx, "sus@example.com", models.StatusSuspended)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if u.Status != models.StatusSuspended {
		t.Errorf("status: got %q, want suspended", u.Status)
	}

	_, err = store.UpdateStatus(ctx, "sus@example.com", "banned")
	var ve *apierr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStore_RoleOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "U", "u@example.com", models.RoleUser)
	fixtures.CreateUser(ctx, "O", "o@example.com", models.RoleOrganizer)
	fixtures.CreateUser(ctx, "A", "a@example.com", models.RoleAdmin)

	tests := []struct {
		email         string
		wantOK        bool
		wantOrganizer bool
	}{
		{"u@example.com", true, false},
		{"o@example.com", true, true},
		{"a@example.com", true, true},
		{"missing@example.com", false, false},
	}
	for _, tt := range tests {
		role, ok, err := store.RoleOf(ctx, tt.email)
		if err != nil {
			t.Fatalf("RoleOf(%s) failed: %v", tt.email, err)
		}
		if ok != tt.wantOK {
			t.Errorf("RoleOf(%s) ok: got %v, want %v", tt.email, ok, tt.wantOK)
		}
		if role.CanOrganize() != tt.wantOrganizer {
			t.Errorf("RoleOf(%s).CanOrganize(): got %v, want %v", tt.email, role.CanOrganize(), tt.wantOrganizer)
		}
	}
}

func TestStore_Delete_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ack, err := store.Delete(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("Delete of a missing user should not fail: %v", err)
	}
	if !ack.Acknowledged || ack.DeletedCount != 0 {
		t.Errorf("got %+v, want acknowledged with zero count", ack)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(testutil.NewManager(db))
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "One", "one@example.com", models.RoleUser)
	fixtures.CreateUser(ctx, "Two", "two@example.com", models.RoleAdmin)

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List: got %d users, want 2", len(got))
	}
}
