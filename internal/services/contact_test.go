package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HerbHall/lankaportal/internal/services"
	"github.com/HerbHall/lankaportal/internal/testutil"
)

func newContactRepo(t *testing.T) services.ContactRepository {
	t.Helper()
	store := testutil.NewStore(t)
	repo, err := services.NewSQLiteContactRepository(context.Background(), store)
	if err != nil {
		t.Fatalf("NewSQLiteContactRepository: %v", err)
	}
	return repo
}

func newMessage(name string, at time.Time) *services.ContactMessage {
	return &services.ContactMessage{
		Name:      name,
		Email:     name + "@example.com",
		Subject:   "Trip to Ella",
		Message:   "Is the Nine Arch Bridge walkable in the rain?",
		CreatedAt: at,
	}
}

func TestSQLiteContactRepository_CreateAndGet(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	msg := newMessage("nimal", time.Time{})
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("Create should assign an ID")
	}
	if msg.Status != services.ContactStored {
		t.Errorf("Status = %q, want stored", msg.Status)
	}

	got, err := repo.Get(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "nimal@example.com" || got.Subject != "Trip to Ella" {
		t.Errorf("Get = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestSQLiteContactRepository_GetMissing(t *testing.T) {
	repo := newContactRepo(t)
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteContactRepository_UpdateStatus(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	msg := newMessage("kamala", time.Time{})
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateStatus(ctx, msg.ID, services.ContactFailed, "endpoint returned 503"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, _ := repo.Get(ctx, msg.ID)
	if got.Status != services.ContactFailed || got.Error != "endpoint returned 503" {
		t.Errorf("after update = %q/%q", got.Status, got.Error)
	}

	if err := repo.UpdateStatus(ctx, "missing", services.ContactSent, ""); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteContactRepository_ListPagination(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		if err := repo.Create(ctx, newMessage(name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	page, err := repo.List(ctx, services.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if len(page.Items) != 2 || page.Items[0].Name != "e" || page.Items[1].Name != "d" {
		t.Errorf("first page = %v, want newest first [e d]", names(page.Items))
	}

	page, err = repo.List(ctx, services.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List offset: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "a" {
		t.Errorf("last page = %v, want [a]", names(page.Items))
	}

	page, err = repo.List(ctx, services.ListOptions{SortBy: "name", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("List by name: %v", err)
	}
	if page.Items[0].Name != "a" || page.Limit != 50 {
		t.Errorf("sorted = %v limit %d", names(page.Items), page.Limit)
	}
}

func TestSQLiteContactRepository_ListRejectsUnknownSort(t *testing.T) {
	repo := newContactRepo(t)
	_, err := repo.List(context.Background(), services.ListOptions{SortBy: "email; DROP TABLE contact_messages"})
	if !errors.Is(err, services.ErrInvalidSort) {
		t.Errorf("List error = %v, want ErrInvalidSort", err)
	}
}

func TestSQLiteContactRepository_ListEmpty(t *testing.T) {
	repo := newContactRepo(t)
	page, err := repo.List(context.Background(), services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 || page.Total != 0 {
		t.Errorf("empty list = %+v", page)
	}
}

func names(msgs []services.ContactMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Name)
	}
	return out
}
