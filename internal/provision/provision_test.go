package provision_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"itti/internal/directory"
	"itti/internal/drive"
	"itti/internal/identity"
	"itti/internal/provision"
)

type fakeBackend struct {
	folders     []drive.Folder
	createCalls int
	failNames   map[string]error
}

func (f *fakeBackend) ListSubfolders(ctx context.Context, parentID string) ([]drive.Folder, error) {
	return f.folders, nil
}

func (f *fakeBackend) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	if err, ok := f.failNames[name]; ok {
		return "", err
	}
	f.createCalls++
	id := fmt.Sprintf("folder-%d", f.createCalls)
	f.folders = append(f.folders, drive.Folder{ID: id, Name: name})
	return id, nil
}

func TestResolveOrCreateReusesExisting(t *testing.T) {
	backend := &fakeBackend{folders: []drive.Folder{{ID: "f1", Name: "JUAN PEREZ"}}}
	dir := directory.New("root")
	if err := dir.Refresh(context.Background(), backend); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	p := provision.New(backend, nil)
	id, err := p.ResolveOrCreate(context.Background(), "JUAN PEREZ", dir, "root")
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}
	if id != "f1" {
		t.Fatalf("expected reuse of f1, got %q", id)
	}
	if backend.createCalls != 0 {
		t.Fatalf("expected no create calls, got %d", backend.createCalls)
	}
}

func TestResolveOrCreateRegistersNewFolder(t *testing.T) {
	backend := &fakeBackend{}
	dir := directory.New("root")
	p := provision.New(backend, nil)

	first, err := p.ResolveOrCreate(context.Background(), "ANA RUIZ", dir, "root")
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}
	second, err := p.ResolveOrCreate(context.Background(), "ANA RUIZ", dir, "root")
	if err != nil {
		t.Fatalf("second ResolveOrCreate failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected same folder, got %q and %q", first, second)
	}
	if backend.createCalls != 1 {
		t.Fatalf("expected exactly one create call, got %d", backend.createCalls)
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	boom := errors.New("transient network error")
	backend := &fakeBackend{failNames: map[string]error{"BROKEN": boom}}
	dir := directory.New("root")
	p := provision.New(backend, nil)

	ids := identity.NewSet("ALPHA", "BROKEN", "ZETA")
	resolved, failed := p.Batch(context.Background(), ids, dir, "root")

	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved, got %v", resolved)
	}
	if len(failed) != 1 || !errors.Is(failed["BROKEN"], boom) {
		t.Fatalf("expected isolated failure for BROKEN, got %v", failed)
	}
	if backend.createCalls != 2 {
		t.Fatalf("expected 2 successful creates, got %d", backend.createCalls)
	}
}

func TestBatchDedupWithinOneSet(t *testing.T) {
	backend := &fakeBackend{}
	dir := directory.New("root")
	p := provision.New(backend, nil)

	// 10 raw rows collapse to 6 unique identities before Batch sees them;
	// Batch must issue exactly one create-or-reuse per identity.
	ids := identity.NewSet("A", "B", "C", "D", "E", "F")
	resolved, failed := p.Batch(context.Background(), ids, dir, "root")
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
	if len(resolved) != 6 || backend.createCalls != 6 {
		t.Fatalf("expected 6 creates for 6 identities, got %d creates, %d resolved", backend.createCalls, len(resolved))
	}
}
