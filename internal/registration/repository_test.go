package registration

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreatePending(t *testing.T) {
	repo := NewRepository(testDB(t))

	reg, err := repo.CreatePending(context.Background(), "machine-001")
	if err != nil {
		t.Fatalf("CreatePending() error = %v", err)
	}

	if reg.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if reg.ComputerID != "machine-001" {
		t.Errorf("ComputerID = %q, want %q", reg.ComputerID, "machine-001")
	}
	if reg.Status != StatusPending {
		t.Errorf("Status = %q, want %q", reg.Status, StatusPending)
	}
	if reg.ApprovalTimestamp != nil {
		t.Error("ApprovalTimestamp should be nil for a pending registration")
	}
}

func TestCreatePending_DuplicateComputerID(t *testing.T) {
	repo := NewRepository(testDB(t))
	seedRegistration(t, repo, "machine-001")

	_, err := repo.CreatePending(context.Background(), "machine-001")
	if !errors.Is(err, ErrComputerIDExists) {
		t.Errorf("CreatePending() error = %v, want ErrComputerIDExists", err)
	}
}

func TestGetByComputerID(t *testing.T) {
	repo := NewRepository(testDB(t))
	seeded := seedRegistration(t, repo, "machine-001")

	reg, err := repo.GetByComputerID(context.Background(), "machine-001")
	if err != nil {
		t.Fatalf("GetByComputerID() error = %v", err)
	}

	if reg.ID != seeded.ID {
		t.Errorf("ID = %d, want %d", reg.ID, seeded.ID)
	}
	if reg.Status != StatusPending {
		t.Errorf("Status = %q, want %q", reg.Status, StatusPending)
	}
}

func TestGetByComputerID_NotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	_, err := repo.GetByComputerID(context.Background(), "unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByComputerID() error = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo := NewRepository(testDB(t))
	seedRegistration(t, repo, "machine-001")
	seedRegistration(t, repo, "machine-002")
	seedRegistration(t, repo, "machine-003")

	regs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(regs) != 3 {
		t.Fatalf("List() returned %d registrations, want 3", len(regs))
	}
	if regs[0].ComputerID != "machine-003" || regs[2].ComputerID != "machine-001" {
		t.Errorf("List() not ordered newest first: %v, %v, %v",
			regs[0].ComputerID, regs[1].ComputerID, regs[2].ComputerID)
	}
}

func TestList_Empty(t *testing.T) {
	repo := NewRepository(testDB(t))

	regs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if regs == nil {
		t.Error("List() should return an empty slice, not nil")
	}
	if len(regs) != 0 {
		t.Errorf("List() returned %d registrations, want 0", len(regs))
	}
}

func TestListPending_OldestFirst(t *testing.T) {
	repo := NewRepository(testDB(t))
	first := seedRegistration(t, repo, "machine-001")
	seedRegistration(t, repo, "machine-002")
	decided := seedRegistration(t, repo, "machine-003")

	if err := repo.UpdateStatusIfPending(context.Background(), decided.ID, StatusApproved); err != nil {
		t.Fatalf("UpdateStatusIfPending() error = %v", err)
	}

	pending, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}

	if len(pending) != 2 {
		t.Fatalf("ListPending() returned %d registrations, want 2", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Errorf("ListPending() first entry ID = %d, want oldest %d", pending[0].ID, first.ID)
	}
	for _, reg := range pending {
		if reg.Status != StatusPending {
			t.Errorf("ListPending() returned status %q", reg.Status)
		}
	}
}

func TestUpdateStatusIfPending(t *testing.T) {
	repo := NewRepository(testDB(t))
	reg := seedRegistration(t, repo, "machine-001")

	if err := repo.UpdateStatusIfPending(context.Background(), reg.ID, StatusApproved); err != nil {
		t.Fatalf("UpdateStatusIfPending() error = %v", err)
	}

	updated, err := repo.GetByID(context.Background(), reg.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if updated.Status != StatusApproved {
		t.Errorf("Status = %q, want %q", updated.Status, StatusApproved)
	}
	if updated.ApprovalTimestamp == nil {
		t.Fatal("ApprovalTimestamp should be set after decision")
	}
	if time.Since(*updated.ApprovalTimestamp) > time.Minute {
		t.Errorf("ApprovalTimestamp = %v, want recent", updated.ApprovalTimestamp)
	}
}

func TestUpdateStatusIfPending_AlreadyDecided(t *testing.T) {
	repo := NewRepository(testDB(t))
	reg := seedRegistration(t, repo, "machine-001")

	if err := repo.UpdateStatusIfPending(context.Background(), reg.ID, StatusApproved); err != nil {
		t.Fatalf("first decision error = %v", err)
	}

	err := repo.UpdateStatusIfPending(context.Background(), reg.ID, StatusRejected)
	if !errors.Is(err, ErrNotPending) {
		t.Errorf("second decision error = %v, want ErrNotPending", err)
	}

	// The first decision must stand.
	final, err := repo.GetByID(context.Background(), reg.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if final.Status != StatusApproved {
		t.Errorf("Status = %q after losing decision, want %q", final.Status, StatusApproved)
	}
}

func TestUpdateStatusIfPending_UnknownID(t *testing.T) {
	repo := NewRepository(testDB(t))

	err := repo.UpdateStatusIfPending(context.Background(), 9999, StatusApproved)
	if !errors.Is(err, ErrNotPending) {
		t.Errorf("UpdateStatusIfPending() error = %v, want ErrNotPending", err)
	}
}

func TestUpdateStatusIfPending_NonTerminalStatus(t *testing.T) {
	repo := NewRepository(testDB(t))
	reg := seedRegistration(t, repo, "machine-001")

	err := repo.UpdateStatusIfPending(context.Background(), reg.ID, StatusPending)
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("UpdateStatusIfPending() error = %v, want ErrInvalidAction", err)
	}
}

func TestDelete(t *testing.T) {
	repo := NewRepository(testDB(t))
	reg := seedRegistration(t, repo, "machine-001")

	if err := repo.Delete(context.Background(), reg.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.GetByID(context.Background(), reg.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	// The machine can register again afterwards.
	if _, err := repo.CreatePending(context.Background(), "machine-001"); err != nil {
		t.Errorf("CreatePending() after delete error = %v", err)
	}
}

func TestDelete_UnknownID(t *testing.T) {
	repo := NewRepository(testDB(t))

	err := repo.Delete(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCountByStatus(t *testing.T) {
	repo := NewRepository(testDB(t))
	a := seedRegistration(t, repo, "machine-001")
	b := seedRegistration(t, repo, "machine-002")
	seedRegistration(t, repo, "machine-003")

	if err := repo.UpdateStatusIfPending(context.Background(), a.ID, StatusApproved); err != nil {
		t.Fatalf("approving: %v", err)
	}
	if err := repo.UpdateStatusIfPending(context.Background(), b.ID, StatusRejected); err != nil {
		t.Fatalf("rejecting: %v", err)
	}

	stats, err := repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}

	if stats.Pending != 1 || stats.Approved != 1 || stats.Rejected != 1 || stats.Total != 3 {
		t.Errorf("CountByStatus() = %+v, want 1/1/1 total 3", stats)
	}
}
