package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhwan-dev/licensegate/internal/infrastructure/logging"
)

// Notifier receives change events after successful mutations.
//
// Implementations must not block: the service calls Notify from a detached
// goroutine and ignores failures, so delivery is strictly best effort.
type Notifier interface {
	Notify(event Event)
}

// Service implements the registration lifecycle on top of a Repository.
type Service struct {
	repo      Repository
	notifiers []Notifier
	logger    *logging.Logger
}

// NewService creates a registration service.
// Notifiers may be nil or empty; mutations then happen silently.
func NewService(repo Repository, logger *logging.Logger, notifiers ...Notifier) *Service {
	return &Service{
		repo:      repo,
		notifiers: notifiers,
		logger:    logger,
	}
}

// Register records a licence request for computerID.
//
// Registration is idempotent: a machine that is already known, whatever its
// status, is acknowledged without a new row. The created return value tells
// the caller whether this request produced a new Pending registration.
//
// Two machines racing to register the same computerID are serialised by the
// UNIQUE constraint; the loser's conflict is converted into the same
// already-registered outcome instead of an error.
func (s *Service) Register(ctx context.Context, computerID string) (reg *Registration, created bool, err error) {
	computerID = strings.TrimSpace(computerID)
	if computerID == "" {
		return nil, false, ErrMissingComputerID
	}

	// Fast path: known machine, nothing to do.
	existing, err := s.repo.GetByComputerID(ctx, computerID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("checking registration: %w", err)
	}

	reg, err = s.repo.CreatePending(ctx, computerID)
	if errors.Is(err, ErrComputerIDExists) {
		// Lost the race to another register call; treat like the fast path.
		existing, getErr := s.repo.GetByComputerID(ctx, computerID)
		if getErr != nil {
			return nil, false, fmt.Errorf("reading registration after conflict: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("registration received", "registration_id", reg.ID)
	s.notify("new registration request received")

	return reg, true, nil
}

// Status returns the current lifecycle status for computerID.
// An unknown machine is reported as ErrNotFound.
func (s *Service) Status(ctx context.Context, computerID string) (Status, error) {
	computerID = strings.TrimSpace(computerID)
	if computerID == "" {
		return "", ErrMissingComputerID
	}

	reg, err := s.repo.GetByComputerID(ctx, computerID)
	if err != nil {
		return "", err
	}
	return reg.Status, nil
}

// Decide applies an admin decision to a pending registration and returns
// the decided row, including the approval timestamp just written.
//
// Only Approve and Reject are accepted. A decision against a registration
// that is missing or already decided fails with ErrNotPending; concurrent
// decisions on the same row are serialised by the conditional update, so
// exactly one wins.
func (s *Service) Decide(ctx context.Context, id int64, action Action) (*Registration, error) {
	status, ok := action.StatusFor()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if err := s.repo.UpdateStatusIfPending(ctx, id, status); err != nil {
		return nil, err
	}

	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading decided registration: %w", err)
	}

	s.logger.Info("registration decided", "registration_id", id, "status", status)
	s.notify(fmt.Sprintf("registration %d %s", id, strings.ToLower(string(status))))

	return reg, nil
}

// List returns all registrations, newest first.
func (s *Service) List(ctx context.Context) ([]Registration, error) {
	return s.repo.List(ctx)
}

// ListPending returns pending registrations, oldest request first.
func (s *Service) ListPending(ctx context.Context) ([]Registration, error) {
	return s.repo.ListPending(ctx)
}

// Remove deletes a registration entirely, whatever its status.
// The machine may register again afterwards, starting a fresh Pending row.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("registration removed", "registration_id", id)
	s.notify(fmt.Sprintf("registration %d removed", id))

	return nil
}

// Stats returns per-status registration counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.CountByStatus(ctx)
}

// notify fans a change event out to all notifiers.
//
// It runs detached from the mutating request: the mutation has already
// committed, and a dead subscriber must not delay the response.
func (s *Service) notify(message string) {
	if len(s.notifiers) == 0 {
		return
	}

	event := Event{
		Type:      EventTypeUpdated,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		for _, n := range s.notifiers {
			n.Notify(event)
		}
	}()
}
