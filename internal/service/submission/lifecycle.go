package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/civicbook/internal/apperrors"
	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/kafka"
	"github.com/Domenick1991/civicbook/internal/repository"
	"github.com/Domenick1991/civicbook/internal/workflow"
	"github.com/google/uuid"
)

// Advance moves a record one state forward. A terminal record is returned
// as is and nothing is written.
func (s *Service) Advance(ctx context.Context, category domain.Category, id uuid.UUID) (*domain.Record, error) {
	return s.transition(ctx, category, id, kafka.EventRecordAdvanced, s.policy.Workflows.Advance)
}

// Cancel moves a non-terminal record to its category's cancel state.
func (s *Service) Cancel(ctx context.Context, category domain.Category, id uuid.UUID) (*domain.Record, error) {
	return s.transition(ctx, category, id, kafka.EventRecordCancelled, s.policy.Workflows.Cancel)
}

func (s *Service) transition(
	ctx context.Context,
	category domain.Category,
	id uuid.UUID,
	eventType string,
	step func(domain.Record) (domain.Record, error),
) (*domain.Record, error) {
	if !category.Valid() {
		return nil, apperrors.Validation("unknown category: "+string(category), nil)
	}

	key := repository.Key(s.keyPrefix, category)
	var (
		updated  domain.Record
		previous domain.Status
		changed  bool
	)

	err := s.withLock(ctx, key, func(held lease) error {
		records, err := s.store.Load(ctx, key)
		if err != nil {
			return apperrors.Internal("failed to load records", err)
		}
		i := indexOf(records, id)
		if i < 0 {
			return apperrors.NotFoundWithID("record", id.String())
		}

		current := records[i]
		next, err := step(current)
		if err != nil {
			s.log.Warn("Transition rejected",
				"reference", current.Reference,
				"status", current.Status,
				"event", eventType,
				"error", err,
			)
			return workflowError(err)
		}

		previous = current.Status
		updated = next
		if next.Status == current.Status {
			return nil
		}

		changed = true
		updated.UpdatedAt = s.now().UTC()
		records[i] = updated
		if err := held.valid(); err != nil {
			s.log.Warn("Lock expired before save", "key", key, "reference", current.Reference)
			return err
		}
		if err := s.store.Save(ctx, key, records); err != nil {
			return apperrors.Internal("failed to save records", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("Record status changed",
			"reference", updated.Reference,
			"from", previous,
			"to", updated.Status,
		)
		s.publish(ctx, eventType, updated, previous)
	}
	return &updated, nil
}

func workflowError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrUndefined):
		return apperrors.Workflow("no workflow defined for category", err)
	case errors.Is(err, workflow.ErrInvalidTransition):
		return apperrors.Workflow("invalid status transition", err)
	case errors.Is(err, workflow.ErrUnknownState):
		return apperrors.Workflow("record status is not part of its workflow", err)
	default:
		return apperrors.Workflow(err.Error(), err)
	}
}

// List returns the stored records of a category in submission order.
func (s *Service) List(ctx context.Context, category domain.Category) ([]domain.Record, error) {
	if !category.Valid() {
		return nil, apperrors.Validation("unknown category: "+string(category), nil)
	}
	records, err := s.store.Load(ctx, repository.Key(s.keyPrefix, category))
	if err != nil {
		return nil, apperrors.Internal("failed to load records", err)
	}
	return records, nil
}

// FindByReference returns every record carrying reference. Codes are not
// unique, so more than one record may match. The prefix selects the
// categories searched.
func (s *Service) FindByReference(ctx context.Context, reference string) ([]domain.Record, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	prefix, _, ok := strings.Cut(reference, "-")
	if !ok || prefix == "" {
		return nil, apperrors.Validation("malformed reference: "+reference, nil)
	}

	var found []domain.Record
	for _, category := range domain.Categories {
		if s.policy.Prefixes[category] != prefix {
			continue
		}
		records, err := s.List(ctx, category)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if r.Reference == reference {
				found = append(found, r)
			}
		}
	}
	if len(found) == 0 {
		return nil, apperrors.NotFoundWithID("record", reference)
	}
	return found, nil
}

func indexOf(records []domain.Record, id uuid.UUID) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// lease bounds a critical section by the lock TTL. The zero lease never
// expires.
type lease struct {
	deadline time.Time
	now      func() time.Time
}

// valid fails once the lock may have expired and been taken by another
// writer. Callers check it right before writing.
func (l lease) valid() error {
	if l.deadline.IsZero() || l.now().Before(l.deadline) {
		return nil
	}
	return apperrors.Conflict("lock expired before the change was saved, try again")
}

// withLock runs fn while holding the lock on key. Acquisition is retried
// lockRetries times before giving up with a conflict.
func (s *Service) withLock(ctx context.Context, key string, fn func(held lease) error) error {
	if s.locker == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(lease{})
	}

	var (
		token string
		held  lease
	)
	for attempt := 1; ; attempt++ {
		// Taken before the request so the local deadline is never later
		// than the one the locker enforces.
		requested := s.now()
		t, ok, err := s.locker.AcquireLock(ctx, key, s.lockTTL)
		if err != nil {
			return apperrors.Internal("failed to acquire lock", err)
		}
		if ok {
			token = t
			held = lease{deadline: requested.Add(s.lockTTL), now: s.now}
			break
		}
		if attempt >= s.lockRetries {
			s.log.Warn("Lock contention", "key", key, "attempts", attempt)
			return apperrors.Conflict("records are being updated by another request, try again")
		}
		select {
		case <-ctx.Done():
			return apperrors.Internal("lock wait aborted", ctx.Err())
		case <-time.After(s.lockRetryDelay):
		}
	}

	defer func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("Failed to release lock", "key", key, "error", err)
		}
	}()
	return fn(held)
}

func (s *Service) publish(ctx context.Context, eventType string, record domain.Record, previous domain.Status) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.NewRecordEvent(eventType, record, previous)
	if err := s.producer.Publish(ctx, s.eventsTopic, record.Reference, event); err != nil {
		s.log.Warn("Failed to publish event",
			"type", eventType,
			"reference", record.Reference,
			"error", err,
		)
	}
}
