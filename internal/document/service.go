// Package document composes the write and read sides: it loads history,
// drives the aggregate, appends to the event log, projects the new events,
// and hands one notification per successful write to the outbox.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"doodledocs/internal/domain"
	"doodledocs/internal/eventstore"
	"doodledocs/internal/projection"
)

// ErrNotFound is returned for operations against a document with no event
// history (or, for reads, no read-model record).
var ErrNotFound = errors.New("document not found")

// DefaultTitle is used when a document is created without one.
const DefaultTitle = "Untitled Document"

// HistoryEntry is one stream event shaped for display and for computing
// undo/redo bounds.
type HistoryEntry struct {
	Version     int64       `json:"version"`
	Kind        domain.Kind `json:"kind"`
	Description string      `json:"description"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

// UpdateRequest carries the full desired state for a document update. The
// service diffs it against the reconstructed aggregate and emits only the
// events for fields that actually changed.
type UpdateRequest struct {
	Title       string
	Content     string
	ContentType string
}

// Service is the command orchestrator consumed by the HTTP layer.
type Service interface {
	Create(ctx context.Context, title string) (*projection.Document, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*projection.Document, error)
	Delete(ctx context.Context, id string) (bool, error)

	Get(ctx context.Context, id string) (*projection.Document, error)
	List(ctx context.Context) ([]*projection.Document, error)
	History(ctx context.Context, id string) ([]HistoryEntry, error)
	AtVersion(ctx context.Context, id string, version int64) (*projection.Document, error)

	Comments(ctx context.Context, id string) ([]domain.Comment, error)
	AddComment(ctx context.Context, id, text, author string) (string, error)
	DeleteComment(ctx context.Context, id, commentID string) error

	Rebuild(ctx context.Context) error
}

type service struct {
	log       eventstore.Store
	readModel projection.Store
	projector *projection.Projector
	outbox    *Outbox
	locks     *streamLocks
	logger    *slog.Logger
}

// NewService creates the orchestrator.
func NewService(log eventstore.Store, readModel projection.Store, projector *projection.Projector, outbox *Outbox, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		log:       log,
		readModel: readModel,
		projector: projector,
		outbox:    outbox,
		locks:     newStreamLocks(),
		logger:    logger,
	}
}

func (s *service) Create(ctx context.Context, title string) (*projection.Document, error) {
	if title == "" {
		title = DefaultTitle
	}

	id := uuid.New().String()
	release := s.locks.Acquire(id)
	defer release()

	agg := domain.New(id, title)
	if err := s.commit(ctx, id, agg, &Notification{
		Kind:       NotificationCreated,
		DocumentID: id,
		Title:      title,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Document created", "document_id", id)
	return s.lookup(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*projection.Document, error) {
	release := s.locks.Acquire(id)
	defer release()

	agg, err := s.reconstruct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != agg.Title {
		agg.UpdateTitle(req.Title)
	}
	if req.Content != agg.Content {
		agg.UpdateContent(req.Content, req.ContentType)
	}

	produced := len(agg.PendingEvents())
	if produced > 0 {
		if err := s.commit(ctx, id, agg, &Notification{
			Kind:       NotificationUpdated,
			DocumentID: id,
		}); err != nil {
			return nil, err
		}
		s.logger.Info("Document updated", "document_id", id, "events", produced)
	}

	return s.lookup(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	release := s.locks.Acquire(id)
	defer release()

	agg, err := s.reconstruct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	agg.Delete()
	if err := s.commit(ctx, id, agg, &Notification{
		Kind:       NotificationDeleted,
		DocumentID: id,
	}); err != nil {
		return false, err
	}

	s.logger.Info("Document deleted", "document_id", id)
	return true, nil
}

func (s *service) Get(ctx context.Context, id string) (*projection.Document, error) {
	return s.lookup(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*projection.Document, error) {
	return s.readModel.List(ctx)
}

func (s *service) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	events, err := s.log.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}

	entries := make([]HistoryEntry, len(events))
	for i, e := range events {
		entries[i] = HistoryEntry{
			Version:     e.Version,
			Kind:        e.Kind(),
			Description: describe(e),
			OccurredAt:  e.OccurredAt,
		}
	}
	return entries, nil
}

// AtVersion replays the stream prefix with event.version <= version.
// Out-of-range versions yield no result; clamping to [1, latest] is the
// caller's job.
func (s *service) AtVersion(ctx context.Context, id string, version int64) (*projection.Document, error) {
	if version < 1 {
		return nil, ErrNotFound
	}

	events, err := s.log.ReadRange(ctx, id, 1, version)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}

	agg := domain.FromEvents(events)
	return &projection.Document{
		ID:        agg.ID,
		Title:     agg.Title,
		Content:   agg.Content,
		CreatedAt: agg.CreatedAt,
		UpdatedAt: agg.UpdatedAt,
	}, nil
}

func (s *service) Comments(ctx context.Context, id string) ([]domain.Comment, error) {
	events, err := s.log.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return domain.CurrentComments(events), nil
}

func (s *service) AddComment(ctx context.Context, id, text, author string) (string, error) {
	release := s.locks.Acquire(id)
	defer release()

	agg, err := s.reconstruct(ctx, id)
	if err != nil {
		return "", err
	}

	commentID := agg.AddComment(text, author)
	if err := s.commit(ctx, id, agg, &Notification{
		Kind:       NotificationUpdated,
		DocumentID: id,
	}); err != nil {
		return "", err
	}
	return commentID, nil
}

func (s *service) DeleteComment(ctx context.Context, id, commentID string) error {
	release := s.locks.Acquire(id)
	defer release()

	agg, err := s.reconstruct(ctx, id)
	if err != nil {
		return err
	}

	agg.DeleteComment(commentID)
	return s.commit(ctx, id, agg, &Notification{
		Kind:       NotificationUpdated,
		DocumentID: id,
	})
}

func (s *service) Rebuild(ctx context.Context) error {
	return s.projector.Rebuild(ctx, s.log)
}

// reconstruct loads the full stream and folds it into an aggregate.
func (s *service) reconstruct(ctx context.Context, id string) (*domain.Document, error) {
	events, err := s.log.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read history for %s: %w", id, err)
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return domain.FromEvents(events), nil
}

// commit appends the aggregate's pending events, projects them in assigned
// order, and enqueues the notification. Projection failures are absorbed:
// the log is the source of truth and a rebuild repairs the read side.
func (s *service) commit(ctx context.Context, id string, agg *domain.Document, n *Notification) error {
	events := agg.PendingEvents()
	if len(events) == 0 {
		return nil
	}

	numbered, err := s.log.Append(ctx, id, events)
	if err != nil {
		return fmt.Errorf("append events for %s: %w", id, err)
	}
	agg.MarkCommitted()

	for _, e := range numbered {
		if err := s.projector.Apply(ctx, e); err != nil {
			s.logger.Error("Projection failed, read model diverges until rebuild",
				"document_id", id,
				"version", e.Version,
				"error", err,
			)
		}
	}

	if n != nil {
		s.outbox.Enqueue(*n)
	}
	return nil
}

func (s *service) lookup(ctx context.Context, id string) (*projection.Document, error) {
	doc, err := s.readModel.Get(ctx, id)
	if err != nil {
		if errors.Is(err, projection.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func describe(e domain.Event) string {
	switch p := e.Payload.(type) {
	case domain.Created:
		return fmt.Sprintf("Document created: %q", p.Title)
	case domain.TitleChanged:
		return fmt.Sprintf("Title changed to %q", p.NewTitle)
	case domain.ContentChanged:
		if p.Content == "" {
			return "Content cleared"
		}
		return "Content updated"
	case domain.Deleted:
		return "Document deleted"
	case domain.CommentAdded:
		return fmt.Sprintf("Comment added by %s", p.Author)
	case domain.CommentDeleted:
		return "Comment deleted"
	case domain.Unknown:
		return "Unknown event"
	default:
		return "Unknown event"
	}
}
