package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"doodledocs/internal/domain"
	"doodledocs/internal/eventstore"
)

// Projector folds events into the read-model store. Events for one document
// must arrive in the order the log assigned their versions; the orchestrator
// guarantees that by projecting inside its per-document critical section.
type Projector struct {
	store  Store
	logger *slog.Logger
}

// NewProjector creates a projector writing to the given store.
func NewProjector(store Store, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{store: store, logger: logger}
}

// Apply projects one event. Application problems (an update for a missing
// record, say) are absorbed as no-ops: the repair path for divergence is a
// full rebuild, not per-event error propagation.
func (p *Projector) Apply(ctx context.Context, e domain.Event) error {
	switch payload := e.Payload.(type) {
	case domain.Created:
		return p.store.Save(ctx, &Document{
			ID:        e.DocumentID,
			Title:     payload.Title,
			Content:   "",
			CreatedAt: e.OccurredAt,
			UpdatedAt: e.OccurredAt,
		})

	case domain.TitleChanged:
		return p.patch(ctx, e, func(doc *Document) {
			doc.Title = payload.NewTitle
		})

	case domain.ContentChanged:
		return p.patch(ctx, e, func(doc *Document) {
			doc.Content = payload.Content
		})

	case domain.Deleted:
		return p.store.Delete(ctx, e.DocumentID)

	case domain.CommentAdded, domain.CommentDeleted:
		// Comments are derived from the stream on read, never projected.
		return nil

	case domain.Unknown:
		p.logger.Debug("Skipping event from newer schema",
			"kind", e.Kind(),
			"document_id", e.DocumentID,
		)
		return nil

	default:
		return nil
	}
}

func (p *Projector) patch(ctx context.Context, e domain.Event, mutate func(*Document)) error {
	doc, err := p.store.Get(ctx, e.DocumentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.logger.Warn("Dropping update for missing read-model record",
				"kind", e.Kind(),
				"document_id", e.DocumentID,
				"version", e.Version,
			)
			return nil
		}
		return err
	}

	mutate(doc)
	doc.UpdatedAt = e.OccurredAt
	return p.store.Save(ctx, doc)
}

// Rebuild discards the read model and replays every stream from version 1.
// This is the designated recovery procedure after detected divergence.
func (p *Projector) Rebuild(ctx context.Context, log eventstore.Store) error {
	if err := p.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset read model: %w", err)
	}

	ids, err := log.ListStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	for _, id := range ids {
		events, err := log.Read(ctx, id)
		if err != nil {
			return fmt.Errorf("read stream %s: %w", id, err)
		}
		for _, e := range events {
			if err := p.Apply(ctx, e); err != nil {
				return fmt.Errorf("replay stream %s at version %d: %w", id, e.Version, err)
			}
		}
	}

	p.logger.Info("Read model rebuilt", "streams", len(ids))
	return nil
}
