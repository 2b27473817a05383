package document

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledocs/internal/domain"
	eventmem "doodledocs/internal/eventstore/memory"
	"doodledocs/internal/projection"
	projmem "doodledocs/internal/projection/memory"
)

type fixture struct {
	svc    Service
	outbox *Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := eventmem.NewStore()
	readModel := projmem.NewStore()
	projector := projection.NewProjector(readModel, nil)
	outbox := NewOutbox()
	return &fixture{
		svc:    NewService(log, readModel, projector, outbox, nil),
		outbox: outbox,
	}
}

func (f *fixture) notifications() []Notification {
	return f.outbox.drain()
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Create(ctx, "My Doc")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "My Doc", doc.Title)
	assert.Empty(t, doc.Content)

	notes := f.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationCreated, notes[0].Kind)
	assert.Equal(t, doc.ID, notes[0].DocumentID)
	assert.Equal(t, "My Doc", notes[0].Title)
}

func TestCreate_EmptyTitleGetsDefault(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Create(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, doc.Title)
}

func TestUpdate_FullScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Title")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, UpdateRequest{Title: "New Title", Content: ""})
	require.NoError(t, err)

	doc, err := f.svc.Update(ctx, created.ID, UpdateRequest{Title: "New Title", Content: "Content"})
	require.NoError(t, err)
	assert.Equal(t, "New Title", doc.Title)
	assert.Equal(t, "Content", doc.Content)

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.KindCreated, history[0].Kind)
	assert.Equal(t, domain.KindTitleChanged, history[1].Kind)
	assert.Equal(t, domain.KindContentChanged, history[2].Kind)
	for i, entry := range history {
		assert.Equal(t, int64(i+1), entry.Version)
	}
}

func TestUpdate_EmitsBothEventsWhenBothChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Title")
	require.NoError(t, err)
	f.notifications() // discard the create notification

	_, err = f.svc.Update(ctx, created.ID, UpdateRequest{Title: "Other", Content: "Body"})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3, "created + title + content")

	notes := f.notifications()
	require.Len(t, notes, 1, "one notification per successful write")
	assert.Equal(t, NotificationUpdated, notes[0].Kind)
}

func TestUpdate_NoOpIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Title")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, UpdateRequest{Title: "Title", Content: "Body"})
	require.NoError(t, err)
	f.notifications()

	doc, err := f.svc.Update(ctx, created.ID, UpdateRequest{Title: "Title", Content: "Body"})
	require.NoError(t, err)
	assert.Equal(t, "Title", doc.Title)

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "no events appended for a no-op update")
	assert.Empty(t, f.notifications(), "no notifications for a no-op update")
}

func TestUpdate_UnknownDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), "nope", UpdateRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Doomed")
	require.NoError(t, err)
	f.notifications()

	deleted, err := f.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound, "read model record is gone")

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err, "the stream is retained forever")
	require.Len(t, history, 2)
	assert.Equal(t, domain.KindDeleted, history[1].Kind)

	notes := f.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationDeleted, notes[0].Kind)
}

func TestDelete_UnknownIsNotFoundNotError(t *testing.T) {
	f := newFixture(t)

	deleted, err := f.svc.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, f.notifications())
}

func TestList_OrderedByMostRecentlyUpdated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, "First")
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, "Second")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, first.ID, UpdateRequest{Title: "First", Content: "touched"})
	require.NoError(t, err)

	docs, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
}

func TestAtVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Initial Title")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, UpdateRequest{Title: "Initial Title", Content: "First content"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, UpdateRequest{Title: "Updated Title", Content: "Second content"})
	require.NoError(t, err)

	at2, err := f.svc.AtVersion(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Initial Title", at2.Title)
	assert.Equal(t, "First content", at2.Content)

	latest, err := f.svc.AtVersion(ctx, created.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", latest.Title)
	assert.Equal(t, "Second content", latest.Content)

	_, err = f.svc.AtVersion(ctx, created.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound, "version 0 yields no result")

	_, err = f.svc.AtVersion(ctx, "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistory_Descriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Doc")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, UpdateRequest{Title: "Renamed", Content: ""})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, `Document created: "Doc"`, history[0].Description)
	assert.Equal(t, `Title changed to "Renamed"`, history[1].Description)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Doc")
	require.NoError(t, err)
	f.notifications()

	c1, err := f.svc.AddComment(ctx, created.ID, "first", "alice")
	require.NoError(t, err)
	c2, err := f.svc.AddComment(ctx, created.ID, "second", "bob")
	require.NoError(t, err)

	comments, err := f.svc.Comments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1, comments[0].ID)
	assert.Equal(t, "alice", comments[0].Author)

	require.NoError(t, f.svc.DeleteComment(ctx, created.ID, c1))

	comments, err = f.svc.Comments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, c2, comments[0].ID)

	// Comment traffic never touches the document record.
	doc, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doc", doc.Title)

	notes := f.notifications()
	require.Len(t, notes, 3, "each comment write notifies updated")
	for _, n := range notes {
		assert.Equal(t, NotificationUpdated, n.Kind)
	}
}

func TestAddComment_UnknownDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddComment(context.Background(), "nope", "text", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRebuild_RepairsDivergence(t *testing.T) {
	log := eventmem.NewStore()
	readModel := projmem.NewStore()
	projector := projection.NewProjector(readModel, nil)
	svc := NewService(log, readModel, projector, NewOutbox(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Doc")
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, UpdateRequest{Title: "Doc", Content: "Body"})
	require.NoError(t, err)

	// Corrupt the read model behind the projector's back.
	require.NoError(t, readModel.Save(ctx, &projection.Document{ID: created.ID, Title: "garbage"}))

	require.NoError(t, svc.Rebuild(ctx))

	doc, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doc", doc.Title)
	assert.Equal(t, "Body", doc.Content)
}

func TestUpdate_ConcurrentWritersDoNotLoseEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Doc")
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.svc.Update(ctx, created.ID, UpdateRequest{
				Title:   "Doc",
				Content: "content-" + string(rune('a'+n)),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err)

	// Every writer changed content relative to whatever it reconstructed,
	// except writers that happened to see their own content already
	// applied; either way versions must be gap-free with no duplicates.
	seen := make(map[int64]bool)
	for i, entry := range history {
		assert.Equal(t, int64(i+1), entry.Version)
		assert.False(t, seen[entry.Version])
		seen[entry.Version] = true
	}
	assert.GreaterOrEqual(t, len(history), 2)
	assert.LessOrEqual(t, len(history), writers+1)
}
