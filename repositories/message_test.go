package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daviderandino/ruggine/domain"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Store_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default())
	groupID := uuid.New()
	senderID := uuid.New()
	at := time.Now().UTC()

	messages := []domain.Message{
		{ID: uuid.New(), GroupID: groupID, SenderID: &senderID, Content: "first", CreatedAt: at},
		{ID: uuid.New(), GroupID: groupID, SenderID: &senderID, Content: "second", CreatedAt: at.Add(1 * time.Minute)},
		{ID: uuid.New(), GroupID: groupID, Content: "third is a system notice", CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, m := range messages {
		req.NoError(repository.StoreMessage(m))
	}

	fetched, err := repository.LoadRecent(groupID, 10)
	req.NoError(err)
	req.Len(fetched, len(messages))
	for i, m := range messages {
		req.Equal(m.ID, fetched[i].ID)
		req.Equal(m.Content, fetched[i].Content)
	}
	req.Nil(fetched[2].SenderID)
}

func Test_LoadRecent_Returns_Newest_Limit_Oldest_First(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default())
	groupID := uuid.New()
	senderID := uuid.New()
	at := time.Now().UTC()

	for i, content := range []string{"one", "two", "three", "four", "five"} {
		req.NoError(repository.StoreMessage(domain.Message{
			ID:        uuid.New(),
			GroupID:   groupID,
			SenderID:  &senderID,
			Content:   content,
			CreatedAt: at.Add(time.Duration(i) * time.Second),
		}))
	}

	fetched, err := repository.LoadRecent(groupID, 2)
	req.NoError(err)
	req.Len(fetched, 2)
	// The two newest, still in chronological order.
	req.Equal("four", fetched[0].Content)
	req.Equal("five", fetched[1].Content)
}

func Test_LoadRecent_Isolates_Groups(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default())
	groupA := uuid.New()
	groupB := uuid.New()
	senderID := uuid.New()

	req.NoError(repository.StoreMessage(domain.Message{
		ID: uuid.New(), GroupID: groupA, SenderID: &senderID, Content: "for A", CreatedAt: time.Now().UTC(),
	}))
	req.NoError(repository.StoreMessage(domain.Message{
		ID: uuid.New(), GroupID: groupB, SenderID: &senderID, Content: "for B", CreatedAt: time.Now().UTC(),
	}))

	fetched, err := repository.LoadRecent(groupA, 10)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("for A", fetched[0].Content)
}

func Test_LoadRecent_Empty_Group(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default())

	fetched, err := repository.LoadRecent(uuid.New(), 10)
	req.NoError(err)
	req.Empty(fetched)
}
