//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
)

type IMessageRepository interface {
	StoreMessage(m domain.Message) error
	LoadRecent(groupID uuid.UUID, limit int) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored representation of a message.
// A nil Sender marks a system-generated message.
type diskMessage struct {
	ID      uuid.UUID  `json:"id"`
	Group   uuid.UUID  `json:"group"`
	Sender  *uuid.UUID `json:"sender,omitempty"`
	Content string     `json:"content"`
	At      int64      `json:"at"` // unix nanoseconds
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{group_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(msg domain.Message) error {
	key := messageKey(msg.GroupID, msg.CreatedAt.UnixNano(), msg.ID)
	bytes, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, bytes)
	})
}

// LoadRecent retrieves the most recent messages for a group using a reverse
// prefix scan, then returns them oldest-first (most-recent-last) so a new
// session can replay them in reading order before any live delivery.
// A limit <= 0 means no limit.
func (m MessageRepository) LoadRecent(groupID uuid.UUID, limit int) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(groupID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this group, then walk back.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var dm diskMessage
		if err = json.Unmarshal(raw[i], &dm); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(dm))
	}
	return messages, nil
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		ID:      msg.ID,
		Group:   msg.GroupID,
		Sender:  msg.SenderID,
		Content: msg.Content,
		At:      msg.CreatedAt.UnixNano(),
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        dm.ID,
		GroupID:   dm.Group,
		SenderID:  dm.Sender,
		Content:   dm.Content,
		CreatedAt: time.Unix(0, dm.At).UTC(),
	}
}
