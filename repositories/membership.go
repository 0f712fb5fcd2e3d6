//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
)

type IMembershipRepository interface {
	IsMember(userID, groupID uuid.UUID) (bool, error)
	AddMember(userID, groupID uuid.UUID) error
	RemoveMember(userID, groupID uuid.UUID) error
	MemberCount(groupID uuid.UUID) (int, error)
	ListMembers(groupID uuid.UUID) ([]domain.Membership, error)
}

type MembershipRepository struct {
	db *badger.DB
}

func NewMembershipRepository(db *badger.DB) IMembershipRepository {
	return &MembershipRepository{db: db}
}

type diskMembership struct {
	JoinedAt int64 `json:"joined_at"`
}

func (m MembershipRepository) IsMember(userID, groupID uuid.UUID) (bool, error) {
	err := m.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(groupID, userID))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// AddMember inserts the (user, group) pair. The existence check and the
// insert run in one transaction, keeping the at-most-once-per-group invariant.
func (m MembershipRepository) AddMember(userID, groupID uuid.UUID) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return addMember(txn, userID, groupID)
	})
}

func (m MembershipRepository) RemoveMember(userID, groupID uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		key := memberKey(groupID, userID)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrNotMember
	}
	return err
}

func (m MembershipRepository) MemberCount(groupID uuid.UUID) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := memberPrefix(groupID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ListMembers scans the group's member prefix. The user id is the key
// suffix, so values only carry the join timestamp.
func (m MembershipRepository) ListMembers(groupID uuid.UUID) ([]domain.Membership, error) {
	var members []domain.Membership
	prefix := memberPrefix(groupID)
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			userID, err := uuid.ParseBytes(item.Key()[len(prefix):])
			if err != nil {
				return err
			}
			var dm diskMembership
			if err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &dm)
			}); err != nil {
				return err
			}
			members = append(members, domain.Membership{
				UserID:   userID,
				GroupID:  groupID,
				JoinedAt: time.Unix(0, dm.JoinedAt).UTC(),
			})
		}
		return nil
	})
	return members, err
}

// addMember is shared with the group-creation and invitation-acceptance
// transactions, so those compound writes stay atomic.
func addMember(txn *badger.Txn, userID, groupID uuid.UUID) error {
	key := memberKey(groupID, userID)
	if _, err := txn.Get(key); err == nil {
		return errors.ErrAlreadyMember
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	data, err := json.Marshal(diskMembership{JoinedAt: time.Now().UTC().UnixNano()})
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}
