//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
)

type IGroupRepository interface {
	CreateGroup(name string, creatorID uuid.UUID) (domain.Group, error)
	GetByID(id uuid.UUID) (domain.Group, error)
	GetByName(name string) (domain.Group, error)
	DeleteGroup(id uuid.UUID) error
}

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) IGroupRepository {
	return &GroupRepository{db: db}
}

type diskGroup struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt int64     `json:"created_at"`
}

// CreateGroup inserts the group and its creator's membership in one
// transaction: a group must never exist without at least one member.
func (g GroupRepository) CreateGroup(name string, creatorID uuid.UUID) (domain.Group, error) {
	group := domain.Group{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(fromGroup(group))
	if err != nil {
		return domain.Group{}, err
	}

	err = g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(groupNameKey(name)); err == nil {
			return errors.ErrGroupNameExists
		}
		if err := txn.Set(groupNameKey(name), []byte(group.ID.String())); err != nil {
			return err
		}
		if err := txn.Set(groupKey(group.ID), data); err != nil {
			return err
		}
		return addMember(txn, creatorID, group.ID)
	})
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (g GroupRepository) GetByID(id uuid.UUID) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		group, err = readGroup(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	return group, err
}

func (g GroupRepository) GetByName(name string) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(groupNameKey(name))
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err = item.Value(func(val []byte) error {
			id, err = uuid.ParseBytes(val)
			return err
		}); err != nil {
			return err
		}
		group, err = readGroup(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	return group, err
}

// DeleteGroup removes the group and everything hanging off it: memberships,
// invitations (with their indexes) and message history. Called synchronously
// when the last member leaves, so no group is left permanently memberless.
func (g GroupRepository) DeleteGroup(id uuid.UUID) error {
	return g.db.Update(func(txn *badger.Txn) error {
		group, err := readGroup(txn, id)
		if err == badger.ErrKeyNotFound {
			return errors.ErrGroupNotFound
		}
		if err != nil {
			return err
		}

		if err := txn.Delete(groupNameKey(group.Name)); err != nil {
			return err
		}
		if err := txn.Delete(groupKey(id)); err != nil {
			return err
		}
		if err := deletePrefix(txn, memberPrefix(id)); err != nil {
			return err
		}
		if err := deletePrefix(txn, messagePrefix(id)); err != nil {
			return err
		}
		return deleteGroupInvitations(txn, id)
	})
}

// deleteGroupInvitations walks the per-group invitation index and removes
// every invitation record together with its pending and per-user indexes.
func deleteGroupInvitations(txn *badger.Txn, groupID uuid.UUID) error {
	prefix := groupInvitationPrefix(groupID)
	it := txn.NewIterator(badger.DefaultIteratorOptions)

	var keys [][]byte
	var ids []uuid.UUID
	var scanErr error
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		keys = append(keys, item.KeyCopy(nil))
		invitationID, err := uuid.ParseBytes(item.Key()[len(prefix):])
		if err != nil {
			scanErr = err
			break
		}
		ids = append(ids, invitationID)
	}
	it.Close()
	if scanErr != nil {
		return scanErr
	}

	invitations := make([]domain.Invitation, 0, len(ids))
	for _, id := range ids {
		inv, err := readInvitation(txn, id)
		if err != nil {
			return err
		}
		invitations = append(invitations, inv)
	}

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	for _, inv := range invitations {
		if err := txn.Delete(invitationKey(inv.ID)); err != nil {
			return err
		}
		if inv.Status == domain.InvitationPending {
			if err := txn.Delete(pendingInvitationKey(groupID, inv.InvitedUserID)); err != nil {
				return err
			}
			if err := txn.Delete(userInvitationKey(inv.InvitedUserID, inv.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func readGroup(txn *badger.Txn, id uuid.UUID) (domain.Group, error) {
	item, err := txn.Get(groupKey(id))
	if err != nil {
		return domain.Group{}, err
	}
	var dg diskGroup
	if err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &dg)
	}); err != nil {
		return domain.Group{}, err
	}
	return toGroup(dg), nil
}

func fromGroup(group domain.Group) diskGroup {
	return diskGroup{ID: group.ID, Name: group.Name, CreatedAt: group.CreatedAt.UnixNano()}
}

func toGroup(dg diskGroup) domain.Group {
	return domain.Group{ID: dg.ID, Name: dg.Name, CreatedAt: time.Unix(0, dg.CreatedAt).UTC()}
}
