//go:generate go run go.uber.org/mock/mockgen -source=invitation.go -destination=../mocks/mock_invitation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
)

type IInvitationRepository interface {
	CreateInvitation(groupID, inviterID, invitedUserID uuid.UUID) (domain.Invitation, error)
	GetInvitation(id uuid.UUID) (domain.Invitation, error)
	ListPendingForUser(userID uuid.UUID) ([]domain.Invitation, error)
	AcceptAndAddMember(id, actingUserID uuid.UUID) (domain.Invitation, error)
	Decline(id, actingUserID uuid.UUID) (domain.Invitation, error)
}

type InvitationRepository struct {
	db *badger.DB
}

func NewInvitationRepository(db *badger.DB) IInvitationRepository {
	return &InvitationRepository{db: db}
}

type diskInvitation struct {
	ID        uuid.UUID               `json:"id"`
	Group     uuid.UUID               `json:"group"`
	Inviter   uuid.UUID               `json:"inviter"`
	Invited   uuid.UUID               `json:"invited"`
	Status    domain.InvitationStatus `json:"status"`
	CreatedAt int64                   `json:"created_at"`
}

// CreateInvitation inserts a pending invitation. The pending index key is
// checked in the same transaction, enforcing at most one pending invitation
// per (group, invited user) pair under concurrent creates.
func (r InvitationRepository) CreateInvitation(groupID, inviterID, invitedUserID uuid.UUID) (domain.Invitation, error) {
	inv := domain.Invitation{
		ID:            uuid.New(),
		GroupID:       groupID,
		InviterID:     inviterID,
		InvitedUserID: invitedUserID,
		Status:        domain.InvitationPending,
		CreatedAt:     time.Now().UTC(),
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pendingInvitationKey(groupID, invitedUserID)); err == nil {
			return errors.ErrInvitationExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := writeInvitation(txn, inv); err != nil {
			return err
		}
		idBytes := []byte(inv.ID.String())
		if err := txn.Set(pendingInvitationKey(groupID, invitedUserID), idBytes); err != nil {
			return err
		}
		if err := txn.Set(userInvitationKey(invitedUserID, inv.ID), idBytes); err != nil {
			return err
		}
		return txn.Set(groupInvitationKey(groupID, inv.ID), idBytes)
	})
	if err == badger.ErrConflict {
		return domain.Invitation{}, errors.ErrInvitationExists
	}
	if err != nil {
		return domain.Invitation{}, err
	}
	return inv, nil
}

func (r InvitationRepository) GetInvitation(id uuid.UUID) (domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		inv, err = readInvitation(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Invitation{}, errors.ErrInvitationNotFound
	}
	return inv, err
}

// ListPendingForUser scans the index and reads each record in one snapshot.
// Index entries whose record was removed by a concurrent group deletion are
// skipped rather than failing the listing.
func (r InvitationRepository) ListPendingForUser(userID uuid.UUID) ([]domain.Invitation, error) {
	invitations := make([]domain.Invitation, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := userInvitationPrefix(userID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := uuid.ParseBytes(it.Item().Key()[len(prefix):])
			if err != nil {
				return err
			}
			inv, err := readInvitation(txn, id)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			if inv.Status == domain.InvitationPending {
				invitations = append(invitations, inv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// AcceptAndAddMember flips the invitation to accepted and inserts the
// membership in a single transaction. A crash or a concurrent conflict can
// never leave an accepted invitation without its membership, or vice versa.
// Ownership and terminal-state failures both surface as ErrInvitationNotFound
// so callers cannot probe invitations that are not theirs.
func (r InvitationRepository) AcceptAndAddMember(id, actingUserID uuid.UUID) (domain.Invitation, error) {
	return r.transition(id, actingUserID, domain.InvitationAccepted)
}

// Decline marks the invitation declined. No membership side effect.
func (r InvitationRepository) Decline(id, actingUserID uuid.UUID) (domain.Invitation, error) {
	return r.transition(id, actingUserID, domain.InvitationDeclined)
}

func (r InvitationRepository) transition(id, actingUserID uuid.UUID, to domain.InvitationStatus) (domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		inv, err = readInvitation(txn, id)
		if err == badger.ErrKeyNotFound {
			return errors.ErrInvitationNotFound
		}
		if err != nil {
			return err
		}
		if inv.InvitedUserID != actingUserID || inv.Status != domain.InvitationPending {
			return errors.ErrInvitationNotFound
		}

		inv.Status = to
		if err = writeInvitation(txn, inv); err != nil {
			return err
		}
		if err = txn.Delete(pendingInvitationKey(inv.GroupID, inv.InvitedUserID)); err != nil {
			return err
		}
		if err = txn.Delete(userInvitationKey(inv.InvitedUserID, inv.ID)); err != nil {
			return err
		}
		if to == domain.InvitationAccepted {
			if err = addMember(txn, actingUserID, inv.GroupID); err != nil && err != errors.ErrAlreadyMember {
				return err
			}
		}
		return nil
	})
	// Two concurrent transitions on one invitation: badger's SSI aborts the
	// loser, which then observes a terminal state.
	if err == badger.ErrConflict {
		return domain.Invitation{}, errors.ErrInvitationNotFound
	}
	if err != nil {
		return domain.Invitation{}, err
	}
	return inv, nil
}

func readInvitation(txn *badger.Txn, id uuid.UUID) (domain.Invitation, error) {
	item, err := txn.Get(invitationKey(id))
	if err != nil {
		return domain.Invitation{}, err
	}
	var di diskInvitation
	if err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &di)
	}); err != nil {
		return domain.Invitation{}, err
	}
	return domain.Invitation{
		ID:            di.ID,
		GroupID:       di.Group,
		InviterID:     di.Inviter,
		InvitedUserID: di.Invited,
		Status:        di.Status,
		CreatedAt:     time.Unix(0, di.CreatedAt).UTC(),
	}, nil
}

func writeInvitation(txn *badger.Txn, inv domain.Invitation) error {
	data, err := json.Marshal(diskInvitation{
		ID:        inv.ID,
		Group:     inv.GroupID,
		Inviter:   inv.InviterID,
		Invited:   inv.InvitedUserID,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	return txn.Set(invitationKey(inv.ID), data)
}
