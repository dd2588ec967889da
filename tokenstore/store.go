package tokenstore

import (
	"encoding/json"

	"github.com/aubattle/battle-client/identity"
	"github.com/pkg/errors"
)

const (
	credentialKey = "authToken"
	identityKey   = "authIdentity"
)

// Store persists the current credential together with a denormalized
// identity snapshot. The two are always written and cleared as a pair; a
// dangling token with no identity (or the reverse) is never left behind.
type Store struct {
	storage Storage
}

// NewStore wraps a Storage primitive.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Save overwrites the persisted session. The identity is written first so
// that a failure between the two writes cannot leave a credential without
// an identity to restore from.
func (s *Store) Save(credential string, id identity.Identity) error {
	if credential == "" {
		return errors.New("[Store.Save] empty credential")
	}
	if !id.Valid() {
		return errors.New("[Store.Save] invalid identity")
	}
	snapshot, err := json.Marshal(id)
	if err != nil {
		return errors.Wrap(err, "[Store.Save] marshal identity")
	}
	if err := s.storage.Set(identityKey, string(snapshot)); err != nil {
		return errors.Wrap(err, "[Store.Save] persist identity")
	}
	if err := s.storage.Set(credentialKey, credential); err != nil {
		// Roll the identity back so the pair invariant holds.
		_ = s.storage.Remove(identityKey)
		return errors.Wrap(err, "[Store.Save] persist credential")
	}
	return nil
}

// Load returns the persisted session, with ok=false when nothing usable is
// stored. A corrupt or partial entry is cleared as a side effect and
// reported as absent, never as an error.
func (s *Store) Load() (credential string, id identity.Identity, ok bool, err error) {
	credential, haveCred, err := s.storage.Get(credentialKey)
	if err != nil {
		return "", identity.Identity{}, false, errors.Wrap(err, "[Store.Load] read credential")
	}
	snapshot, haveID, err := s.storage.Get(identityKey)
	if err != nil {
		return "", identity.Identity{}, false, errors.Wrap(err, "[Store.Load] read identity")
	}

	if !haveCred && !haveID {
		return "", identity.Identity{}, false, nil
	}
	if !haveCred || !haveID || credential == "" {
		// Half a session is no session.
		_ = s.Clear()
		return "", identity.Identity{}, false, nil
	}

	id, valid := identity.Decode([]byte(snapshot))
	if !valid {
		_ = s.Clear()
		return "", identity.Identity{}, false, nil
	}
	return credential, id, true, nil
}

// Clear removes both entries. Safe to call when nothing is stored.
func (s *Store) Clear() error {
	if err := s.storage.Remove(credentialKey); err != nil {
		return errors.Wrap(err, "[Store.Clear] remove credential")
	}
	if err := s.storage.Remove(identityKey); err != nil {
		return errors.Wrap(err, "[Store.Clear] remove identity")
	}
	return nil
}
