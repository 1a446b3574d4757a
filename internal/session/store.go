package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const provider = "kiturami"

// Store persists session state to a local file and optionally mirrors it
// to a blob store. The local copy is authoritative; the mirror lets a
// fresh host pick up an existing session.
type Store struct {
	statePath string
	blob      BlobStore
}

func NewStore(statePath string, blob BlobStore) (*Store, error) {
	if statePath == "" {
		return nil, fmt.Errorf("state path is required")
	}
	return &Store{statePath: statePath, blob: blob}, nil
}

// Load returns the persisted session, preferring the local state file
// and falling back to the blob mirror.
func (s *Store) Load(ctx context.Context) (State, error) {
	local, localErr := LoadState(s.statePath)
	if localErr == nil {
		return local, nil
	}
	if !errors.Is(localErr, ErrStateNotFound) {
		return State{}, localErr
	}
	if s.blob == nil {
		return State{}, ErrStateNotFound
	}

	data, err := s.blob.Load(ctx, provider)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return State{}, ErrStateNotFound
		}
		return State{}, err
	}
	state, err := DecodeState(data)
	if err != nil {
		return State{}, err
	}
	if err := WriteState(s.statePath, state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Save writes the session locally and mirrors it best-effort; a mirror
// failure is reported via metrics, not an error.
func (s *Store) Save(ctx context.Context, state State) error {
	if state.SchemaVersion == 0 {
		state.SchemaVersion = SchemaVersion
	}
	if err := state.Validate(); err != nil {
		return err
	}
	if err := WriteState(s.statePath, state); err != nil {
		saveFailure.Inc()
		return err
	}
	if s.blob == nil {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := s.blob.Save(ctx, provider, data); err != nil {
		remotePersistOK.Set(0)
		return nil
	}
	remotePersistOK.Set(1)
	return nil
}
