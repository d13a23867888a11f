package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// Memory is an in-process ledger with the same rejection rules as the
// FaceAuth contract. VisibilityLag delays how many IsRegistered reads a new
// identity stays invisible for, which mimics a node that confirmed a block
// but has not caught up on reads.
type Memory struct {
	mu         sync.Mutex
	identities map[string]identity.Identity
	hidden     map[string]int
	lag        int
	blocks     uint64
}

// NewMemory creates an empty ledger.
func NewMemory(visibilityLag int) *Memory {
	return &Memory{
		identities: make(map[string]identity.Identity),
		hidden:     make(map[string]int),
		lag:        visibilityLag,
	}
}

// IsRegistered implements Ledger.
func (m *Memory) IsRegistered(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[username]; !ok {
		return false, nil
	}
	if n := m.hidden[username]; n > 0 {
		m.hidden[username] = n - 1
		return false, nil
	}
	return true, nil
}

// GetCredential implements Ledger.
func (m *Memory) GetCredential(ctx context.Context, username string) (*identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &id, nil
}

// RegisterCredential implements Ledger. The duplicate check and insert happen
// under one lock, so concurrent registrations of a username admit exactly one.
func (m *Memory) RegisterCredential(ctx context.Context, cred identity.Identity) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case strings.TrimSpace(cred.Username) == "":
		return Rejected("Username cannot be empty"), nil
	case cred.PasswordFingerprint == "":
		return Rejected("Password hash cannot be empty"), nil
	case cred.FaceFingerprint == "":
		return Rejected("Face hash cannot be empty"), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[cred.Username]; ok {
		return Rejected(RevertUserExists), nil
	}
	m.identities[cred.Username] = cred
	if m.lag > 0 {
		m.hidden[cred.Username] = m.lag
	}
	m.blocks++
	return Receipt{
		Committed:   true,
		TxHash:      fmt.Sprintf("mem-%d", m.blocks),
		BlockNumber: m.blocks,
	}, nil
}

// UserCount implements Counter.
func (m *Memory) UserCount(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.identities)), nil
}

// Usernames implements Enumerator.
func (m *Memory) Usernames(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.identities))
	for u := range m.identities {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// Forget removes an identity. Only tests use it, to simulate a ledger that
// lost or never recorded a registration.
func (m *Memory) Forget(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.identities, username)
	delete(m.hidden, username)
}
