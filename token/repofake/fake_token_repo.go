package tokenrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-event-portal/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	values map[string]string
	writes int
	getErr error
	lock   sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

// NewFakeTokenRepoWith returns a repo pre-populated with the given token pair.
// Empty values are not stored.
func NewFakeTokenRepoWith(accessToken, refreshToken string) *FakeTokenRepo {
	tr := NewFakeTokenRepo()
	if accessToken != "" {
		tr.values[token.AccessTokenKey] = accessToken
	}
	if refreshToken != "" {
		tr.values[token.RefreshTokenKey] = refreshToken
	}
	return tr
}

func (tr *FakeTokenRepo) Get(_ context.Context, key string) (string, bool, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	if tr.getErr != nil {
		return "", false, tr.getErr
	}
	v, ok := tr.values[key]
	return v, ok, nil
}

func (tr *FakeTokenRepo) Set(_ context.Context, key, value string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.values[key] = value
	tr.writes++
	return nil
}

func (tr *FakeTokenRepo) Remove(_ context.Context, key string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	delete(tr.values, key)
	return nil
}

// Writes counts Set calls, letting tests assert that nothing was persisted
func (tr *FakeTokenRepo) Writes() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.writes
}

// Value returns the stored value or "" when absent
func (tr *FakeTokenRepo) Value(key string) string {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.values[key]
}

// FailGets makes every Get return err until called again with nil
func (tr *FakeTokenRepo) FailGets(err error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.getErr = err
}
