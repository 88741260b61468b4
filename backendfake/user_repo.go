package backendfake

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-event-portal/internal/utils"
	"github.com/jrsteele09/go-event-portal/users"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type storedUser struct {
	user         users.User
	passwordHash []byte
}

// FakeUserRepo holds backend accounts with bcrypt password hashes
type FakeUserRepo struct {
	users    map[int]*storedUser
	emailIDs map[string]int // lower-cased email to user id
	nextID   int
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[int]*storedUser),
		emailIDs: make(map[string]int),
		nextID:   1,
	}
}

// Create adds an account; the email and username must be unused
func (ur *FakeUserRepo) Create(username, email, password string, role users.RoleType) (users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return users.User{}, err
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := strings.ToLower(email)
	if _, ok := ur.emailIDs[key]; ok {
		return users.User{}, ErrAlreadyExists
	}
	for _, su := range ur.users {
		if su.user.Username == username {
			return users.User{}, ErrAlreadyExists
		}
	}

	now := utils.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	u := users.User{
		ID:        ur.nextID,
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ur.nextID++
	ur.users[u.ID] = &storedUser{user: u, passwordHash: hash}
	ur.emailIDs[key] = u.ID
	return u, nil
}

// Authenticate returns the user when the password matches
func (ur *FakeUserRepo) Authenticate(email, password string) (users.User, bool) {
	ur.lock.RLock()
	id, ok := ur.emailIDs[strings.ToLower(email)]
	var su *storedUser
	if ok {
		su = ur.users[id]
	}
	ur.lock.RUnlock()

	if su == nil {
		return users.User{}, false
	}
	if bcrypt.CompareHashAndPassword(su.passwordHash, []byte(password)) != nil {
		return users.User{}, false
	}
	return su.user, true
}

func (ur *FakeUserRepo) GetByID(id int) (users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	su, ok := ur.users[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return su.user, nil
}

// SetRole changes a user's role
func (ur *FakeUserRepo) SetRole(id int, role users.RoleType) (users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	su, ok := ur.users[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	su.user.Role = role
	su.user.UpdatedAt = utils.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	return su.user, nil
}

// List returns users ordered by id, optionally filtered by role
func (ur *FakeUserRepo) List(roles ...users.RoleType) []users.User {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]users.User, 0, len(ur.users))
	for _, su := range ur.users {
		if len(roles) > 0 && !containsRole(roles, su.user.Role) {
			continue
		}
		list = append(list, su.user)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func containsRole(roles []users.RoleType, role users.RoleType) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
