package devserver

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken  = errors.New("username already taken")
	ErrBadCredentials = errors.New("bad credentials")
)

// Query parameters that shape a list response rather than filter it.
var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"search":    true,
	"ordering":  true,
}

type account struct {
	user models.User
	hash []byte
}

type collection struct {
	nextID int
	items  []map[string]any
}

// Store keeps users and resource collections in memory.
type Store struct {
	mu          sync.Mutex
	cost        int
	users       map[int]*account
	nextUserID  int
	collections map[string]*collection
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		cost:        bcryptCost,
		users:       make(map[int]*account),
		nextUserID:  1,
		collections: make(map[string]*collection),
	}
}

// AddUser stores u with the given password and assigns it an id.
func (s *Store) AddUser(u models.User, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if a.user.Username == u.Username {
			return models.User{}, ErrUsernameTaken
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = &account{user: u, hash: hash}
	return u, nil
}

func (s *Store) Authenticate(username, password string) (models.User, error) {
	s.mu.Lock()
	var found *account
	for _, a := range s.users {
		if a.user.Username == username {
			found = a
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return models.User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.hash, []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}
	return found.user, nil
}

func (s *Store) User(id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.users[id]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	return a.user, nil
}

// Users returns all users ordered by id.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, a.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateUser applies fn to the stored user and returns the result.
func (s *Store) UpdateUser(id int, fn func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.users[id]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	fn(&a.user)
	return a.user, nil
}

// ChangePassword replaces the password of id after checking the old one.
func (s *Store) ChangePassword(id int, oldPassword, newPassword string) error {
	s.mu.Lock()
	a, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		return common.ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(oldPassword)); err != nil {
		return ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	a.hash = hash
	s.mu.Unlock()
	return nil
}

func (s *Store) collection(path string) *collection {
	c, ok := s.collections[path]
	if !ok {
		c = &collection{nextID: 1}
		s.collections[path] = c
	}
	return c
}

// List returns the records under path whose fields equal every non-reserved
// query parameter.
func (s *Store) List(path string, query url.Values) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []map[string]any{}
	for _, item := range s.collection(path).items {
		if matches(item, query) {
			out = append(out, copyRecord(item))
		}
	}
	return out
}

func matches(item map[string]any, query url.Values) bool {
	for k, vs := range query {
		if reservedParams[k] || len(vs) == 0 {
			continue
		}
		v, ok := item[k]
		if !ok || !strings.EqualFold(fmt.Sprint(v), vs[0]) {
			return false
		}
	}
	return true
}

func (s *Store) Get(path string, id int) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, item := s.find(path, id)
	if item == nil {
		return nil, common.ErrNotFound
	}
	return copyRecord(item), nil
}

// Create stores rec under path with the next id.
func (s *Store) Create(path string, rec map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(path)
	item := copyRecord(rec)
	item["id"] = c.nextID
	c.nextID++
	c.items = append(c.items, item)
	return copyRecord(item)
}

// Update merges fields into the record; the id is never changed.
func (s *Store) Update(path string, id int, fields map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, item := s.find(path, id)
	if item == nil {
		return nil, common.ErrNotFound
	}
	for k, v := range fields {
		if k != "id" {
			item[k] = v
		}
	}
	return copyRecord(item), nil
}

func (s *Store) Delete(path string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, item := s.find(path, id)
	if item == nil {
		return common.ErrNotFound
	}
	c := s.collections[path]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (s *Store) find(path string, id int) (int, map[string]any) {
	c, ok := s.collections[path]
	if !ok {
		return -1, nil
	}
	for i, item := range c.items {
		if n, ok := item["id"].(int); ok && n == id {
			return i, item
		}
	}
	return -1, nil
}

func copyRecord(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
