// memory — хранилище пользователей в памяти процесса.
// Используется драйвером db.driver=memory и в тестах транспорта/клиента.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/go-user-directory/internal/models"
	"github.com/pribylovaa/go-user-directory/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Storage struct {
	mu    *sync.RWMutex
	items map[string]models.User
	now   func() time.Time
}

func New() *Storage {
	return &Storage{
		mu:    &sync.RWMutex{},
		items: make(map[string]models.User),
		now:   time.Now,
	}
}

func (s *Storage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// id в формате ObjectID, чтобы клиенты видели одинаковые идентификаторы
// независимо от драйвера по умолчанию.
func parseID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return "", storage.ErrInvalidID
	}

	return oid.Hex(), nil
}

func (s *Storage) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	const op = "storage/memory/CreateUser"

	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	user = user.Clone()
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.items[user.ID] = user

	out := user.Clone()

	return &out, nil
}

// ListUsers: created_at DESC, id DESC.
func (s *Storage) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.User, 0, len(s.items))
	for _, u := range s.items {
		items = append(items, u.Clone())
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}

		return items[i].ID > items[j].ID
	})

	return items, nil
}

func (s *Storage) UserByID(_ context.Context, id string) (*models.User, error) {
	const op = "storage/memory/UserByID"

	key, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := user.Clone()

	return &out, nil
}

func (s *Storage) UpdateUser(_ context.Context, id string, update models.Update) (*models.User, error) {
	const op = "storage/memory/UpdateUser"

	key, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	merged := update.Apply(current)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.timestamp()
	if floor := current.UpdatedAt.Add(time.Millisecond); now.Before(floor) {
		now = floor
	}

	merged.UpdatedAt = now
	s.items[key] = merged

	out := merged.Clone()

	return &out, nil
}

func (s *Storage) DeleteUser(_ context.Context, id string) error {
	const op = "storage/memory/DeleteUser"

	key, err := parseID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	delete(s.items, key)

	return nil
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) Close(context.Context) error { return nil }

var _ storage.UsersStorage = (*Storage)(nil)
