// cache — клиентский кэш списка пользователей: копия в памяти плюс
// персистентное значение (JSON-массив) под фиксированным ключом.
// Кэш всегда заменяется целиком, слияния нет.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pribylovaa/go-user-directory/internal/api"
)

// DefaultKey — ключ, под которым хранится список.
const DefaultKey = "users"

// Persister — долговременное хранилище сериализованного списка.
type Persister interface {
	// Load возвращает значение и признак его наличия.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save перезаписывает значение целиком.
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Cache — потокобезопасный кэш записей поверх Persister.
type Cache struct {
	mu      sync.RWMutex
	p       Persister
	key     string
	records []api.User
}

// New создаёт пустой кэш. Пустой key заменяется на DefaultKey.
func New(p Persister, key string) *Cache {
	if key == "" {
		key = DefaultKey
	}

	return &Cache{p: p, key: key, records: []api.User{}}
}

// Load читает сохранённый список в память. found=true, если значение
// существовало (в том числе пустой массив).
func (c *Cache) Load(ctx context.Context) (bool, error) {
	const op = "cache/Load"

	raw, found, err := c.p.Load(ctx, c.key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if !found {
		return false, nil
	}

	var users []api.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return false, fmt.Errorf("%s: decode: %w", op, err)
	}

	c.mu.Lock()
	c.records = cloneAll(users)
	c.mu.Unlock()

	return true, nil
}

// Records возвращает копию текущего списка.
func (c *Cache) Records() []api.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return cloneAll(c.records)
}

// Replace полностью перезаписывает список в памяти и в Persister.
// Память обновляется даже при ошибке сохранения.
func (c *Cache) Replace(ctx context.Context, users []api.User) error {
	c.mu.Lock()
	c.records = cloneAll(users)
	snapshot := cloneAll(c.records)
	c.mu.Unlock()

	if err := c.save(ctx, snapshot); err != nil {
		return fmt.Errorf("cache/Replace: %w", err)
	}

	return nil
}

// Remove удаляет запись по ключу (id или tempId) и сохраняет список,
// даже если записи в памяти не было: сохранённое значение всегда
// совпадает с тем, что видит клиент. removed=false, если записи не было.
func (c *Cache) Remove(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	kept := make([]api.User, 0, len(c.records))
	removed := false
	for _, u := range c.records {
		if u.Key() == key {
			removed = true
			continue
		}
		kept = append(kept, u)
	}
	c.records = kept
	snapshot := cloneAll(kept)
	c.mu.Unlock()

	if err := c.save(ctx, snapshot); err != nil {
		return removed, fmt.Errorf("cache/Remove: %w", err)
	}

	return removed, nil
}

// Filter возвращает записи кэша, подходящие под term (см. Match).
func (c *Cache) Filter(term string) []api.User {
	return Filter(c.Records(), term)
}

func (c *Cache) save(ctx context.Context, users []api.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	return c.p.Save(ctx, c.key, raw)
}

// Filter отбирает записи без учёта регистра по подстроке в имени,
// должности, поле gender или любом из favorites. Пустой term — без фильтра.
func Filter(users []api.User, term string) []api.User {
	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]api.User, 0, len(users))
	for _, u := range users {
		if term == "" || Match(u, term) {
			out = append(out, u.Clone())
		}
	}

	return out
}

// Match проверяет одну запись; term ожидается уже в нижнем регистре.
func Match(u api.User, term string) bool {
	if strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Designation), term) ||
		strings.Contains(strings.ToLower(u.Gender), term) {
		return true
	}

	for _, f := range u.Favorites {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}

	return false
}

func cloneAll(users []api.User) []api.User {
	out := make([]api.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Clone())
	}

	return out
}
