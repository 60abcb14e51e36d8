package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/go-user-directory/internal/models"
	"github.com/pribylovaa/go-user-directory/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDoc — BSON-представление записи в коллекции users.
type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Gender      string             `bson:"gender"`
	Designation string             `bson:"designation"`
	Favorites   []string           `bson:"favorites"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Gender:      models.Gender(d.Gender),
		Designation: d.Designation,
		Favorites:   d.Favorites,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// nextUpdatedAt гарантирует строгий рост updated_at даже при совпадении миллисекунд.
func nextUpdatedAt(prev time.Time) time.Time {
	now := toMS(time.Now())
	if floor := toMS(prev).Add(time.Millisecond); now.Before(floor) {
		return floor
	}

	return now
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, storage.ErrInvalidID
	}

	return oid, nil
}

// CreateUser нормализует, валидирует и вставляет запись.
// ID назначает драйвер (ObjectID), created_at == updated_at.
func (m *Mongo) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/mongo/CreateUser"

	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := toMS(time.Now())
	doc := userDoc{
		Name:        user.Name,
		Gender:      string(user.Gender),
		Designation: user.Designation,
		Favorites:   append([]string(nil), user.Favorites...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := m.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()

	return &out, nil
}

// ListUsers возвращает все записи. Сортировка: created_at DESC, _id DESC.
func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage/mongo/ListUsers"

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := m.users.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	items := make([]models.User, 0)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}

// UserByID возвращает запись по идентификатору.
// Некорректный ObjectID — storage.ErrInvalidID, отсутствие — storage.ErrNotFound.
func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := m.findDoc(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()

	return &out, nil
}

// UpdateUser читает запись, накладывает переданные поля, валидирует результат
// и записывает только изменённые поля вместе с новым updated_at.
func (m *Mongo) UpdateUser(ctx context.Context, id string, update models.Update) (*models.User, error) {
	const op = "storage/mongo/UpdateUser"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := m.findDoc(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged := update.Apply(current.toModel())
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.D{}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: merged.Name})
	}

	if update.Gender != nil {
		set = append(set, bson.E{Key: "gender", Value: string(merged.Gender)})
	}

	if update.Designation != nil {
		set = append(set, bson.E{Key: "designation", Value: merged.Designation})
	}

	if update.Favorites != nil {
		set = append(set, bson.E{Key: "favorites", Value: merged.Favorites})
	}

	set = append(set, bson.E{Key: "updated_at", Value: nextUpdatedAt(current.UpdatedAt)})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out userDoc
	err = m.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: update: %w", op, err)
	}

	res := out.toModel()

	return &res, nil
}

// DeleteUser удаляет документ безвозвратно.
func (m *Mongo) DeleteUser(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteUser"

	oid, err := parseID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (m *Mongo) findDoc(ctx context.Context, oid primitive.ObjectID) (*userDoc, error) {
	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("find: %w", err)
	}

	return &doc, nil
}
