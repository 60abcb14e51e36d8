package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	defaultDBName   = "users"
)

// Mongo - тонкий адаптер для подключения и коллекции пользователей MongoDB.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	users  *mongodriver.Collection
}

// New подключается к MongoDB, проверяет его, создаёт коллекцию с валидатором схемы
// и обеспечивает индексацию.
func New(ctx context.Context, dbURL string) (*Mongo, error) {
	if strings.TrimSpace(dbURL) == "" {
		return nil, fmt.Errorf("mongo: empty db url")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(dbURL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(dbURL))

	m := &Mongo{
		client: cli,
		db:     db,
		users:  db.Collection(usersCollection),
	}

	if err := m.ensureSchema(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping проверяет доступность primary.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("storage/mongo/Ping: %w", err)
	}

	return nil
}

// usersValidator — $jsonSchema коллекции users. Дублирует models.User.Validate
// на стороне сервера БД, чтобы записи в обход сервиса не ломали инварианты.
func usersValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "gender", "designation", "favorites", "created_at", "updated_at"},
			"properties": bson.M{
				"name":        bson.M{"bsonType": "string", "minLength": 1},
				"gender":      bson.M{"enum": bson.A{"Male", "Female"}},
				"designation": bson.M{"bsonType": "string", "minLength": 1},
				"favorites": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items":    bson.M{"bsonType": "string"},
				},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

// ensureSchema создаёт коллекцию users с валидатором, если её ещё нет,
// иначе обновляет валидатор через collMod. Повторный вызов безопасен.
func (m *Mongo) ensureSchema(ctx context.Context) error {
	names, err := m.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: usersCollection}})
	if err != nil {
		return fmt.Errorf("mongo list collections: %w", err)
	}

	if len(names) == 0 {
		opts := options.CreateCollection().SetValidator(usersValidator())
		if err := m.db.CreateCollection(ctx, usersCollection, opts); err != nil {
			return fmt.Errorf("mongo create collection: %w", err)
		}

		return nil
	}

	cmd := bson.D{
		{Key: "collMod", Value: usersCollection},
		{Key: "validator", Value: usersValidator()},
	}

	if err := m.db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("mongo collMod: %w", err)
	}

	return nil
}

// ensureIndexes создаёт индекс для выдачи списка: created_at(desc) + _id(desc).
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	}

	_, err := m.users.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}

	return nil
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}
