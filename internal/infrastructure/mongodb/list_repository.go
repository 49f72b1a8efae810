package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

type listDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d listDoc) toEntity() entity.List {
	return entity.List{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		UserID:    d.User.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type ListRepository struct {
	lists *mongo.Collection
	tasks *mongo.Collection
}

func NewListRepository(db *mongo.Database) *ListRepository {
	return &ListRepository{lists: db.Collection(listsCollection), tasks: db.Collection(tasksCollection)}
}

func (r *ListRepository) Create(ctx context.Context, l *entity.List) error {
	owner, err := objectID(l.UserID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := listDoc{ID: primitive.NewObjectID(), Name: l.Name, User: owner, CreatedAt: now, UpdatedAt: now}
	if _, err := r.lists.InsertOne(ctx, doc); err != nil {
		return err
	}
	*l = doc.toEntity()
	return nil
}

func (r *ListRepository) ListByUser(ctx context.Context, userID string) ([]entity.List, error) {
	owner, err := objectID(userID)
	if err != nil {
		return []entity.List{}, nil
	}
	cur, err := r.lists.Find(ctx, bson.M{"user": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []listDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.List, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *ListRepository) GetByID(ctx context.Context, userID, id string) (*entity.List, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc listDoc
	if err := r.lists.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	l := doc.toEntity()
	return &l, nil
}

// DeleteCascade issues two independent deletes. Standalone servers offer no
// multi-document transaction, so a crash between them leaves orphaned tasks;
// the list.deleted event and the periodic orphan sweep clean those up.
func (r *ListRepository) DeleteCascade(ctx context.Context, userID, id string) (int64, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return 0, repository.ErrNotFound
	}
	res, err := r.lists.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete list: %w", err)
	}
	if res.DeletedCount == 0 {
		return 0, repository.ErrNotFound
	}
	tres, err := r.tasks.DeleteMany(ctx, bson.M{"listId": filter["_id"], "user": filter["user"]})
	if err != nil {
		return 0, fmt.Errorf("delete list tasks: %w", err)
	}
	return tres.DeletedCount, nil
}

// ownedFilter matches a document by id and owner.
func ownedFilter(userID, id string) (bson.M, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	owner, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "user": owner}, nil
}

var _ repository.ListRepository = (*ListRepository)(nil)
