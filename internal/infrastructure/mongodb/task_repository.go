package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

type subtaskDoc struct {
	Title     string `bson:"title"`
	Completed bool   `bson:"completed"`
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Completed   bool               `bson:"completed"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Description *string            `bson:"description,omitempty"`
	Subtasks    []subtaskDoc       `bson:"subtasks"`
	User        primitive.ObjectID `bson:"user"`
	ListID      primitive.ObjectID `bson:"listId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toSubtaskDocs(subs []entity.Subtask) []subtaskDoc {
	out := make([]subtaskDoc, 0, len(subs))
	for _, s := range subs {
		out = append(out, subtaskDoc{Title: s.Title, Completed: s.Completed})
	}
	return out
}

func (d taskDoc) toEntity() entity.Task {
	subs := make([]entity.Subtask, 0, len(d.Subtasks))
	for _, s := range d.Subtasks {
		subs = append(subs, entity.Subtask{Title: s.Title, Completed: s.Completed})
	}
	var due *time.Time
	if d.DueDate != nil {
		v := d.DueDate.UTC()
		due = &v
	}
	return entity.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Completed:   d.Completed,
		DueDate:     due,
		Description: d.Description,
		Subtasks:    subs,
		UserID:      d.User.Hex(),
		ListID:      d.ListID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type TaskRepository struct {
	tasks *mongo.Collection
	lists *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{tasks: db.Collection(tasksCollection), lists: db.Collection(listsCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	owner, err := objectID(t.UserID)
	if err != nil {
		return err
	}
	list, err := objectID(t.ListID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := taskDoc{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		Description: t.Description,
		Subtasks:    toSubtaskDocs(t.Subtasks),
		User:        owner,
		ListID:      list,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.tasks.InsertOne(ctx, doc); err != nil {
		return err
	}
	*t = doc.toEntity()
	return nil
}

func (r *TaskRepository) List(ctx context.Context, userID string, listID *string) ([]entity.Task, error) {
	owner, err := objectID(userID)
	if err != nil {
		return []entity.Task{}, nil
	}
	filter := bson.M{"user": owner}
	if listID != nil {
		list, err := objectID(*listID)
		if err != nil {
			return []entity.Task{}, nil
		}
		filter["listId"] = list
	}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc taskDoc
	if err := r.tasks.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	t := doc.toEntity()
	return &t, nil
}

// taskUpdateDoc builds the $set/$unset document for the supplied patch slots.
func taskUpdateDoc(p entity.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	if p.DueDate.Set {
		if p.DueDate.Value == nil {
			unset["dueDate"] = ""
		} else {
			set["dueDate"] = *p.DueDate.Value
		}
	}
	if p.Description.Set {
		if p.Description.Value == nil {
			unset["description"] = ""
		} else {
			set["description"] = *p.Description.Value
		}
	}
	if p.Subtasks != nil {
		set["subtasks"] = toSubtaskDocs(*p.Subtasks)
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *TaskRepository) Update(ctx context.Context, userID, id string, patch entity.TaskPatch) (*entity.Task, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDoc
	if err := r.tasks.FindOneAndUpdate(ctx, filter, taskUpdateDoc(patch, time.Now().UTC()), opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	t := doc.toEntity()
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.tasks.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByList(ctx context.Context, userID, listID string) (int64, error) {
	owner, err := objectID(userID)
	if err != nil {
		return 0, nil
	}
	list, err := objectID(listID)
	if err != nil {
		return 0, nil
	}
	res, err := r.tasks.DeleteMany(ctx, bson.M{"listId": list, "user": owner})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOrphans joins every task to its owner's list and removes the ones
// that found no match.
func (r *TaskRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": listsCollection,
			"let":  bson.M{"lid": "$listId", "uid": "$user"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$_id", "$$lid"}},
					bson.M{"$eq": bson.A{"$user", "$$uid"}},
				}}}},
				bson.M{"$project": bson.M{"_id": 1}},
			},
			"as": "owner_list",
		}}},
		{{Key: "$match", Value: bson.M{"owner_list": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}
	cur, err := r.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var orphans []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &orphans); err != nil {
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	ids := make(bson.A, 0, len(orphans))
	for _, o := range orphans {
		ids = append(ids, o.ID)
	}
	res, err := r.tasks.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]entity.Task, error) {
	filter := bson.M{
		"completed": false,
		"dueDate":   bson.M{"$gte": from, "$lt": to},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "user", Value: 1}, {Key: "dueDate", Value: 1}}))
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Task, error) {
	cur, err := r.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
