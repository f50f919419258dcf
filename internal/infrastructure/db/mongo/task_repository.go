package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

type TaskRepository struct {
	db    *mongo.Database
	col   *mongo.Collection
	users *UserRepository
}

func NewTaskRepository(db *mongo.Database, users *UserRepository) *TaskRepository {
	return &TaskRepository{db: db, col: db.Collection(collectionTasks), users: users}
}

type mongoTask struct {
	ID               int64     `bson:"_id"`
	OwnerID          int64     `bson:"owner_id"`
	Name             string    `bson:"name"`
	RegistrationDate time.Time `bson:"registration_date"`
	DueDate          time.Time `bson:"due_date"`
	Completed        bool      `bson:"completed"`

	Owner *struct {
		Name string `bson:"name"`
	} `bson:"owner,omitempty"`
}

func (mt *mongoTask) toDomain() *domain.Task {
	t := &domain.Task{
		ID:               mt.ID,
		OwnerID:          mt.OwnerID,
		Name:             mt.Name,
		RegistrationDate: domain.Date(mt.RegistrationDate),
		DueDate:          domain.Date(mt.DueDate),
		Completed:        mt.Completed,
	}
	if mt.Owner != nil {
		t.OwnerName = mt.Owner.Name
	}
	return t
}

// Insert checks the owner before writing. MongoDB has no foreign keys, so a
// user created and removed between the two calls is not detected; users are
// never removed by the application.
func (r *TaskRepository) Insert(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := r.users.exists(ctx, t.OwnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	id, err := nextID(ctx, r.db, collectionTasks)
	if err != nil {
		return nil, err
	}

	doc := mongoTask{
		ID:               id,
		OwnerID:          t.OwnerID,
		Name:             t.Name,
		RegistrationDate: domain.Date(t.RegistrationDate),
		DueDate:          domain.Date(t.DueDate),
		Completed:        t.Completed,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return r.get(ctx, id)
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.get(ctx, id)
}

func (r *TaskRepository) get(ctx context.Context, id int64) (*domain.Task, error) {
	tasks, err := r.aggregate(ctx, pipeline(bson.M{"_id": id}, nil))
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return tasks[0], nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := r.users.exists(ctx, t.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": t.ID}, updateDoc(t))
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// updateDoc sets the mutable fields. registration_date is never written.
func updateDoc(t *domain.Task) bson.M {
	return bson.M{"$set": bson.M{
		"owner_id":  t.OwnerID,
		"name":      t.Name,
		"due_date":  domain.Date(t.DueDate),
		"completed": t.Completed,
	}}
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.aggregate(ctx, listPipeline(f))
}

// listPipeline matches on the task, joins the owner, filters search terms on
// both names and sorts by due date then id.
func listPipeline(f domain.TaskFilter) mongo.Pipeline {
	match := bson.M{}
	var joined bson.M
	switch f.Kind {
	case domain.FilterCompleted:
		match["completed"] = true
	case domain.FilterIncomplete:
		match["completed"] = false
	case domain.FilterSearch:
		re := bson.M{"$regex": regexp.QuoteMeta(f.Term), "$options": "i"}
		joined = bson.M{"$or": bson.A{
			bson.M{"name": re},
			bson.M{"owner.name": re},
		}}
	}
	return pipeline(match, joined)
}

func pipeline(match, joined bson.M) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "owner_id",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
	}
	if joined != nil {
		p = append(p, bson.D{{Key: "$match", Value: joined}})
	}
	return append(p, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "due_date", Value: 1},
		{Key: "_id", Value: 1},
	}}})
}

func (r *TaskRepository) aggregate(ctx context.Context, p mongo.Pipeline) ([]*domain.Task, error) {
	cur, err := r.col.Aggregate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

// EnsureIndexes creates the indexes used by listing and joins.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "completed", Value: 1}, {Key: "due_date", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
