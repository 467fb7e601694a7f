package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/teamup-users/internal/database"
	"github.com/BradenHooton/teamup-users/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fieldEmailKey holds the lower-cased address backing the unique email index.
const fieldEmailKey = "email_key"

// mongoUserDocument is the shape of a document in the Users collection.
type mongoUserDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	EmailKey     string             `bson:"email_key"`
	PasswordHash string             `bson:"password_hash"`

	FirstName string   `bson:"first_name"`
	LastName  string   `bson:"last_name"`
	Contact   string   `bson:"contact"`
	Location  string   `bson:"location"`
	Gender    string   `bson:"gender"`
	Interests []string `bson:"interests"`
	Age       *int     `bson:"age"`

	Friends                []string `bson:"friends"`
	GroupMemberList        []string `bson:"group_member_list"`
	GroupOrganizerList     []string `bson:"group_organizer_list"`
	EventOrganizerList     []string `bson:"event_organizer_list"`
	EventParticipationList []string `bson:"event_participation_list"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newMongoUserDocument(u *models.User) mongoUserDocument {
	d := newUserDocument(u)
	return mongoUserDocument{
		Username:               d.Username,
		Email:                  d.Email,
		EmailKey:               normalizeEmail(d.Email),
		PasswordHash:           d.PasswordHash,
		FirstName:              d.FirstName,
		LastName:               d.LastName,
		Contact:                d.Contact,
		Location:               d.Location,
		Gender:                 d.Gender,
		Interests:              d.Interests,
		Age:                    d.Age,
		Friends:                d.Friends,
		GroupMemberList:        d.GroupMemberList,
		GroupOrganizerList:     d.GroupOrganizerList,
		EventOrganizerList:     d.EventOrganizerList,
		EventParticipationList: d.EventParticipationList,
	}
}

func (d mongoUserDocument) toUser() *models.User {
	return userDocument{
		Username:               d.Username,
		Email:                  d.Email,
		PasswordHash:           d.PasswordHash,
		FirstName:              d.FirstName,
		LastName:               d.LastName,
		Contact:                d.Contact,
		Location:               d.Location,
		Gender:                 d.Gender,
		Interests:              d.Interests,
		Age:                    d.Age,
		Friends:                d.Friends,
		GroupMemberList:        d.GroupMemberList,
		GroupOrganizerList:     d.GroupOrganizerList,
		EventOrganizerList:     d.EventOrganizerList,
		EventParticipationList: d.EventParticipationList,
	}.toUser(d.ID.Hex(), d.CreatedAt, d.UpdatedAt)
}

// MongoUserRepository stores users in a MongoDB collection keyed by ObjectID.
type MongoUserRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	logger  *slog.Logger
}

func NewMongoUserRepository(db *database.MongoDB, timeout time.Duration, logger *slog.Logger) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection, timeout: timeout, logger: logger}
}

// EnsureSchema creates the unique and filter indexes. Creating an existing
// index with the same options is a no-op.
func (r *MongoUserRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: models.FieldUsername, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(database.UsernameIndex),
		},
		{
			Keys:    bson.D{{Key: fieldEmailKey, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(database.EmailIndex),
		},
		{
			Keys:    bson.D{{Key: models.FieldInterests, Value: 1}},
			Options: options.Index().SetName("users_interests_idx"),
		},
		{
			Keys:    bson.D{{Key: models.FieldLocation, Value: 1}},
			Options: options.Index().SetName("users_location_idx"),
		},
	}

	names, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	r.logger.Info("mongo indexes ensured", slog.Any("indexes", names))
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := newMongoUserDocument(user)

	if err := r.checkFree(ctx, models.FieldUsername, doc.Username, models.ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := r.checkFree(ctx, fieldEmailKey, doc.EmailKey, models.ErrEmailTaken); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, database.MapMongoError(err)
	}
	return doc.toUser(), nil
}

func (r *MongoUserRepository) checkFree(ctx context.Context, field, value string, taken error) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{field: value}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check uniqueness: %w", database.MapMongoError(err))
	}
	if n > 0 {
		return taken
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{models.FieldUsername: username})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{fieldEmailKey: normalizeEmail(email)})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoUserDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, database.MapMongoError(err)
	}
	return doc.toUser(), nil
}

func (r *MongoUserRepository) List(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := bson.M{}
	if filter.Interest != "" {
		query[models.FieldInterests] = filter.Interest // array membership
	}
	if filter.Location != "" {
		query[models.FieldLocation] = filter.Location
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, listError("query", err)
	}

	var docs []mongoUserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, listError("decode", err)
	}

	users := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

func listError(stage string, err error) error {
	return fmt.Errorf("failed to %s users: %w", stage, database.MapMongoError(err))
}

// UpdatePartial $sets the fields present in patch and returns the new record.
func (r *MongoUserRepository) UpdatePartial(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	for k, v := range patch.Fields() {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoUserDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, database.MapMongoError(err)
	}
	return doc.toUser(), nil
}

// Delete removes the user and returns the document as it was.
func (r *MongoUserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoUserDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, database.MapMongoError(err)
	}
	return doc.toUser(), nil
}

func (r *MongoUserRepository) ProjectedGet(ctx context.Context, id string, fields ...string) (map[string]any, error) {
	if err := validateProjection(fields); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	projection := bson.D{}
	for _, f := range fields {
		projection = append(projection, bson.E{Key: f, Value: 1})
	}

	var doc mongoUserDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(projection)).Decode(&doc)
	if err != nil {
		return nil, database.MapMongoError(err)
	}
	return projectUser(doc.toUser(), fields), nil
}
