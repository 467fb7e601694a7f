package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewUserDocument_KeepsEmailAndNormalizesLists(t *testing.T) {
	doc := newUserDocument(&models.User{Username: "jdoe", Email: "Jane@Example.COM"})

	assert.Equal(t, "Jane@Example.COM", doc.Email)
	assert.Equal(t, "jane@example.com", normalizeEmail(doc.Email))
	assert.Equal(t, []string{}, doc.Interests)
	assert.Equal(t, []string{}, doc.EventParticipationList)
}

func TestValidateProjection(t *testing.T) {
	assert.NoError(t, validateProjection(models.GroupFields))
	assert.ErrorIs(t, validateProjection(nil), models.ErrBadRequest)
	assert.ErrorIs(t, validateProjection([]string{models.FieldPasswordHash}), models.ErrBadRequest)
	assert.ErrorIs(t, validateProjection([]string{"friends", "_id"}), models.ErrBadRequest)
}

func TestProjectUser(t *testing.T) {
	age := 40
	u := &models.User{
		Username: "jdoe",
		Age:      &age,
		Friends:  []string{"u2"},
	}

	got := projectUser(u, []string{models.FieldFriends, models.FieldGroupMemberList, models.FieldAge})

	assert.Equal(t, map[string]any{
		models.FieldFriends:         []string{"u2"},
		models.FieldGroupMemberList: []string{},
		models.FieldAge:             &age,
	}, got)
}

func TestMongoUserDocument_RoundTrip(t *testing.T) {
	age := 22
	in := &models.User{
		Username:     "jdoe",
		Email:        "Jane@Example.com",
		PasswordHash: "hash",
		Interests:    []string{"Music"},
		Age:          &age,
	}
	doc := newMongoUserDocument(in)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	raw, err := bson.Marshal(doc)
	assert.NoError(t, err)

	var decoded mongoUserDocument
	assert.NoError(t, bson.Unmarshal(raw, &decoded))

	assert.Equal(t, "jane@example.com", decoded.EmailKey)

	out := decoded.toUser()
	assert.Equal(t, doc.ID.Hex(), out.ID)
	assert.Equal(t, "Jane@Example.com", out.Email)
	assert.Equal(t, 22, *out.Age)
	assert.Equal(t, []string{"Music"}, out.Interests)
	assert.Equal(t, []string{}, out.Friends)
	assert.True(t, doc.CreatedAt.Equal(out.CreatedAt))
}

func TestMongoUserDocument_FieldNamesMatchModel(t *testing.T) {
	raw, err := bson.Marshal(newMongoUserDocument(&models.User{}))
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(raw, &m))
	for field := range models.ProjectableFields {
		assert.Contains(t, m, field)
	}
	assert.Contains(t, m, models.FieldPasswordHash)
}

func TestListError_MapsDriverErrors(t *testing.T) {
	err := listError("query", fmt.Errorf("cursor: %w", mongo.ErrNoDocuments))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to query users")

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error index: users_username_key"}}}
	assert.ErrorIs(t, listError("decode", dup), models.ErrUsernameTaken)
}
