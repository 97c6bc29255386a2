// repositories/conversation_repository.go
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lawmate/lawmate_backend/config"
	"github.com/lawmate/lawmate_backend/models"
)

// ConversationRepository owns conversation documents. Every operation is
// filtered by the owning user id, so a conversation belonging to someone
// else is indistinguishable from one that does not exist.
type ConversationRepository interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
	Get(ctx context.Context, userID, id primitive.ObjectID) (*models.Conversation, error)
	Create(ctx context.Context, userID primitive.ObjectID, title string) (*models.Conversation, error)
	AppendMessage(ctx context.Context, userID, id primitive.ObjectID, message models.Message) (*models.Conversation, error)
	Rename(ctx context.Context, userID, id primitive.ObjectID, title string) (*models.Conversation, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// MongoConversationRepository implements ConversationRepository on MongoDB
type MongoConversationRepository struct {
	collection *mongo.Collection
}

// NewConversationRepository builds a Mongo-backed conversation repository
func NewConversationRepository(client *mongo.Client) *MongoConversationRepository {
	return &MongoConversationRepository{
		collection: config.GetCollection(client, "conversations"),
	}
}

func (r *MongoConversationRepository) List(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *MongoConversationRepository) Get(ctx context.Context, userID, id primitive.ObjectID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *MongoConversationRepository) Create(ctx context.Context, userID primitive.ObjectID, title string) (*models.Conversation, error) {
	if title == "" {
		title = models.DefaultConversationTitle
	}

	now := time.Now()
	conversation := models.Conversation{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// AppendMessage pushes to the tail of the message array and refreshes
// updatedAt in a single update, so concurrent appends to one conversation
// interleave instead of overwriting each other.
func (r *MongoConversationRepository) AppendMessage(ctx context.Context, userID, id primitive.ObjectID, message models.Message) (*models.Conversation, error) {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{
		"$push": bson.M{"messages": message},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var conversation models.Conversation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *MongoConversationRepository) Rename(ctx context.Context, userID, id primitive.ObjectID, title string) (*models.Conversation, error) {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{
		"$set": bson.M{"title": title, "updatedAt": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var conversation models.Conversation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *MongoConversationRepository) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
