// repositories/credential_repository.go
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

// PendingTTL is the hard lifetime of an unverified registration. The Mongo
// TTL index enforces it eventually; lookups apply the same cutoff so a
// record past its TTL is unreachable before the reaper runs.
const PendingTTL = 600 * time.Second

// CredentialRepository persists verified users, in-flight registrations and
// login challenges, all keyed by mobile number.
type CredentialRepository interface {
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	UpsertPending(ctx context.Context, pending models.PendingUser) error
	FindPendingByMobile(ctx context.Context, mobile string) (*models.PendingUser, error)
	// PromotePending deletes the pending record and creates the verified
	// user as one atomic step for the given mobile.
	PromotePending(ctx context.Context, mobile string) (*models.User, error)
	DeletePending(ctx context.Context, mobile string) error
	UpsertChallenge(ctx context.Context, challenge models.PhoneChallenge) error
	FindChallenge(ctx context.Context, mobile string) (*models.PhoneChallenge, error)
	DeleteChallenge(ctx context.Context, mobile string) error
}

// MongoCredentialRepository implements CredentialRepository on MongoDB
type MongoCredentialRepository struct {
	client     *mongo.Client
	users      *mongo.Collection
	pending    *mongo.Collection
	challenges *mongo.Collection
}

// NewCredentialRepository builds a Mongo-backed credential repository
func NewCredentialRepository(client *mongo.Client) *MongoCredentialRepository {
	return &MongoCredentialRepository{
		client:     client,
		users:      config.GetCollection(client, "users"),
		pending:    config.GetCollection(client, "pending_users"),
		challenges: config.GetCollection(client, "phone_challenges"),
	}
}

func (r *MongoCredentialRepository) FindByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertPending overwrites the staging record for a mobile, or inserts it.
// createdAt is only set on insert: resubmitting a registration refreshes the
// OTP but never extends the record's TTL.
func (r *MongoCredentialRepository) UpsertPending(ctx context.Context, pending models.PendingUser) error {
	filter := bson.M{"mobile": pending.Mobile}
	update := bson.M{
		"$set": bson.M{
			"name":       pending.Name,
			"address":    pending.Address,
			"otp":        pending.OTP,
			"otpExpires": pending.OTPExpires,
		},
		"$setOnInsert": bson.M{
			"createdAt": pending.CreatedAt,
		},
	}

	_, err := r.pending.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoCredentialRepository) FindPendingByMobile(ctx context.Context, mobile string) (*models.PendingUser, error) {
	var pending models.PendingUser
	err := r.pending.FindOne(ctx, bson.M{
		"mobile":    mobile,
		"createdAt": bson.M{"$gt": time.Now().Add(-PendingTTL)},
	}).Decode(&pending)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

// PromotePending runs the delete-pending/insert-user pair in a transaction
// so a crash can neither lose the registration nor duplicate it.
func (r *MongoCredentialRepository) PromotePending(ctx context.Context, mobile string) (*models.User, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var pending models.PendingUser
		err := r.pending.FindOne(sc, bson.M{
			"mobile":    mobile,
			"createdAt": bson.M{"$gt": time.Now().Add(-PendingTTL)},
		}).Decode(&pending)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, models.ErrNotFound
			}
			return nil, err
		}

		user := models.User{
			ID:         primitive.NewObjectID(),
			Mobile:     pending.Mobile,
			Name:       pending.Name,
			Address:    pending.Address,
			Role:       models.RoleUser,
			IsVerified: true,
			CreatedAt:  time.Now(),
		}

		if _, err := r.users.InsertOne(sc, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, models.ErrConflict
			}
			return nil, err
		}

		if _, err := r.pending.DeleteOne(sc, bson.M{"mobile": mobile}); err != nil {
			return nil, err
		}

		return &user, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.User), nil
}

func (r *MongoCredentialRepository) DeletePending(ctx context.Context, mobile string) error {
	_, err := r.pending.DeleteOne(ctx, bson.M{"mobile": mobile})
	return err
}

func (r *MongoCredentialRepository) UpsertChallenge(ctx context.Context, challenge models.PhoneChallenge) error {
	filter := bson.M{"mobile": challenge.Mobile}
	update := bson.M{
		"$set": bson.M{
			"otp":       challenge.OTP,
			"expiresAt": challenge.ExpiresAt,
			"createdAt": challenge.CreatedAt,
		},
	}

	_, err := r.challenges.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoCredentialRepository) FindChallenge(ctx context.Context, mobile string) (*models.PhoneChallenge, error) {
	var challenge models.PhoneChallenge
	err := r.challenges.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *MongoCredentialRepository) DeleteChallenge(ctx context.Context, mobile string) error {
	_, err := r.challenges.DeleteOne(ctx, bson.M{"mobile": mobile})
	return err
}
