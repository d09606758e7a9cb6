package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// UserRepository is the MongoDB CredentialStore. Email uniqueness is enforced
// by a unique index on the normalized email.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ ports.CredentialStore = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers), now: time.Now}
}

type mongoUser struct {
	ID               string                `bson:"_id"`
	Email            string                `bson:"email"`
	EmailNormalized  string                `bson:"email_normalized"`
	Name             string                `bson:"name"`
	Role             string                `bson:"role"`
	PhoneNumber      string                `bson:"phone_number,omitempty"`
	CredentialKind   domain.CredentialKind `bson:"credential_kind"`
	CredentialSecret string                `bson:"credential_secret"`
	CreatedAt        time.Time             `bson:"created_at"`
	UpdatedAt        time.Time             `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	kind, secret := domain.EncodeCredential(u.Credential)
	return mongoUser{
		ID:               u.ID,
		Email:            u.Email,
		EmailNormalized:  domain.NormalizeEmail(u.Email),
		Name:             u.Name,
		Role:             string(u.Role),
		PhoneNumber:      u.PhoneNumber,
		CredentialKind:   kind,
		CredentialSecret: secret,
		CreatedAt:        u.CreatedAt.UTC(),
		UpdatedAt:        u.UpdatedAt.UTC(),
	}
}

func (mu mongoUser) toDomain() (*domain.User, error) {
	credential, err := domain.DecodeCredential(mu.CredentialKind, mu.CredentialSecret)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", mu.ID, err)
	}
	return &domain.User{
		ID:          mu.ID,
		Email:       mu.Email,
		Name:        mu.Name,
		Role:        domain.Role(mu.Role),
		PhoneNumber: mu.PhoneNumber,
		Credential:  credential,
		CreatedAt:   mu.CreatedAt,
		UpdatedAt:   mu.UpdatedAt,
	}, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain()
}

func (r *UserRepository) FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email_normalized": domain.NormalizeEmail(email), "role": string(role)})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email_normalized": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toMongoUser(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateSecret(ctx context.Context, id string, credential domain.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	kind, secret := domain.EncodeCredential(credential)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"credential_kind":   kind,
		"credential_secret": secret,
		"updated_at":        r.now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update secret: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields domain.UserFields) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": r.now().UTC()}
	var probe domain.User
	fields.Apply(&probe)
	if fields.Email != nil {
		set["email"] = probe.Email
		set["email_normalized"] = domain.NormalizeEmail(probe.Email)
	}
	if fields.Name != nil {
		set["name"] = probe.Name
	}
	if fields.Role != nil {
		set["role"] = string(probe.Role)
	}
	if fields.PhoneNumber != nil {
		set["phone_number"] = probe.PhoneNumber
	}

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mu)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain()
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index and the role lookup index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email_normalized", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email_normalized", Value: 1}, {Key: "role", Value: 1}}},
	})
	return err
}
