package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID            string     `bson:"_id"`
	Email         string     `bson:"email"`
	Name          string     `bson:"name"`
	PasswordHash  string     `bson:"password_hash,omitempty"`
	Role          string     `bson:"role"`
	Status        string     `bson:"status"`
	Specialty     *string    `bson:"specialty"`
	LicenseNumber *string    `bson:"license_number"`
	Hospital      *string    `bson:"hospital"`
	CreatedAt     time.Time  `bson:"created_at"`
	LastLoginAt   *time.Time `bson:"last_login_at"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:            d.ID,
		Email:         d.Email,
		Name:          d.Name,
		Role:          domain.Role(d.Role),
		Status:        domain.Status(d.Status),
		Specialty:     d.Specialty,
		LicenseNumber: d.LicenseNumber,
		Hospital:      d.Hospital,
		CreatedAt:     d.CreatedAt.UTC(),
		LastLoginAt:   utcPtr(d.LastLoginAt),
	}
}

// withoutHash is applied to every read except FindCredentialsByEmail.
var withoutHash = bson.D{{Key: "password_hash", Value: 0}}

func (r *UserRepository) Create(ctx context.Context, u *domain.User, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		ID:            u.ID,
		Email:         domain.NormalizeEmail(u.Email),
		Name:          u.Name,
		PasswordHash:  passwordHash,
		Role:          string(u.Role),
		Status:        string(u.Status),
		Specialty:     u.Specialty,
		LicenseNumber: u.LicenseNumber,
		Hospital:      u.Hospital,
		CreatedAt:     u.CreatedAt.UTC(),
		LastLoginAt:   u.LastLoginAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return domain.NewPersistenceError("insert user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutHash)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewPersistenceError("find user", err)
	}
	return d.toDomain(), nil
}

func (r *UserRepository) FindCredentialsByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	err := r.col.FindOne(ctx, bson.M{"email": domain.NormalizeEmail(email)}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", domain.NewPersistenceError("find user by email", err)
	}
	return d.toDomain(), d.PasswordHash, nil
}

type userWithCountDoc struct {
	userDoc           `bson:",inline"`
	ConversationCount int64 `bson:"conversation_count"`
}

// List joins each account with the size of its conversation set.
func (r *UserRepository) List(ctx context.Context) ([]domain.UserWithStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionConversations},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "user_id"},
			{Key: "as", Value: "conversations"},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "conversation_count", Value: bson.D{{Key: "$size", Value: "$conversations"}}}}}},
		{{Key: "$project", Value: bson.D{{Key: "conversations", Value: 0}, {Key: "password_hash", Value: 0}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, domain.NewPersistenceError("list users", err)
	}
	defer cur.Close(ctx)

	var docs []userWithCountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.NewPersistenceError("decode users", err)
	}

	out := make([]domain.UserWithStats, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.UserWithStats{User: *d.toDomain(), ConversationCount: d.ConversationCount})
	}
	return out, nil
}

// Update applies the non-nil fields of upd and returns the stored result.
func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = domain.NormalizeEmail(*upd.Email)
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.Specialty.Set {
		set["specialty"] = upd.Specialty.Ptr()
	}
	if upd.LicenseNumber.Set {
		set["license_number"] = upd.LicenseNumber.Ptr()
	}
	if upd.Hospital.Set {
		set["hospital"] = upd.Hospital.Ptr()
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(withoutHash)
	var d userDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, domain.NewPersistenceError("update user", err)
	}
	return d.toDomain(), nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login_at": at.UTC()}})
	if err != nil {
		return domain.NewPersistenceError("touch last login", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return domain.NewPersistenceError("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, domain.NewPersistenceError("count users", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique email index that backs ErrDuplicateEmail.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
