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

const (
	collectionConversations = "conversations"
	collectionMessages      = "messages"
)

// ConversationRepository implements ports.ConversationRepository. Messages
// live in their own collection and carry the owner's user_id so cascades
// and ownership filters never need a join.
type ConversationRepository struct {
	convs *mongo.Collection
	msgs  *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{
		convs: db.Collection(collectionConversations),
		msgs:  db.Collection(collectionMessages),
	}
}

type conversationDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d conversationDoc) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type messageDoc struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversation_id"`
	UserID         string    `bson:"user_id"`
	Role           string    `bson:"role"`
	Content        string    `bson:"content"`
	Images         []string  `bson:"images,omitempty"`
	Timestamp      time.Time `bson:"timestamp"`
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := conversationDoc{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
	if _, err := r.convs.InsertOne(ctx, doc); err != nil {
		return domain.NewPersistenceError("insert conversation", err)
	}
	return nil
}

type conversationWithCountDoc struct {
	conversationDoc `bson:",inline"`
	MessageCount    int64 `bson:"message_count"`
}

func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: ownerID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionMessages},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "conversation_id"},
			{Key: "as", Value: "messages"},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "message_count", Value: bson.D{{Key: "$size", Value: "$messages"}}}}}},
		{{Key: "$project", Value: bson.D{{Key: "messages", Value: 0}}}},
	}

	cur, err := r.convs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, domain.NewPersistenceError("list conversations", err)
	}
	defer cur.Close(ctx)

	var docs []conversationWithCountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.NewPersistenceError("decode conversations", err)
	}

	out := make([]domain.ConversationSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ConversationSummary{Conversation: d.toDomain(), MessageCount: d.MessageCount})
	}
	return out, nil
}

func (r *ConversationRepository) FindOwned(ctx context.Context, ownerID, id string) (*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d conversationDoc
	err := r.convs.FindOne(ctx, bson.M{"_id": id, "user_id": ownerID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, domain.NewPersistenceError("find conversation", err)
	}
	c := d.toDomain()
	return &c, nil
}

// Messages sorts by timestamp and then by id; ids are time-ordered so ties
// keep insertion order.
func (r *ConversationRepository) Messages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.msgs.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, domain.NewPersistenceError("list messages", err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.NewPersistenceError("decode messages", err)
	}

	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Message{
			ID:             d.ID,
			ConversationID: d.ConversationID,
			Role:           domain.MessageRole(d.Role),
			Content:        d.Content,
			Images:         d.Images,
			Timestamp:      d.Timestamp.UTC(),
		})
	}
	return out, nil
}

func (r *ConversationRepository) Rename(ctx context.Context, ownerID, id, title string, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.convs.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": ownerID},
		bson.M{"$set": bson.M{"title": title, "updated_at": at.UTC()}},
	)
	if err != nil {
		return 0, domain.NewPersistenceError("rename conversation", err)
	}
	return res.MatchedCount, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.convs.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return 0, domain.NewPersistenceError("delete conversation", err)
	}
	if res.DeletedCount == 0 {
		return 0, nil
	}
	if _, err := r.msgs.DeleteMany(ctx, bson.M{"conversation_id": id, "user_id": ownerID}); err != nil {
		return res.DeletedCount, domain.NewPersistenceError("delete conversation messages", err)
	}
	return res.DeletedCount, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, ownerID string, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owned := bson.M{"_id": m.ConversationID, "user_id": ownerID}
	n, err := r.convs.CountDocuments(ctx, owned)
	if err != nil {
		return domain.NewPersistenceError("find conversation", err)
	}
	if n == 0 {
		return domain.ErrConversationNotFound
	}

	doc := messageDoc{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		UserID:         ownerID,
		Role:           string(m.Role),
		Content:        m.Content,
		Images:         m.Images,
		Timestamp:      m.Timestamp.UTC(),
	}
	if _, err := r.msgs.InsertOne(ctx, doc); err != nil {
		return domain.NewPersistenceError("insert message", err)
	}
	if _, err := r.convs.UpdateOne(ctx, owned, bson.M{"$max": bson.M{"updated_at": m.Timestamp.UTC()}}); err != nil {
		return domain.NewPersistenceError("touch conversation", err)
	}
	return nil
}

func (r *ConversationRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.convs.CountDocuments(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return 0, domain.NewPersistenceError("count conversations", err)
	}
	return n, nil
}

// DeleteByOwner removes messages before conversations so a partial failure
// never leaves messages without a parent.
func (r *ConversationRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.msgs.DeleteMany(ctx, bson.M{"user_id": ownerID}); err != nil {
		return domain.NewPersistenceError("delete owner messages", err)
	}
	if _, err := r.convs.DeleteMany(ctx, bson.M{"user_id": ownerID}); err != nil {
		return domain.NewPersistenceError("delete owner conversations", err)
	}
	return nil
}

func (r *ConversationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.convs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	}); err != nil {
		return err
	}
	_, err := r.msgs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	return err
}
