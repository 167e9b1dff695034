package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notedrop/notes-api/internal/core/domain"
)

const collectionNotes = "notes"

type NoteRepository struct {
	col *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{col: db.Collection(collectionNotes)}
}

type noteDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Content   string              `bson:"content"`
	Code      string              `bson:"code"`
	Active    bool                `bson:"active"`
	CreatedAt time.Time           `bson:"createdAt"`
	ExpiresAt time.Time           `bson:"expiresAt"`
	CreatedBy *primitive.ObjectID `bson:"createdBy,omitempty"`
}

func (d *noteDoc) toDomain() *domain.Note {
	n := &domain.Note{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Code:      d.Code,
		Active:    d.Active,
		CreatedAt: d.CreatedAt.UTC(),
		ExpiresAt: d.ExpiresAt.UTC(),
	}
	if d.CreatedBy != nil {
		n.CreatedBy = d.CreatedBy.Hex()
	}
	return n
}

// Create inserts a new note document and fills in the assigned id. A
// duplicate on the unique code index maps to domain.ErrCodeTaken. A malformed
// CreatedBy is dropped rather than rejected: anonymous shares pass whatever
// the client sent.
func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := noteDoc{
		Content:   n.Content,
		Code:      n.Code,
		Active:    n.Active,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
	if n.CreatedBy != "" {
		if oid, err := primitive.ObjectIDFromHex(n.CreatedBy); err == nil {
			doc.CreatedBy = &oid
		} else {
			n.CreatedBy = ""
		}
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCodeTaken
		}
		return fmt.Errorf("insert note: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid.Hex()
	}
	return nil
}

// FindByCode retrieves a note by exact share-code match.
func (r *NoteRepository) FindByCode(ctx context.Context, code string) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc noteDoc
	err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note by code: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a note by its internal id.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidNoteID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc noteDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note by id: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns notes newest first, optionally scoped to an owner.
func (r *NoteRepository) List(ctx context.Context, createdBy string) ([]*domain.Note, error) {
	filter := bson.M{}
	if createdBy != "" {
		oid, err := primitive.ObjectIDFromHex(createdBy)
		if err != nil {
			return nil, domain.ErrInvalidUserID
		}
		filter["createdBy"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cur.Close(ctx)

	notes := make([]*domain.Note, 0)
	for cur.Next(ctx) {
		var doc noteDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode note: %w", err)
		}
		notes = append(notes, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// UpdateContent replaces the note's content in place.
func (r *NoteRepository) UpdateContent(ctx context.Context, id string, content string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidNoteID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"content": content}})
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// Delete removes the note document permanently.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidNoteID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// Deactivate flips active to false for the note with the given code. The
// filter includes active:true so a repeated flip matches nothing and writes
// nothing.
func (r *NoteRepository) Deactivate(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"code": code, "active": true},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return fmt.Errorf("deactivate note: %w", err)
	}
	return nil
}

// DeactivateExpired bulk-deactivates every active note created before
// now-NoteTTL, returning how many documents changed.
func (r *NoteRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cutoff := now.Add(-domain.NoteTTL)
	res, err := r.col.UpdateMany(ctx,
		bson.M{"active": true, "createdAt": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired notes: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the indexes the notes collection depends on. The
// unique index on code turns a write-write race on an identical candidate
// into a retriable duplicate-key error instead of silent data loss.
func (r *NoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
