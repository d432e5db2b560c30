package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sh16coder/Trackitstudy/internal"
)

type MongoStorage struct {
	client   *mongo.Client
	sessions *mongo.Collection
	profiles *mongo.Collection
	logger   internal.Logger
}

type mongoSession struct {
	ID            string    `bson:"_id"`
	OwnerID       string    `bson:"owner_id"`
	Subject       string    `bson:"subject"`
	DurationHours float64   `bson:"duration_hours"`
	Date          string    `bson:"date"`
	CreatedAt     time.Time `bson:"created_at"`
}

type mongoProfile struct {
	UserID      string    `bson:"_id"`
	DisplayName string    `bson:"display_name,omitempty"`
	ShareCode   string    `bson:"share_code,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func NewMongoStorage(uri string, logger internal.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Errorf("failed to connect to mongo: %v", err)
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Errorf("mongo is not reachable: %v", err)
		return nil, err
	}
	db := client.Database("trackitstudy")
	return &MongoStorage{
		client:   client,
		sessions: db.Collection("study_sessions"),
		profiles: db.Collection("profiles"),
		logger:   logger,
	}, nil
}

func (m *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// --- SessionRepository ---

func (m *MongoStorage) SaveSession(ctx context.Context, sess *internal.StudySession) error {
	doc := mongoSession{
		ID:            sess.ID,
		OwnerID:       sess.OwnerID,
		Subject:       sess.Subject,
		DurationHours: sess.DurationHours,
		Date:          sess.Date,
		CreatedAt:     sess.CreatedAt,
	}
	if _, err := m.sessions.InsertOne(ctx, doc); err != nil {
		m.logger.Errorf("failed to insert study session: %v", err)
		return err
	}
	return nil
}

func (m *MongoStorage) ListSessions(ctx context.Context, ownerID string, limit int) ([]internal.StudySession, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := m.sessions.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		m.logger.Errorf("failed to query study sessions: %v", err)
		return nil, err
	}
	defer cur.Close(ctx)

	sessions := []internal.StudySession{}
	for cur.Next(ctx) {
		var doc mongoSession
		if err := cur.Decode(&doc); err != nil {
			m.logger.Errorf("failed to decode study session: %v", err)
			return nil, err
		}
		sessions = append(sessions, internal.StudySession{
			ID:            doc.ID,
			OwnerID:       doc.OwnerID,
			Subject:       doc.Subject,
			DurationHours: doc.DurationHours,
			Date:          doc.Date,
			CreatedAt:     doc.CreatedAt,
		})
	}
	return sessions, cur.Err()
}

// --- ProfileRepository ---

func (m *MongoStorage) GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error) {
	var doc mongoProfile
	err := m.profiles.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		m.logger.Errorf("failed to load profile: %v", err)
		return nil, err
	}
	return profileFromDoc(doc), nil
}

// MergeProfile applies the patch without clobbering existing fields.
// The share code is written in a separate filtered update that only
// matches documents without one, so a concurrently written code wins.
func (m *MongoStorage) MergeProfile(ctx context.Context, userID string, patch internal.ProfilePatch) error {
	set := bson.M{}
	if patch.DisplayName != "" {
		set["display_name"] = patch.DisplayName
	}
	update := bson.M{"$setOnInsert": bson.M{"created_at": time.Now()}}
	if len(set) > 0 {
		update["$set"] = set
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.profiles.UpdateOne(ctx, bson.M{"_id": userID}, update, opts); err != nil {
		m.logger.Errorf("failed to merge profile: %v", err)
		return err
	}

	if patch.ShareCode != "" {
		filter := bson.M{"_id": userID, "share_code": bson.M{"$exists": false}}
		codeUpdate := bson.M{"$set": bson.M{"share_code": patch.ShareCode}}
		if _, err := m.profiles.UpdateOne(ctx, filter, codeUpdate); err != nil {
			m.logger.Errorf("failed to write share code: %v", err)
			return err
		}
	}
	return nil
}

func (m *MongoStorage) FindProfileByShareCode(ctx context.Context, code string) (*internal.UserProfile, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var doc mongoProfile
	err := m.profiles.FindOne(ctx, bson.M{"share_code": code}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		m.logger.Errorf("failed to resolve share code: %v", err)
		return nil, err
	}
	return profileFromDoc(doc), nil
}

func profileFromDoc(doc mongoProfile) *internal.UserProfile {
	return &internal.UserProfile{
		UserID:      doc.UserID,
		DisplayName: doc.DisplayName,
		ShareCode:   doc.ShareCode,
		CreatedAt:   doc.CreatedAt,
	}
}

// --- Compile-time assertions ---
var _ SessionRepository = (*MongoStorage)(nil)
var _ ProfileRepository = (*MongoStorage)(nil)
