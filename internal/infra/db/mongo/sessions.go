package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/domain/session"
)

const updateAttempts = 3

// SessionRepository stores session snapshots. Writes are guarded by the
// snapshot version, so two replicas racing on one session never both win.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection("storefront_sessions")}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := r.col.InsertOne(ctx, s.Snapshot())
	if mongo.IsDuplicateKeyError(err) {
		return session.ErrSessionExists
	}
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	snap, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.FromSnapshot(snap), nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*session.Session) error) (*session.Session, error) {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		snap, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		s := session.FromSnapshot(snap)
		if err := fn(s); err != nil {
			return s, err
		}
		s.Version = snap.Version + 1
		res, err := r.col.ReplaceOne(ctx, bson.M{"_id": id, "version": snap.Version}, s.Snapshot())
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return s, nil
		}
	}
	return nil, session.ErrConcurrentUpdate
}

func (r *SessionRepository) load(ctx context.Context, id string) (session.Snapshot, error) {
	var snap session.Snapshot
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&snap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return session.Snapshot{}, session.ErrSessionNotFound
		}
		return session.Snapshot{}, err
	}
	return snap, nil
}

var _ session.Repository = (*SessionRepository)(nil)
