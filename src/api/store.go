package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound reports an unknown username.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists reports a username collision on Create.
	ErrAlreadyExists = errors.New("username already exists")
)

// UserRecord is one persisted account with its cumulative match stats.
type UserRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Kills        int                `bson:"kill_count" json:"killCount"`
	Deaths       int                `bson:"death_count" json:"deathCount"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// UserStore is the user-record collaborator of the game server. All
// operations are keyed by username and eventually consistent with the
// in-memory session counters.
type UserStore interface {
	Get(ctx context.Context, username string) (*UserRecord, error)
	Create(ctx context.Context, username, secret string) error
	Verify(ctx context.Context, username, secret string) (bool, error)
	IncrementKills(ctx context.Context, username string) error
	IncrementDeaths(ctx context.Context, username string) error
	SetStats(ctx context.Context, username string, kills, deaths int) error
	TopKillers(ctx context.Context, limit int) ([]UserRecord, error)
}

// MongoStore persists user records in a Mongo collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *DB) *MongoStore {
	col := db.Collection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Index creation failures after the first run are harmless.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &MongoStore{col: col}
}

func (s *MongoStore) Get(ctx context.Context, username string) (*UserRecord, error) {
	var rec UserRecord
	if err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) Create(ctx context.Context, username, secret string) error {
	pwHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	rec := UserRecord{
		Username:     username,
		PasswordHash: string(pwHash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if _, err := s.col.InsertOne(ctx, rec); err != nil {
		var we mongo.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return ErrAlreadyExists
				}
			}
		}
		return err
	}
	return nil
}

func (s *MongoStore) Verify(ctx context.Context, username, secret string) (bool, error) {
	rec, err := s.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(secret)) == nil, nil
}

func (s *MongoStore) IncrementKills(ctx context.Context, username string) error {
	return s.increment(ctx, username, "kill_count")
}

func (s *MongoStore) IncrementDeaths(ctx context.Context, username string) error {
	return s.increment(ctx, username, "death_count")
}

func (s *MongoStore) increment(ctx context.Context, username, field string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// SetStats flushes session counters for a registered username. Unknown
// usernames match nothing and flush nowhere; guests stay session-only.
func (s *MongoStore) SetStats(ctx context.Context, username string, kills, deaths int) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"username": username}, bson.M{
		"$set": bson.M{"kill_count": kills, "death_count": deaths, "updated_at": time.Now()},
	})
	return err
}

func (s *MongoStore) TopKillers(ctx context.Context, limit int) ([]UserRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "kill_count", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []UserRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MemoryStore is the non-persistent deployment mode: same contract, process
// lifetime only. The game degrades to pure in-session stat tracking.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*UserRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*UserRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, username string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) Create(ctx context.Context, username, secret string) error {
	pwHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrAlreadyExists
	}
	s.users[username] = &UserRecord{
		Username:     username,
		PasswordHash: string(pwHash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return nil
}

func (s *MemoryStore) Verify(ctx context.Context, username, secret string) (bool, error) {
	s.mu.RLock()
	rec, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(secret)) == nil, nil
}

func (s *MemoryStore) IncrementKills(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[username]; ok {
		rec.Kills++
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) IncrementDeaths(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[username]; ok {
		rec.Deaths++
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) SetStats(ctx context.Context, username string, kills, deaths int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[username]; ok {
		rec.Kills = kills
		rec.Deaths = deaths
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) TopKillers(ctx context.Context, limit int) ([]UserRecord, error) {
	s.mu.RLock()
	items := make([]UserRecord, 0, len(s.users))
	for _, rec := range s.users {
		items = append(items, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Kills != items[j].Kills {
			return items[i].Kills > items[j].Kills
		}
		return items[i].Username < items[j].Username
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
