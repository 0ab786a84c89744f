package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"refcontest/entity"
	"refcontest/internal/config"
	"refcontest/internal/contest"
	"refcontest/lib/sl"
)

const (
	collectionParticipants = "participants"
	collectionEdges        = "referral_edges"
	collectionState        = "contest_state"
	collectionCounters     = "counters"
	stateID                = "contest"
)

// MongoDB keeps the contest in MongoDB. Atomically needs a replica set for transactions.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	log      *slog.Logger
}

func NewMongoClient(ctx context.Context, conf config.MongoConfig, log *slog.Logger) (*MongoDB, error) {
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Host, conf.Port)
	return ConnectMongo(ctx, connectionUri, conf, log)
}

// ConnectMongo connects with an explicit URI; user and database still come from conf.
func ConnectMongo(ctx context.Context, uri string, conf config.MongoConfig, log *slog.Logger) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)
	if conf.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.User,
			Password:   conf.Password,
			AuthSource: conf.Database,
		})
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	m := &MongoDB{
		client:   client,
		database: client.Database(conf.Database),
		log:      log.With(sl.Module("database.mongo")),
	}
	if err = m.init(ctx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// init creates the leaderboard index and seeds the state document.
func (m *MongoDB) init(ctx context.Context) error {
	_, err := m.database.Collection(collectionParticipants).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "referral_count", Value: -1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create rank index: %w", err)
	}
	// the counter document exists before the first transaction increments it
	_, err = m.database.Collection(collectionCounters).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: collectionParticipants}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "seq", Value: int64(0)}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("seed participant counter: %w", err)
	}
	_, err = m.database.Collection(collectionEdges).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "referrer_user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create referrer index: %w", err)
	}
	filter := bson.D{{Key: "_id", Value: stateID}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "status", Value: entity.StatusActive}}}}
	_, err = m.database.Collection(collectionState).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("seed contest state: %w", err)
	}
	return nil
}

func (m *MongoDB) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		m.log.Warn("disconnect", sl.Err(err))
	}
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find: %w", err)
}

// Atomically runs fn in a multi-document transaction; the driver may retry fn on transient errors.
func (m *MongoDB) Atomically(ctx context.Context, fn func(ctx context.Context, tx contest.Tx) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, m)
	})
	return err
}

// nextSeq draws the next value of a named counter. Inside a transaction two writers
// conflict on the counter document, so values follow commit order.
func (m *MongoDB) nextSeq(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.database.Collection(collectionCounters).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s seq: %w", name, err)
	}
	return counter.Seq, nil
}

// UpsertParticipant inserts on first sight only; an upsert keeps duplicate-key errors
// from aborting the surrounding transaction.
func (m *MongoDB) UpsertParticipant(ctx context.Context, p *entity.Participant) (bool, error) {
	existing, err := m.GetParticipant(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	seq, err := m.nextSeq(ctx, collectionParticipants)
	if err != nil {
		return false, err
	}
	collection := m.database.Collection(collectionParticipants)
	filter := bson.D{{Key: "_id", Value: p.UserID}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "display_name", Value: p.DisplayName},
		{Key: "handle", Value: p.Handle},
		{Key: "referral_count", Value: 0},
		{Key: "joined_at", Value: p.JoinedAt.UTC()},
		{Key: "seq", Value: seq},
	}}}
	res, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert participant: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (m *MongoDB) GetParticipant(ctx context.Context, userID int64) (*entity.Participant, error) {
	collection := m.database.Collection(collectionParticipants)
	var p entity.Participant
	err := collection.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&p)
	if err != nil {
		return nil, m.findError(err)
	}
	return &p, nil
}

func (m *MongoDB) IncrementReferrals(ctx context.Context, userID int64) (int, error) {
	collection := m.database.Collection(collectionParticipants)
	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "referral_count", Value: 1}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p entity.Participant
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("increment referrals: participant %d not found", userID)
		}
		return 0, fmt.Errorf("increment referrals: %w", err)
	}
	return p.ReferralCount, nil
}

func (m *MongoDB) AttributeReferral(ctx context.Context, edge *entity.ReferralEdge) (bool, error) {
	if edge.ReferredUserID == edge.ReferrerUserID {
		return false, nil
	}
	collection := m.database.Collection(collectionEdges)
	filter := bson.D{{Key: "_id", Value: edge.ReferredUserID}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "referrer_user_id", Value: edge.ReferrerUserID},
		{Key: "created_at", Value: edge.CreatedAt.UTC()},
	}}}
	res, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("insert referral edge: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (m *MongoDB) ReferrerOf(ctx context.Context, referredID int64) (int64, error) {
	collection := m.database.Collection(collectionEdges)
	var edge entity.ReferralEdge
	err := collection.FindOne(ctx, bson.D{{Key: "_id", Value: referredID}}).Decode(&edge)
	if err != nil {
		return 0, m.findError(err)
	}
	return edge.ReferrerUserID, nil
}

func (m *MongoDB) TopParticipants(ctx context.Context, n int) ([]*entity.Participant, error) {
	collection := m.database.Collection(collectionParticipants)
	opts := options.Find().
		SetSort(bson.D{{Key: "referral_count", Value: -1}, {Key: "seq", Value: 1}}).
		SetLimit(int64(n))
	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find top: %w", err)
	}
	defer cursor.Close(ctx)

	participants := make([]*entity.Participant, 0, n)
	if err = cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("decode top: %w", err)
	}
	return participants, nil
}

func (m *MongoDB) RankOf(ctx context.Context, userID int64) (int, error) {
	p, err := m.GetParticipant(ctx, userID)
	if err != nil || p == nil {
		return 0, err
	}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "referral_count", Value: bson.D{{Key: "$gt", Value: p.ReferralCount}}}},
		bson.D{{Key: "referral_count", Value: p.ReferralCount}, {Key: "seq", Value: bson.D{{Key: "$lt", Value: p.Seq}}}},
	}}}
	ahead, err := m.database.Collection(collectionParticipants).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count ahead: %w", err)
	}
	return int(ahead) + 1, nil
}

func (m *MongoDB) CountParticipants(ctx context.Context) (int, error) {
	n, err := m.database.Collection(collectionParticipants).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return int(n), nil
}

func (m *MongoDB) LoadState(ctx context.Context) (*entity.ContestState, error) {
	var state entity.ContestState
	err := m.database.Collection(collectionState).FindOne(ctx, bson.D{{Key: "_id", Value: stateID}}).Decode(&state)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &state, nil
}

func (m *MongoDB) CompareAndEnd(ctx context.Context, at time.Time) (bool, error) {
	filter := bson.D{{Key: "_id", Value: stateID}, {Key: "status", Value: entity.StatusActive}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: entity.StatusEnded},
		{Key: "ended_at", Value: at.UTC()},
	}}}
	res, err := m.database.Collection(collectionState).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("end contest: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
