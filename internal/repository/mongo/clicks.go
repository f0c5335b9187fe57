package mongo

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	CollectionClickRecords = "click_records"

	// maxUpsertAttempts bounds retries after losing a concurrent first insert.
	maxUpsertAttempts = 3
)

// ClickStore keeps one document per launch and applies every event as a
// single conditional update, so concurrent writers never read-modify-write.
type ClickStore struct {
	coll *mongo.Collection
	log  *zap.Logger
}

var _ repository.ClickStore = (*ClickStore)(nil)

func NewClickStore(db *mongo.Database, log *zap.Logger) *ClickStore {
	return &ClickStore{
		coll: db.Collection(CollectionClickRecords),
		log:  log,
	}
}

// EnsureIndexes creates the unique launchId index.
func (s *ClickStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "launchId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("launchId_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create click record index: %w", err)
	}
	return nil
}

func (s *ClickStore) RecordEvent(ctx context.Context, launchID int64, sessionID string, clickType domain.ClickType, now time.Time) (bool, error) {
	day := domain.DayKey(now)
	allField, dailyField := fieldsFor(clickType)

	session := domain.TrackedSession{SessionID: sessionID, Date: day, Type: clickType}
	notTracked := bson.M{"$not": bson.M{"$elemMatch": bson.M{"sessionId": sessionID, "date": day, "type": clickType}}}
	pushSession := bson.M{"$each": bson.A{session}, "$slice": -domain.MaxTrackedSessions}

	for attempt := 1; attempt <= maxUpsertAttempts; attempt++ {
		// Today's bucket already exists: bump it in place.
		res, err := s.coll.UpdateOne(ctx,
			bson.M{
				"launchId":           launchID,
				dailyField + ".date": day,
				"trackedSessions":    notTracked,
			},
			bson.M{
				"$inc":  bson.M{allField: 1, dailyField + ".$.clicks": 1},
				"$push": bson.M{"trackedSessions": pushSession},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			return false, s.fail(launchID, clickType, err)
		}
		if res.MatchedCount == 1 {
			return true, nil
		}

		// No bucket for today yet, or no document at all.
		res, err = s.coll.UpdateOne(ctx,
			bson.M{
				"launchId":           launchID,
				dailyField + ".date": bson.M{"$ne": day},
				"trackedSessions":    notTracked,
			},
			bson.M{
				"$inc": bson.M{allField: 1},
				"$push": bson.M{
					dailyField: bson.M{
						"$each":  bson.A{domain.DailyCount{Date: day, Clicks: 1}},
						"$slice": -domain.MaxDailyBuckets,
					},
					"trackedSessions": pushSession,
				},
				"$set": bson.M{"updatedAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return res.MatchedCount == 1 || res.UpsertedCount == 1, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return false, s.fail(launchID, clickType, err)
		}

		// The document exists but neither filter matched: either the session
		// is already tracked or another writer created today's bucket.
		tracked, err := s.isTracked(ctx, launchID, session)
		if err != nil {
			return false, s.fail(launchID, clickType, err)
		}
		if tracked {
			return false, nil
		}
	}

	return false, s.fail(launchID, clickType, errors.New("too many concurrent updates"))
}

func (s *ClickStore) GetClickRecord(ctx context.Context, launchID int64) (*domain.ClickRecord, error) {
	var record domain.ClickRecord

	err := s.coll.FindOne(ctx, bson.M{"launchId": launchID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("failed to get click record", zap.Int64("launch_id", launchID), zap.Error(err))
		return nil, fmt.Errorf("failed to get click record: %w", err)
	}

	return &record, nil
}

func (s *ClickStore) GetClickRecords(ctx context.Context, launchIDs []int64) (map[int64]*domain.ClickRecord, error) {
	out := make(map[int64]*domain.ClickRecord, len(launchIDs))
	if len(launchIDs) == 0 {
		return out, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"launchId": bson.M{"$in": launchIDs}})
	if err != nil {
		s.log.Error("failed to query click records", zap.Int("count", len(launchIDs)), zap.Error(err))
		return nil, fmt.Errorf("failed to get click records: %w", err)
	}

	var records []*domain.ClickRecord
	if err := cursor.All(ctx, &records); err != nil {
		s.log.Error("failed to decode click records", zap.Error(err))
		return nil, fmt.Errorf("failed to decode click records: %w", err)
	}

	for _, record := range records {
		out[record.LaunchID] = record
	}
	return out, nil
}

func (s *ClickStore) isTracked(ctx context.Context, launchID int64, session domain.TrackedSession) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"launchId": launchID,
		"trackedSessions": bson.M{"$elemMatch": bson.M{
			"sessionId": session.SessionID,
			"date":      session.Date,
			"type":      session.Type,
		}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ClickStore) fail(launchID int64, clickType domain.ClickType, err error) error {
	s.log.Error("failed to record click event",
		zap.Int64("launch_id", launchID),
		zap.String("type", string(clickType)),
		zap.Error(err))
	return fmt.Errorf("failed to record click: %w", err)
}

func fieldsFor(t domain.ClickType) (string, string) {
	if t == domain.ClickTypeOutbound {
		return "all_time_outbound", "daily_outbound_clicks"
	}
	return "all_time", "daily_clicks"
}
