package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberworks/dramatis/internal/relationship"
)

// relationshipModel maps to the relationships table, one row per directed
// pair.
type relationshipModel struct {
	ID              int
	FromName        string `gorm:"column:from_name"`
	ToName          string `gorm:"column:to_name"`
	Status          string
	Trust           float64
	Affection       float64
	Label           string
	LastInteraction string
	// History and Gossip are bounded rings, stored as JSONB arrays.
	History   json.RawMessage `gorm:"type:jsonb"`
	Gossip    json.RawMessage `gorm:"type:jsonb"`
	DecayDays float64
	UpdatedAt time.Time
}

func (relationshipModel) TableName() string {
	return "relationships"
}

// RelationshipRepo accesses the persisted relationship matrix.
type RelationshipRepo struct {
	db *gorm.DB
}

func NewRelationshipRepo(db *gorm.DB) *RelationshipRepo {
	return &RelationshipRepo{db: db}
}

// SaveMatrix upserts every directed relationship of the matrix.
func (r *RelationshipRepo) SaveMatrix(ctx context.Context, snaps []relationship.Snapshot) error {
	for _, snap := range snaps {
		history, err := marshalJSON(snap.History)
		if err != nil {
			return fmt.Errorf("failed to encode history for %s -> %s: %w", snap.From, snap.To, err)
		}
		gossip, err := marshalJSON(snap.Gossip)
		if err != nil {
			return fmt.Errorf("failed to encode gossip for %s -> %s: %w", snap.From, snap.To, err)
		}

		record := relationshipModel{
			FromName:        snap.From,
			ToName:          snap.To,
			Status:          snap.Status,
			Trust:           snap.Trust,
			Affection:       snap.Affection,
			Label:           snap.Label,
			LastInteraction: snap.LastInteraction,
			History:         history,
			Gossip:          gossip,
			DecayDays:       snap.DecayDays,
		}
		err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "from_name"}, {Name: "to_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "trust", "affection", "label",
				"last_interaction", "history", "gossip", "decay_days", "updated_at",
			}),
		}).Create(&record).Error
		if err != nil {
			return fmt.Errorf("failed to upsert relationship %s -> %s: %w", snap.From, snap.To, err)
		}
	}
	return nil
}

// LoadMatrix reads the persisted snapshots for every pair within the roster.
// Agents never persisted simply come back Unknown when the matrix is rebuilt.
func (r *RelationshipRepo) LoadMatrix(ctx context.Context, roster []string) ([]relationship.Snapshot, error) {
	var records []relationshipModel
	if err := r.db.WithContext(ctx).
		Where("from_name IN ? AND to_name IN ?", roster, roster).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}

	snaps := make([]relationship.Snapshot, 0, len(records))
	for _, record := range records {
		var history, gossip []string
		if err := unmarshalJSON(record.History, &history); err != nil {
			return nil, fmt.Errorf("corrupt history for %s -> %s: %w", record.FromName, record.ToName, err)
		}
		if err := unmarshalJSON(record.Gossip, &gossip); err != nil {
			return nil, fmt.Errorf("corrupt gossip for %s -> %s: %w", record.FromName, record.ToName, err)
		}
		snaps = append(snaps, relationship.Snapshot{
			From:            record.FromName,
			To:              record.ToName,
			Status:          record.Status,
			Trust:           record.Trust,
			Affection:       record.Affection,
			Label:           record.Label,
			LastInteraction: record.LastInteraction,
			History:         history,
			Gossip:          gossip,
			DecayDays:       record.DecayDays,
		})
	}
	return snaps, nil
}
