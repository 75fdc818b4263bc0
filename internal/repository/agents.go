package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/emberworks/dramatis/internal/personality"
)

// agentModel maps to the agents table. Personality snapshots are versioned:
// every save writes a new row, loads read the newest.
type agentModel struct {
	ID      int
	Name    string
	Version int
	// Snapshot holds the full personality export as JSONB.
	Snapshot  json.RawMessage `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (agentModel) TableName() string {
	return "agents"
}

// AgentRepo accesses personality snapshots.
type AgentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) *AgentRepo {
	return &AgentRepo{db: db}
}

// SavePersonality appends a new snapshot version for the agent.
func (r *AgentRepo) SavePersonality(ctx context.Context, snapshot personality.Snapshot) error {
	if snapshot.Name == "" {
		return fmt.Errorf("snapshot has no agent name")
	}
	raw, err := marshalJSON(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode personality snapshot: %w", err)
	}

	var latest agentModel
	version := 1
	err = r.db.WithContext(ctx).
		Where("name = ?", snapshot.Name).
		Order("version DESC").
		First(&latest).Error
	switch {
	case err == nil:
		version = latest.Version + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	record := agentModel{
		Name:     snapshot.Name,
		Version:  version,
		Snapshot: raw,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert personality snapshot: %w", err)
	}
	return nil
}

// LoadPersonality returns the newest snapshot for the agent, or
// gorm.ErrRecordNotFound if none was ever saved.
func (r *AgentRepo) LoadPersonality(ctx context.Context, name string) (personality.Snapshot, error) {
	var record agentModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("version DESC").
		First(&record).Error; err != nil {
		return personality.Snapshot{}, fmt.Errorf("failed to load personality for %s: %w", name, err)
	}

	var snapshot personality.Snapshot
	if err := unmarshalJSON(record.Snapshot, &snapshot); err != nil {
		return personality.Snapshot{}, fmt.Errorf("corrupt personality snapshot for %s: %w", name, err)
	}
	if snapshot.Name == "" {
		return personality.Snapshot{}, fmt.Errorf("corrupt personality snapshot for %s: empty payload", name)
	}
	return snapshot, nil
}

// ListNames returns every agent with at least one saved snapshot.
func (r *AgentRepo) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&agentModel{}).
		Distinct("name").
		Order("name").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return names, nil
}
