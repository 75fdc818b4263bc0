package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/emberworks/dramatis/internal/memory"
)

// beatMemoryModel maps to the beat_memories table.
type beatMemoryModel struct {
	ID         int
	SceneTitle string
	BeatNumber int
	Summary    string
	// Participants is a JSONB array of agent names, used as a recall filter.
	Participants json.RawMessage `gorm:"type:jsonb"`
	// Embedding stores the summary vector for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (beatMemoryModel) TableName() string {
	return "beat_memories"
}

// BeatMemoryRepo accesses archived beat summaries. It satisfies
// memory.ArchiveRepo.
type BeatMemoryRepo struct {
	db *gorm.DB
}

func NewBeatMemoryRepo(db *gorm.DB) *BeatMemoryRepo {
	return &BeatMemoryRepo{db: db}
}

func (r *BeatMemoryRepo) AddBeatMemory(ctx context.Context, record memory.BeatRecord) error {
	var vector *pgvector.Vector
	if len(record.Embedding) > 0 {
		v := pgvector.NewVector(record.Embedding)
		vector = &v
	}
	participants, err := marshalJSON(record.Participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	row := beatMemoryModel{
		SceneTitle:   record.SceneTitle,
		BeatNumber:   record.BeatNumber,
		Summary:      record.Summary,
		Participants: participants,
		Embedding:    vector,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert beat memory: %w", err)
	}
	return nil
}

func (r *BeatMemoryRepo) SearchSimilar(ctx context.Context, participant string, embedding []float32, topK int, threshold float64) ([]memory.Echo, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	// Cosine similarity over beats the participant was present for.
	query := `
		SELECT scene_title, summary, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM beat_memories
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) > $2
		  AND participants @> jsonb_build_array($3::text)
		ORDER BY similarity DESC
		LIMIT $4`

	var rows []struct {
		SceneTitle string
		Summary    string
		CreatedAt  time.Time
		Similarity float64
	}
	if err := r.db.WithContext(ctx).
		Raw(query, pgvector.NewVector(embedding), threshold, participant, topK).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar beat memories: %w", err)
	}

	echoes := make([]memory.Echo, 0, len(rows))
	for _, row := range rows {
		echoes = append(echoes, memory.Echo{
			SceneTitle: row.SceneTitle,
			Summary:    row.Summary,
			Similarity: row.Similarity,
			When:       row.CreatedAt,
		})
	}
	return echoes, nil
}
