package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/emberworks/dramatis/internal/conversation"
)

// turnModel maps to the turns table, the full transcript across scenes.
type turnModel struct {
	ID           int
	SceneTitle   string
	BeatNumber   int
	Round        int
	Ordinal      int
	Speaker      string
	Content      string
	Tone         string
	Action       string
	Target       string
	Skipped      bool
	Interjection bool
	CreatedAt    time.Time
}

func (turnModel) TableName() string {
	return "turns"
}

// TurnRepo accesses the transcript.
type TurnRepo struct {
	db *gorm.DB
}

func NewTurnRepo(db *gorm.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// AppendBeat writes a finished beat's transcript in one batch.
func (r *TurnRepo) AppendBeat(ctx context.Context, sceneTitle string, beatNumber int, turns []conversation.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	records := make([]turnModel, 0, len(turns))
	for _, turn := range turns {
		records = append(records, turnModel{
			SceneTitle:   sceneTitle,
			BeatNumber:   beatNumber,
			Round:        turn.Round,
			Ordinal:      turn.Index,
			Speaker:      turn.Speaker,
			Content:      turn.Content,
			Tone:         turn.Tone,
			Action:       turn.Action,
			Target:       turn.Target,
			Skipped:      turn.Skipped,
			Interjection: turn.Interjection,
		})
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to insert turns: %w", err)
	}
	return nil
}

// TranscriptEntry is one printable transcript line.
type TranscriptEntry struct {
	BeatNumber   int
	Round        int
	Speaker      string
	Content      string
	Tone         string
	Action       string
	Skipped      bool
	Interjection bool
}

// SceneTranscript returns the full transcript for a scene, in order.
func (r *TurnRepo) SceneTranscript(ctx context.Context, sceneTitle string) ([]TranscriptEntry, error) {
	var records []turnModel
	if err := r.db.WithContext(ctx).
		Where("scene_title = ?", sceneTitle).
		Order("beat_number, id").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	entries := make([]TranscriptEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, TranscriptEntry{
			BeatNumber:   record.BeatNumber,
			Round:        record.Round,
			Speaker:      record.Speaker,
			Content:      record.Content,
			Tone:         record.Tone,
			Action:       record.Action,
			Skipped:      record.Skipped,
			Interjection: record.Interjection,
		})
	}
	return entries, nil
}
