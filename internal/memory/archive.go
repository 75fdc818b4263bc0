package memory

import (
	"context"
	"fmt"
	"time"
)

// BeatRecord is one archived beat summary.
type BeatRecord struct {
	SceneTitle   string
	BeatNumber   int
	Summary      string
	Participants []string
	Embedding    []float32
}

// Echo is a recalled beat summary with its similarity to the query.
type Echo struct {
	SceneTitle string
	Summary    string
	Similarity float64
	When       time.Time
}

// ArchiveRepo persists and searches beat records.
type ArchiveRepo interface {
	AddBeatMemory(ctx context.Context, record BeatRecord) error
	SearchSimilar(ctx context.Context, participant string, embedding []float32, topK int, threshold float64) ([]Echo, error)
}

// Archive turns beat summaries into vectors on the way in and situations into
// queries on the way out.
type Archive struct {
	embedder  Embedder
	repo      ArchiveRepo
	topK      int
	threshold float64
}

// NewArchive creates an archive. Non-positive topK and threshold fall back to
// 3 and 0.7.
func NewArchive(embedder Embedder, repo ArchiveRepo, topK int, threshold float64) *Archive {
	if topK <= 0 {
		topK = 3
	}
	if threshold <= 0 {
		threshold = 0.7
	}
	return &Archive{
		embedder:  embedder,
		repo:      repo,
		topK:      topK,
		threshold: threshold,
	}
}

// Record archives one finished beat.
func (a *Archive) Record(ctx context.Context, sceneTitle string, beatNumber int, summary string, participants []string) error {
	if summary == "" {
		return nil
	}
	if a.embedder == nil || a.repo == nil {
		return fmt.Errorf("archive not properly configured")
	}

	embedding, err := a.embedder.EmbedDocument(ctx, summary)
	if err != nil {
		return err
	}
	return a.repo.AddBeatMemory(ctx, BeatRecord{
		SceneTitle:   sceneTitle,
		BeatNumber:   beatNumber,
		Summary:      summary,
		Participants: participants,
		Embedding:    embedding,
	})
}

// Recall returns the summaries of past beats most similar to the situation,
// restricted to beats the participant was present for.
func (a *Archive) Recall(ctx context.Context, participant, situation string) ([]string, error) {
	if situation == "" {
		return nil, nil
	}
	if a.embedder == nil || a.repo == nil {
		return nil, fmt.Errorf("archive not properly configured")
	}

	vec, err := a.embedder.EmbedQuery(ctx, situation)
	if err != nil {
		return nil, err
	}
	echoes, err := a.repo.SearchSimilar(ctx, participant, vec, a.topK, a.threshold)
	if err != nil {
		return nil, err
	}
	summaries := make([]string, 0, len(echoes))
	for _, echo := range echoes {
		summaries = append(summaries, echo.Summary)
	}
	return summaries, nil
}
