// Package main runs a scripted scene over the stock cast.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"sort"
	"syscall"

	"google.golang.org/genai"
	"gorm.io/gorm"

	internalagent "github.com/emberworks/dramatis/internal/agent"
	"github.com/emberworks/dramatis/internal/config"
	"github.com/emberworks/dramatis/internal/conversation"
	"github.com/emberworks/dramatis/internal/memory"
	"github.com/emberworks/dramatis/internal/models"
	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
	"github.com/emberworks/dramatis/internal/repository"
	"github.com/emberworks/dramatis/internal/scene"
	adkmodel "google.golang.org/adk/model"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := repository.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	embedder, err := memory.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("failed to create embedder service: %v", err)
	}
	archive := memory.NewArchive(embedder, store.Beats, cfg.TopK, cfg.SimilarityThreshold)

	llm, err := newChatModel(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create chat model: %v", err)
	}
	generator, err := internalagent.NewLLMGenerator(ctx, llm)
	if err != nil {
		log.Fatalf("failed to create dialogue generator: %v", err)
	}

	cast, err := loadCast(ctx, store)
	if err != nil {
		log.Fatalf("failed to load cast: %v", err)
	}

	director, err := scene.NewDirector(cast, generator, scene.Options{
		Limits: conversation.Limits{
			ForcedExitRound: cfg.ForcedExitRound,
			TurnsPerRound:   cfg.TurnsPerRound,
		},
		RecentTurnLimit: cfg.RecentTurnLimit,
		Personalities:   store.Agents,
		Relationships:   store.Relationships,
		Transcript:      store.Turns,
		Archive:         archive,
	})
	if err != nil {
		log.Fatalf("failed to create director: %v", err)
	}

	sc := missingGrainScene()
	results, err := director.RunScene(ctx, sc)
	if err != nil {
		log.Fatalf("scene failed: %v", err)
	}
	printResults(sc, results)
	printRelationships(cast)

	// A night passes before the next run of the binary.
	cast.PassTime(1)
	if err := store.Relationships.SaveMatrix(ctx, cast.Matrix.Snapshots()); err != nil {
		slog.Error("failed to persist decayed matrix", "error", err.Error())
	}
}

func newChatModel(ctx context.Context, cfg config.Config) (adkmodel.LLM, error) {
	clientConfig := &genai.ClientConfig{APIKey: cfg.XAIAPIKey}
	switch cfg.LLMProvider {
	case "openrouter":
		return models.NewOpenRouterModel(ctx, cfg.LLMModel, clientConfig)
	default:
		return models.NewGrokModel(ctx, cfg.LLMModel, clientConfig)
	}
}

// loadCast restores persisted personalities where they exist and falls back
// to the stock archetypes for the rest.
func loadCast(ctx context.Context, store *repository.Store) (*scene.Cast, error) {
	natures := personality.DefaultCast()
	names := make([]string, 0, len(natures))
	for name := range natures {
		names = append(names, name)
	}
	sort.Strings(names)

	states := make([]*personality.State, 0, len(names))
	for _, name := range names {
		snap, err := store.Agents.LoadPersonality(ctx, name)
		switch {
		case err == nil:
			states = append(states, personality.Restore(snap))
		case errors.Is(err, gorm.ErrRecordNotFound):
			states = append(states, personality.NewState(name, natures[name]))
		default:
			return nil, err
		}
	}

	cast, err := scene.NewCast(states)
	if err != nil {
		return nil, err
	}
	snaps, err := store.Relationships.LoadMatrix(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(snaps) > 0 {
		matrix, err := relationship.RestoreMatrix(names, snaps)
		if err != nil {
			return nil, err
		}
		cast.Matrix = matrix
	}
	return cast, nil
}

func missingGrainScene() scene.Scene {
	return scene.Scene{
		Title:   "The Missing Grain",
		Premise: "A sack of seed grain has vanished from the village storehouse the night before planting.",
		Stakes:  "Without the seed the village goes hungry next winter, and someone in this room knows where it went.",
		Beats: []scene.Beat{
			{
				Situation:    "The storehouse door stands open at dawn and the seed sack is gone.",
				Location:     "the storehouse",
				TimeOfDay:    "dawn",
				Participants: []string{"Alice", "Bob", "Charlie"},
				Complications: map[string]string{
					"Charlie": "saw Bob near the storehouse after midnight but owes Bob a debt",
				},
			},
			{
				Situation:    "That evening the three meet again at the well, the grain still missing.",
				Location:     "the village well",
				TimeOfDay:    "dusk",
				Participants: []string{"Alice", "Bob", "Charlie"},
				Complications: map[string]string{
					"Bob": "moved the grain to his cellar to resell it in the next town",
				},
			},
		},
	}
}

func printResults(sc scene.Scene, results []scene.BeatResult) {
	fmt.Printf("=== %s ===\n%s\n\n", sc.Title, sc.Premise)
	for _, result := range results {
		fmt.Printf("--- beat %d (%s) ---\n", result.BeatNumber, result.EndReason)
		for _, turn := range result.Turns {
			if turn.Skipped {
				fmt.Printf("[r%d] %s says nothing\n", turn.Round, turn.Speaker)
				continue
			}
			line := fmt.Sprintf("[r%d] %s", turn.Round, turn.Speaker)
			if turn.Interjection {
				line = fmt.Sprintf("[r%d] !! %s", turn.Round, turn.Speaker)
			}
			if turn.Tone != "" {
				line += fmt.Sprintf(" (%s)", turn.Tone)
			}
			fmt.Printf("%s: %s\n", line, turn.Content)
			if turn.Action != "" {
				fmt.Printf("      *%s*\n", turn.Action)
			}
		}
		for _, interjection := range result.Interjections {
			fmt.Printf("  (%s broke in: %s)\n", interjection.Observer, interjection.Reason)
		}
		if result.Summary != "" {
			fmt.Printf("summary: %s\n", result.Summary)
		}
		fmt.Println()
	}
}

func printRelationships(cast *scene.Cast) {
	fmt.Println("=== where they stand ===")
	for from, views := range cast.Matrix.Summary() {
		for to, view := range views {
			fmt.Printf("%s -> %s: %s (trust %.1f, affection %.1f)\n",
				from, to, view.Label, view.Trust, view.Affection)
		}
	}
	for _, asym := range cast.Matrix.DetectAsymmetries() {
		fmt.Printf("asymmetry %s/%s: trust gap %.1f, affection gap %.1f\n",
			asym.A, asym.B, asym.TrustGap, asym.AffectionGap)
	}
}
