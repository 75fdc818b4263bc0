package agent

import (
	"strings"
	"testing"

	"github.com/emberworks/dramatis/internal/dialogue"
)

func TestParseChronicleJSON(t *testing.T) {
	summary, err := parseChronicleJSON("```json\n{\"summary\": \" Bob denied everything. \"}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if summary != "Bob denied everything." {
		t.Fatalf("unexpected summary %q", summary)
	}

	if _, err := parseChronicleJSON(`{"summary": ""}`); err == nil {
		t.Fatal("empty summary should be rejected")
	}
	if _, err := parseChronicleJSON("no json here"); err == nil {
		t.Fatal("non-JSON output should be rejected")
	}
}

func TestFormatTranscriptSkipsSilentTurns(t *testing.T) {
	text := formatTranscript([]dialogue.TurnView{
		{Speaker: "Alice", Content: "I saw you.", Tone: "cold"},
		{Speaker: "Bob", Content: ""},
		{Speaker: "Bob", Content: "You saw nothing."},
	})
	if strings.Count(text, "\n") != 1 {
		t.Fatalf("expected two lines, got:\n%s", text)
	}
	if !strings.Contains(text, "Alice (cold): I saw you.") {
		t.Fatalf("unexpected transcript:\n%s", text)
	}
}
