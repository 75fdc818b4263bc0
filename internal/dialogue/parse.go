package dialogue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON trims model chatter around the first top-level JSON object.
func extractJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	return clean
}

// ParseTurnIntent decodes a turn response. An empty or missing "speaks" field
// is a valid silent turn, not an error.
func ParseTurnIntent(raw string) (TurnIntent, error) {
	var intent TurnIntent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &intent); err != nil {
		return TurnIntent{}, fmt.Errorf("failed to parse turn intent: %w", err)
	}
	intent.Content = strings.TrimSpace(intent.Content)
	intent.Tone = strings.ToLower(strings.TrimSpace(intent.Tone))
	intent.Target = strings.TrimSpace(intent.Target)
	return intent, nil
}

// ParseInterjectionIntent decodes an interjection response. A positive
// decision with no words is downgraded to silence.
func ParseInterjectionIntent(raw string) (InterjectionIntent, error) {
	var intent InterjectionIntent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &intent); err != nil {
		return InterjectionIntent{}, fmt.Errorf("failed to parse interjection intent: %w", err)
	}
	intent.Content = strings.TrimSpace(intent.Content)
	intent.Tone = strings.ToLower(strings.TrimSpace(intent.Tone))
	if intent.Content == "" {
		intent.WantsTo = false
	}
	return intent, nil
}

// ParseReflection decodes a beat-end reflection. Deltas for agents the caller
// does not recognize are the caller's problem; here only shape is validated.
func ParseReflection(raw string) (Reflection, error) {
	var reflection Reflection
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reflection); err != nil {
		return Reflection{}, fmt.Errorf("failed to parse reflection: %w", err)
	}
	for name, delta := range reflection.Relationships {
		delta.Memory = strings.TrimSpace(delta.Memory)
		reflection.Relationships[name] = delta
	}
	var gossip []GossipItem
	for _, item := range reflection.GossipWorthy {
		item.About = strings.TrimSpace(item.About)
		item.Text = strings.TrimSpace(item.Text)
		if item.About != "" && item.Text != "" {
			gossip = append(gossip, item)
		}
	}
	reflection.GossipWorthy = gossip
	return reflection, nil
}
