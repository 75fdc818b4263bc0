package dialogue

import "google.golang.org/genai"

// TurnOutputSchema constrains turn responses to the intent shape.
func TurnOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"speaks": {
				Type:        genai.TypeString,
				Description: "What the character says out loud. Empty means they stay silent.",
			},
			"tone": {
				Type: genai.TypeString,
			},
			"does": {
				Type:        genai.TypeString,
				Description: "A short physical action, if any.",
			},
			"target": {
				Type:        genai.TypeString,
				Description: "Name of the participant being directly addressed, if any.",
			},
			"emotional_state": {
				Type: genai.TypeString,
			},
			"wants_exit": {
				Type: genai.TypeBoolean,
			},
		},
		Required: []string{"speaks", "tone"},
	}
}

// InterjectionOutputSchema constrains interjection responses.
func InterjectionOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"wants_to_interject": {
				Type: genai.TypeBoolean,
			},
			"speaks": {
				Type: genai.TypeString,
			},
			"tone": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"wants_to_interject"},
	}
}

// ReflectionOutputSchema constrains beat-end reflection responses.
func ReflectionOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"relationships": {
				Type:        genai.TypeObject,
				Description: "Per-participant adjustments keyed by name.",
			},
			"gossip_worthy": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"about": {Type: genai.TypeString},
						"text":  {Type: genai.TypeString},
					},
					Required: []string{"about", "text"},
				},
			},
			"emotional_state": {
				Type: genai.TypeString,
			},
			"confidence_delta": {
				Type: genai.TypeInteger,
			},
		},
		Required: []string{"relationships"},
	}
}
