package models

// AI model identifiers accepted by the generation endpoints.
const (
	ModelGPT       = "gpt-5.2"
	ModelClaude    = "claude-sonnet-4.5"
	ModelGemini    = "gemini-3-flash"
	DefaultAIModel = ModelGPT
)

// Answer tones.
const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneTechnical    = "technical"
)

// Settings is a singleton document (id "default") with the user's defaults.
type Settings struct {
	ID                  string  `bson:"id" json:"id"`
	DefaultAIModel      string  `bson:"default_ai_model" json:"default_ai_model"`
	DefaultTone         string  `bson:"default_tone" json:"default_tone"`
	DefaultDomain       string  `bson:"default_domain" json:"default_domain"`
	StealthOpacity      float64 `bson:"stealth_opacity" json:"stealth_opacity"`
	AutoCopy            bool    `bson:"auto_copy" json:"auto_copy"`
	HighAccuracyCapture bool    `bson:"high_accuracy_capture" json:"high_accuracy_capture"`
}

func DefaultSettings() Settings {
	return Settings{
		ID:             "default",
		DefaultAIModel: DefaultAIModel,
		DefaultTone:    ToneProfessional,
		DefaultDomain:  DomainGeneral,
		StealthOpacity: 0.1,
		AutoCopy:       true,
	}
}
