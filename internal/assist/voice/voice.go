// Package voice reads generated answers aloud. At most one utterance
// plays at a time; a new request supersedes whatever is playing.
package voice

import (
	"regexp"
	"strings"
	"sync"
)

type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

type Utterance struct {
	ID    string
	Text  string
	Voice Voice
	Rate  float64
	Pitch float64
}

// Synthesizer is the platform TTS engine. Speak is non-blocking; the
// engine reports completion through Controller.Finished.
type Synthesizer interface {
	Voices() []Voice
	Speak(u Utterance) error
	Cancel()
}

type Config struct {
	Synth Synthesizer
	// PreferredName wins over language matching when that voice exists.
	PreferredName string
	LangPrefix    string
	Rate          float64
	Pitch         float64
}

type Controller struct {
	mu sync.Mutex

	synth         Synthesizer
	preferredName string
	langPrefix    string
	rate          float64
	pitch         float64

	speaking bool
	activeID string
	closed   bool
}

func New(cfg Config) *Controller {
	if cfg.LangPrefix == "" {
		cfg.LangPrefix = "en"
	}
	if cfg.Rate == 0 {
		cfg.Rate = 1.0
	}
	if cfg.Pitch == 0 {
		cfg.Pitch = 1.0
	}
	return &Controller{
		synth:         cfg.Synth,
		preferredName: cfg.PreferredName,
		langPrefix:    cfg.LangPrefix,
		rate:          cfg.Rate,
		pitch:         cfg.Pitch,
	}
}

// Speak sanitizes the text and plays it, canceling any active utterance
// first. Text that is empty after sanitizing is ignored.
func (c *Controller) Speak(id, text string) {
	clean := Sanitize(text)
	if clean == "" {
		return
	}

	c.mu.Lock()
	if c.closed || c.synth == nil {
		c.mu.Unlock()
		return
	}
	if c.speaking {
		c.synth.Cancel()
	}
	u := Utterance{
		ID:    id,
		Text:  clean,
		Voice: c.pickVoiceLocked(),
		Rate:  c.rate,
		Pitch: c.pitch,
	}
	if err := c.synth.Speak(u); err != nil {
		c.speaking = false
		c.activeID = ""
		c.mu.Unlock()
		return
	}
	c.speaking = true
	c.activeID = id
	c.mu.Unlock()
}

// Finished is the engine's completion callback. A stale ID from a
// superseded utterance does not clear the active one.
func (c *Controller) Finished(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.activeID {
		c.speaking = false
		c.activeID = ""
	}
}

func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking && c.synth != nil {
		c.synth.Cancel()
	}
	c.speaking = false
	c.activeID = ""
}

func (c *Controller) Speaking() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking, c.activeID
}

// Close stops playback and rejects further Speak calls.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking && c.synth != nil {
		c.synth.Cancel()
	}
	c.speaking = false
	c.activeID = ""
	c.closed = true
}

func (c *Controller) pickVoiceLocked() Voice {
	voices := c.synth.Voices()
	if c.preferredName != "" {
		for _, v := range voices {
			if v.Name == c.preferredName {
				return v
			}
		}
	}
	for _, v := range voices {
		if strings.HasPrefix(v.Lang, c.langPrefix) &&
			(strings.Contains(v.Name, "Natural") || strings.Contains(v.Name, "Premium")) {
			return v
		}
	}
	for _, v := range voices {
		if strings.HasPrefix(v.Lang, c.langPrefix) {
			return v
		}
	}
	// zero Voice lets the engine use its default
	return Voice{}
}

var (
	reFence        = regexp.MustCompile("(?s)```.*?```")
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment  = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInlineCode   = regexp.MustCompile("`([^`]*)`")
	reBold         = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reEmphasis     = regexp.MustCompile(`\*([^*\n]+)\*`)
	reHeading      = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	reBullet       = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	reParagraph    = regexp.MustCompile(`[ \t]*\n[ \t]*\n\s*`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// Sanitize strips markdown decoration and code fragments so the
// synthesizer does not read asterisks and backticks aloud. Paragraph
// breaks become sentence breaks so the voice pauses between them.
func Sanitize(text string) string {
	// paragraph pass runs on the raw text, before other replacements
	// leave stray blank lines behind
	s := reParagraph.ReplaceAllString(text, ". ")
	s = reFence.ReplaceAllString(s, " ")
	s = reBlockComment.ReplaceAllString(s, " ")
	s = reLineComment.ReplaceAllString(s, " ")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reBold.ReplaceAllString(s, "$1")
	s = reEmphasis.ReplaceAllString(s, "$1")
	s = reHeading.ReplaceAllString(s, "")
	s = reBullet.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
