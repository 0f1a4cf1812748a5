// Package settings provides file-backed operator settings for the bot.
// Settings survive restarts; everything else in the process is in-memory.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Template kinds controlling how a post is rendered.
const (
	// TemplateShort always produces a single post that fits a photo caption.
	TemplateShort = "short"

	// TemplateMedium produces a single post, truncated to the caption limit
	// when needed.
	TemplateMedium = "medium"

	// TemplateLong allows splitting into multiple messages.
	TemplateLong = "long"

	// TemplateCustom uses the operator-defined length budget.
	TemplateCustom = "custom"
)

// Image model identifiers.
const (
	ImageModelDALLE = "dalle3"
	ImageModelFlux  = "flux"
)

// Recipe type identifiers. Mixed alternates between the two.
const (
	RecipeTypePP    = "pp"
	RecipeTypeKeto  = "keto"
	RecipeTypeMixed = "mixed"
)

// Per-template character budgets.
const (
	shortBudget  = 800
	mediumBudget = 1024
	longBudget   = 4096
)

// Settings holds the operator-adjustable knobs.
type Settings struct {
	// TextTemplate selects the rendering template kind.
	TextTemplate string `yaml:"text_template"`

	// CustomBudget is the character budget used by the custom template.
	CustomBudget int `yaml:"custom_budget"`

	// ImageEnabled toggles image generation for posts.
	ImageEnabled bool `yaml:"image_enabled"`

	// ImageModel selects the image generation backend.
	ImageModel string `yaml:"image_model"`

	// RecipeType selects the recipe style for generated content.
	RecipeType string `yaml:"recipe_type"`

	// ChannelName and ChannelEmoji form the post signature.
	ChannelName  string `yaml:"channel_name"`
	ChannelEmoji string `yaml:"channel_emoji"`

	// ChannelLink, when set, turns the signature into a hyperlink.
	ChannelLink string `yaml:"channel_link"`

	// PostTime is the daily posting time in "HH:MM" form, informational
	// for the operator; the actual schedule comes from worker config.
	PostTime string `yaml:"post_time"`
}

// Defaults returns the settings used when no file exists yet.
func Defaults() Settings {
	return Settings{
		TextTemplate: TemplateMedium,
		CustomBudget: longBudget,
		ImageEnabled: true,
		ImageModel:   ImageModelDALLE,
		RecipeType:   RecipeTypePP,
		ChannelName:  "Utro | ПП рецепты",
		ChannelEmoji: "🍽",
		PostTime:     "08:00",
	}
}

// normalize replaces empty or unknown values with defaults so that a
// hand-edited file cannot put the bot into an unusable state.
func (s *Settings) normalize() {
	def := Defaults()

	switch s.TextTemplate {
	case TemplateShort, TemplateMedium, TemplateLong, TemplateCustom:
	default:
		s.TextTemplate = def.TextTemplate
	}

	switch s.ImageModel {
	case ImageModelDALLE, ImageModelFlux:
	default:
		s.ImageModel = def.ImageModel
	}

	switch s.RecipeType {
	case RecipeTypePP, RecipeTypeKeto, RecipeTypeMixed:
	default:
		s.RecipeType = def.RecipeType
	}

	if s.CustomBudget <= 0 {
		s.CustomBudget = def.CustomBudget
	}
	// Telegram rejects messages over 4096 runes; a larger custom budget
	// would produce parts the transport cannot deliver.
	if s.CustomBudget > longBudget {
		s.CustomBudget = longBudget
	}
	if s.ChannelName == "" {
		s.ChannelName = def.ChannelName
	}
	if s.ChannelEmoji == "" {
		s.ChannelEmoji = def.ChannelEmoji
	}
	if s.PostTime == "" {
		s.PostTime = def.PostTime
	}
}

// TemplateBudget returns the character budget for the selected template.
func (s Settings) TemplateBudget() int {
	switch s.TextTemplate {
	case TemplateShort:
		return shortBudget
	case TemplateMedium:
		return mediumBudget
	case TemplateLong:
		return longBudget
	case TemplateCustom:
		return s.CustomBudget
	default:
		return mediumBudget
	}
}

// ShouldSplit reports whether posts may be split into multiple messages.
// Only the long template splits.
func (s Settings) ShouldSplit() bool {
	return s.TextTemplate == TemplateLong
}

// ChannelSignature returns the signature appended to every post,
// e.g. "\n\n🍽 Utro | ПП рецепты" or a hyperlinked variant.
func (s Settings) ChannelSignature() string {
	if s.ChannelLink != "" {
		return fmt.Sprintf("\n\n%s <a href=%q>%s</a>", s.ChannelEmoji, s.ChannelLink, s.ChannelName)
	}
	return fmt.Sprintf("\n\n%s %s", s.ChannelEmoji, s.ChannelName)
}

// Store owns the settings file and serializes access to it.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// Open loads settings from path, creating the file with defaults when it
// does not exist.
func Open(path string) (*Store, error) {
	st := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var loaded Settings
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
		loaded.normalize()
		st.current = loaded
	case os.IsNotExist(err):
		st.current = Defaults()
		if err := st.save(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}

	return st, nil
}

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update applies fn to the settings under the lock and persists the result.
// The values are normalized after fn runs, so an update cannot store an
// unknown template or model.
func (st *Store) Update(fn func(*Settings)) (Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.current
	fn(&next)
	next.normalize()

	st.current = next
	if err := st.save(); err != nil {
		return Settings{}, err
	}
	return st.current, nil
}

// save writes the settings atomically: to a temp file in the same
// directory, then rename over the target.
func (st *Store) save() error {
	data, err := yaml.Marshal(st.current)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp settings file: %w", err)
	}

	if err := os.Rename(tmpName, st.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
