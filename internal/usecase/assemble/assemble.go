// Package assemble builds the daily content artifact: greeting, holiday
// facts, recipe, and an optional image. Generation degrades through three
// tiers instead of failing: full generation, a simplified prompt, and
// finally a static template artifact. Assemble therefore never returns an
// error to its callers.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"morning-post/internal/domain/entity"
	"morning-post/internal/infra/holidays"
	"morning-post/internal/infra/imagegen"
	"morning-post/internal/infra/settings"
	"morning-post/internal/infra/textgen"
	"morning-post/internal/observability/metrics"
	"morning-post/internal/observability/tracing"
	"morning-post/pkg/guard"
)

// Guard service names for the external calls.
const (
	ServiceFacts      = "facts"
	ServiceTextModel  = "text-model"
	ServiceImageModel = "image-model"
)

// DefaultTierDelay is the pause between degrade tiers. Model failures are
// often transient congestion; a short wait gives the simplified attempt a
// real chance.
const DefaultTierDelay = 5 * time.Second

// Options adjusts one assembly run.
type Options struct {
	// Category selects the recipe style: "pp", "keto" or "mixed".
	// Empty means "pp". Mixed alternates by day of month.
	Category string

	// Hint is an optional operator instruction passed to the text model.
	Hint string

	// ForceImage requests an image even when image generation is
	// disabled in settings.
	ForceImage bool

	// CallerID attributes the run to an operator for per-caller rate
	// limiting. Empty for scheduled runs.
	CallerID string
}

// AssemblyFailed reports that every generation tier failed. The static
// tier cannot fail, so this error is not reachable through Assemble; it
// exists for tier accounting and tests.
type AssemblyFailed struct {
	Tiers []error
}

func (e *AssemblyFailed) Error() string {
	return fmt.Sprintf("all %d generation tiers failed, last: %v", len(e.Tiers), e.Tiers[len(e.Tiers)-1])
}

// Service assembles artifacts from the collaborator set.
type Service struct {
	facts   holidays.Source
	text    textgen.Generator
	image   imagegen.Generator
	guard   *guard.Registry
	logger  *slog.Logger
	current func() settings.Settings

	tierDelay  time.Duration
	retryDelay time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration)
}

// Option customizes a Service.
type Option func(*Service)

// WithTierDelay overrides the pause between degrade tiers.
func WithTierDelay(d time.Duration) Option {
	return func(s *Service) { s.tierDelay = d }
}

// WithRetryBaseDelay overrides the base backoff delay of guard-level
// retries. Tests use a near-zero value.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(s *Service) { s.retryDelay = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSleep overrides the inter-tier sleep. Tests pass a no-op.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(s *Service) { s.sleep = sleep }
}

// NewService creates an assembler.
//
// Parameters:
//   - facts: Holiday source, may be holidays.Noop
//   - text: Text generator
//   - image: Image generator, may be imagegen.Disabled
//   - reg: Resilience guard registry shared across the process
//   - current: Settings snapshot accessor (image toggle, recipe type)
//   - logger: Structured logger
func NewService(facts holidays.Source, text textgen.Generator, image imagegen.Generator, reg *guard.Registry, current func() settings.Settings, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		facts:     facts,
		text:      text,
		image:     image,
		guard:     reg,
		logger:    logger,
		current:   current,
		tierDelay: DefaultTierDelay,
		now:       time.Now,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
			}
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assemble builds an artifact for the date. It never returns a nil artifact
// with a nil error; the static fallback guarantees a usable result.
func (s *Service) Assemble(ctx context.Context, date time.Time, opts Options) (*entity.Artifact, error) {
	start := s.now()
	recipeType := s.recipeType(date, opts.Category)

	facts := s.collectFacts(ctx, date, opts)

	var tierErrs []error

	// Tier 1: full generation with facts and image.
	content, err := s.generateFull(ctx, date, facts, recipeType, opts)
	if err == nil {
		artifact := s.finish(ctx, content, facts, opts, false, true, start)
		return artifact, nil
	}
	tierErrs = append(tierErrs, err)
	s.logger.Warn("full generation failed, trying simplified prompt",
		slog.String("recipe_type", recipeType),
		slog.Any("error", err))
	s.sleep(ctx, s.tierDelay)

	// Tier 2: simplified prompt, no facts enrichment, no image.
	content, err = s.generateSimplified(ctx, date, recipeType, opts)
	if err == nil {
		metrics.RecordDegradedAssembly("simplified")
		artifact := s.finish(ctx, content, facts, opts, false, false, start)
		return artifact, nil
	}
	tierErrs = append(tierErrs, err)
	s.logger.Warn("simplified generation failed, using static template",
		slog.Any("error", err))
	s.sleep(ctx, s.tierDelay)

	// Tier 3: static template. Cannot fail.
	metrics.RecordDegradedAssembly("static")
	content = textgen.StaticContent(date)
	artifact := s.finish(ctx, content, facts, opts, true, false, start)

	s.logger.Info("assembly degraded to static content",
		slog.Int("failed_tiers", len(tierErrs)))
	return artifact, nil
}

// collectFacts fetches holidays for the date. Failures are logged and
// yield an empty list; facts are enrichment, not a prerequisite.
func (s *Service) collectFacts(ctx context.Context, date time.Time, opts Options) []entity.Holiday {
	stageStart := s.now()
	ctx, span := tracing.StartStage(ctx, "facts")

	// The holidays client retries internally, so one guard-level attempt
	// is enough.
	facts, err := guard.Execute(ctx, s.guard, ServiceFacts, guard.Policy{
		MaxRetries: 1,
		BaseDelay:  s.retryDelay,
		CallerID:   opts.CallerID,
	}, func(ctx context.Context) ([]entity.Holiday, error) {
		return s.facts.ForDate(ctx, date)
	})

	tracing.EndStage(span, err)
	metrics.RecordStageDuration("facts", s.now().Sub(stageStart))

	if err != nil {
		s.logger.Warn("holiday lookup failed, continuing without facts",
			slog.Any("error", err))
		return nil
	}

	s.logger.Info("holiday facts collected",
		slog.Int("count", len(facts)),
		slog.Duration("elapsed", s.now().Sub(stageStart)))
	return facts
}

func (s *Service) generateFull(ctx context.Context, date time.Time, facts []entity.Holiday, recipeType string, opts Options) (*textgen.Content, error) {
	stageStart := s.now()
	ctx, span := tracing.StartStage(ctx, "text")

	content, err := guard.Execute(ctx, s.guard, ServiceTextModel, guard.Policy{
		CallerID:  opts.CallerID,
		BaseDelay: s.retryDelay,
		Timeout:   90 * time.Second,
	}, func(ctx context.Context) (*textgen.Content, error) {
		return s.text.Generate(ctx, textgen.Request{
			Date:       date,
			Holidays:   facts,
			RecipeType: recipeType,
			Hint:       opts.Hint,
		})
	})

	tracing.EndStage(span, err)
	metrics.RecordStageDuration("text", s.now().Sub(stageStart))
	if err != nil {
		return nil, err
	}

	s.logger.Info("content generated",
		slog.String("recipe", content.Recipe.Name),
		slog.Duration("elapsed", s.now().Sub(stageStart)))
	return content, nil
}

func (s *Service) generateSimplified(ctx context.Context, date time.Time, recipeType string, opts Options) (*textgen.Content, error) {
	stageStart := s.now()
	ctx, span := tracing.StartStage(ctx, "text-simplified")

	content, err := guard.Execute(ctx, s.guard, ServiceTextModel, guard.Policy{
		CallerID:  opts.CallerID,
		BaseDelay: s.retryDelay,
		Timeout:   60 * time.Second,
	}, func(ctx context.Context) (*textgen.Content, error) {
		return s.text.GenerateSimplified(ctx, textgen.Request{
			Date:       date,
			RecipeType: recipeType,
			Hint:       opts.Hint,
		})
	})

	tracing.EndStage(span, err)
	metrics.RecordStageDuration("text", s.now().Sub(stageStart))
	return content, err
}

// generateImage produces image bytes for the recipe, or nil when skipped.
// Image failures never fail the assembly.
func (s *Service) generateImage(ctx context.Context, content *textgen.Content, opts Options) []byte {
	if !opts.ForceImage && s.current != nil && !s.current().ImageEnabled {
		s.logger.Info("image generation disabled, skipping")
		return nil
	}

	prompt := content.Recipe.ImagePrompt
	if prompt == "" {
		return nil
	}

	stageStart := s.now()
	ctx, span := tracing.StartStage(ctx, "image")

	img, err := guard.Execute(ctx, s.guard, ServiceImageModel, guard.Policy{
		CallerID:  opts.CallerID,
		BaseDelay: s.retryDelay,
		Timeout:   150 * time.Second,
	}, func(ctx context.Context) ([]byte, error) {
		return s.image.Generate(ctx, prompt)
	})

	tracing.EndStage(span, err)
	metrics.RecordStageDuration("image", s.now().Sub(stageStart))

	if err != nil {
		s.logger.Warn("image generation failed, posting without image",
			slog.Any("error", err))
		return nil
	}
	if img == nil {
		s.logger.Info("image generation skipped by provider")
	}
	return img
}

// finish builds the artifact from generated content. An invalid content
// payload is patched from the static template rather than surfaced; by the
// time finish runs, the degrade decision has already been made. Only the
// full-generation tier requests an image.
func (s *Service) finish(ctx context.Context, content *textgen.Content, facts []entity.Holiday, opts Options, degraded, withImage bool, start time.Time) *entity.Artifact {
	holidaysOut := content.Holidays
	if len(holidaysOut) == 0 {
		holidaysOut = facts
	}

	artifact := &entity.Artifact{
		Greeting:    content.Greeting,
		Holidays:    holidaysOut,
		Recipe:      content.Recipe,
		Degraded:    degraded,
		GeneratedAt: s.now(),
	}

	if err := artifact.Validate(); err != nil {
		s.logger.Warn("generated artifact invalid, patching from static template",
			slog.Any("error", err))
		static := textgen.StaticContent(artifact.GeneratedAt)
		if artifact.Greeting == "" {
			artifact.Greeting = static.Greeting
		}
		if artifact.Recipe.Name == "" || len(artifact.Recipe.Steps) == 0 {
			artifact.Recipe = static.Recipe
			artifact.Degraded = true
		}
	}

	if withImage {
		artifact.ImageBytes = s.generateImage(ctx, content, opts)
	}

	s.logger.Info("artifact assembled",
		slog.String("recipe", artifact.Recipe.Name),
		slog.Bool("degraded", artifact.Degraded),
		slog.Bool("has_image", artifact.HasImage()),
		slog.Duration("elapsed", s.now().Sub(start)))
	return artifact
}

// recipeType maps a settings-level category onto the prompt vocabulary.
// Mixed alternates: keto on even days of the month, PP on odd ones.
func (s *Service) recipeType(date time.Time, category string) string {
	if category == "" && s.current != nil {
		category = s.current().RecipeType
	}
	switch category {
	case settings.RecipeTypeKeto:
		return textgen.RecipeTypeKeto
	case settings.RecipeTypeMixed:
		if date.Day()%2 == 0 {
			return textgen.RecipeTypeKeto
		}
		return textgen.RecipeTypePP
	default:
		return textgen.RecipeTypePP
	}
}
