package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"morning-post/internal/domain/entity"
	"morning-post/internal/infra/transport"
	"morning-post/internal/observability/metrics"
	"morning-post/internal/usecase/assemble"
)

// State of a pending post in the publish lifecycle.
type State string

const (
	StateDraft        State = "draft"
	StatePublishing   State = "publishing"
	StateEditing      State = "editing"
	StateRegenerating State = "regenerating"
	StatePublished    State = "published"
	StateCancelled    State = "cancelled"
)

// transitions is the legal state transition table. Published and Cancelled
// are terminal; their records are removed, so they never appear as a
// source state in practice.
var transitions = map[State][]State{
	StateDraft:        {StatePublishing, StateEditing, StateRegenerating, StateCancelled},
	StatePublishing:   {StatePublished, StateDraft},
	StateEditing:      {StateDraft},
	StateRegenerating: {StateDraft},
}

// DefaultPartPause is the pause between multi-part deliveries, matching the
// transport's per-chat pacing.
const DefaultPartPause = 500 * time.Millisecond

// Assembler regenerates artifacts for pending posts.
type Assembler interface {
	Assemble(ctx context.Context, date time.Time, opts assemble.Options) (*entity.Artifact, error)
}

// TemplateSource supplies the current render template.
type TemplateSource func() Template

// Coordinator drives pending posts through their lifecycle: publish,
// regenerate, edit, cancel. State is tracked per id under a mutex separate
// from the store's.
type Coordinator struct {
	store     *Store
	transport transport.Transport
	assembler Assembler
	template  TemplateSource
	target    string
	partPause time.Duration
	logger    *slog.Logger

	stateMu sync.Mutex
	states  map[string]State
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPartPause overrides the pause between multi-part deliveries.
func WithPartPause(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.partPause = d }
}

// NewCoordinator creates a coordinator publishing to target.
//
// Parameters:
//   - store: Pending post store
//   - tr: Message transport
//   - asm: Assembler used by Regenerate; may be nil if regeneration is unused
//   - template: Current render template accessor
//   - target: Chat or channel identifier
//   - logger: Structured logger
func NewCoordinator(store *Store, tr transport.Transport, asm Assembler, template TemplateSource, target string, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:     store,
		transport: tr,
		assembler: asm,
		template:  template,
		target:    target,
		partPause: DefaultPartPause,
		logger:    logger,
		states:    make(map[string]State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create renders and splits an artifact, stores it as a Draft pending post,
// and returns a copy.
func (c *Coordinator) Create(artifact *entity.Artifact) (*entity.PendingPost, error) {
	tpl := c.template()
	text := Render(artifact, tpl)

	stored := artifact.Clone()
	stored.RenderedText = text

	parts := []string{text}
	if tpl.Kind == KindLong && utf8.RuneCountInString(text) > transport.CaptionLimit {
		parts = Split(text, tpl.budget())
	}

	p, err := c.store.Create(stored, parts)
	if err != nil {
		return nil, err
	}

	c.setState(p.ID, StateDraft)
	c.logger.Info("pending post created",
		slog.String("post_id", p.ID),
		slog.Int("parts", len(p.Parts)),
		slog.Bool("has_image", p.Artifact.HasImage()))
	return p, nil
}

// Get returns a copy of a pending post.
func (c *Coordinator) Get(id string) (*entity.PendingPost, error) {
	return c.store.Get(id)
}

// Publish delivers the pending post to the channel. Parts are delivered
// strictly in order with the image attached to the first message only. On
// success the record is removed; on failure it stays in Draft and a
// DeliveryError naming the failed part is returned.
func (c *Coordinator) Publish(ctx context.Context, id string) error {
	p, err := c.store.Get(id)
	if err != nil {
		return err
	}
	if err := c.transition(id, StatePublishing); err != nil {
		return err
	}

	start := time.Now()
	if err := c.deliver(ctx, p); err != nil {
		// The record survives a failed delivery so the operator can retry.
		c.setState(id, StateDraft)
		metrics.RecordDeliveryError(deliveryKind(p))
		c.logger.Error("publish failed, post kept for retry",
			slog.String("post_id", id),
			slog.Any("error", err))
		return err
	}

	c.setState(id, StatePublished)
	metrics.RecordTransition(string(StatePublished))
	metrics.RecordPostPublished(deliveryKind(p), len(p.Parts), time.Since(start))

	if err := c.store.Delete(id); err != nil {
		return err
	}
	c.forget(id)

	c.logger.Info("post published",
		slog.String("post_id", id),
		slog.Int("parts", len(p.Parts)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// deliver sends all parts of the post in order.
func (c *Coordinator) deliver(ctx context.Context, p *entity.PendingPost) error {
	img := p.Artifact.ImageBytes

	for i, part := range p.Parts {
		var err error
		if i == 0 && len(img) > 0 {
			_, err = c.transport.SendPhoto(ctx, c.target, img, capRunes(part, transport.CaptionLimit))
		} else {
			_, err = c.transport.SendText(ctx, c.target, part)
		}
		if err != nil {
			return &DeliveryError{ID: p.ID, PartIndex: i, Err: err}
		}

		if i < len(p.Parts)-1 {
			select {
			case <-time.After(c.partPause):
			case <-ctx.Done():
				return &DeliveryError{ID: p.ID, PartIndex: i + 1, Err: ctx.Err()}
			}
		}
	}
	return nil
}

// Regenerate assembles a fresh artifact and replaces the pending post in
// place at the same id, so operator-held references stay valid.
func (c *Coordinator) Regenerate(ctx context.Context, id string, opts assemble.Options) error {
	if c.assembler == nil {
		return fmt.Errorf("no assembler configured")
	}
	if _, err := c.store.Get(id); err != nil {
		return err
	}
	if err := c.transition(id, StateRegenerating); err != nil {
		return err
	}
	defer c.setState(id, StateDraft)

	artifact, err := c.assembler.Assemble(ctx, time.Now(), opts)
	if err != nil {
		return err
	}

	tpl := c.template()
	text := Render(artifact, tpl)
	artifact = artifact.Clone()
	artifact.RenderedText = text

	parts := []string{text}
	if tpl.Kind == KindLong && utf8.RuneCountInString(text) > transport.CaptionLimit {
		parts = Split(text, tpl.budget())
	}

	if err := c.store.Replace(id, artifact, parts); err != nil {
		return err
	}

	metrics.RecordTransition(string(StateRegenerating))
	c.logger.Info("pending post regenerated",
		slog.String("post_id", id),
		slog.String("recipe", artifact.Recipe.Name))
	return nil
}

// Edit replaces the text of one part with operator-provided content.
func (c *Coordinator) Edit(id string, partIndex int, newText string) error {
	if _, err := c.store.Get(id); err != nil {
		return err
	}
	if err := c.transition(id, StateEditing); err != nil {
		return err
	}
	defer c.setState(id, StateDraft)

	if err := c.store.ReplaceText(id, partIndex, newText); err != nil {
		return err
	}

	metrics.RecordTransition(string(StateEditing))
	c.logger.Info("pending post edited",
		slog.String("post_id", id),
		slog.Int("part", partIndex))
	return nil
}

// Cancel removes a pending post without delivering it.
func (c *Coordinator) Cancel(id string) error {
	if _, err := c.store.Get(id); err != nil {
		return err
	}
	if err := c.transition(id, StateCancelled); err != nil {
		return err
	}

	if err := c.store.Delete(id); err != nil {
		return err
	}
	c.forget(id)

	metrics.RecordTransition(string(StateCancelled))
	c.logger.Info("pending post cancelled", slog.String("post_id", id))
	return nil
}

// Preview formats the operator preview: a header, the display text capped
// to the caption limit when an image is attached, and part/image info.
func (c *Coordinator) Preview(id string) (string, error) {
	p, err := c.store.Get(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📝 <b>Предпросмотр поста:</b>\n\n")
	if p.Artifact.HasImage() {
		b.WriteString(capRunes(p.DisplayText(), transport.CaptionLimit))
	} else {
		b.WriteString(p.DisplayText())
	}

	b.WriteString(fmt.Sprintf("\n\n— частей: %d", len(p.Parts)))
	if p.Artifact.HasImage() {
		b.WriteString(" | с картинкой")
	}
	if p.Artifact.Degraded {
		b.WriteString(" | резервный шаблон")
	}
	return b.String(), nil
}

// State returns the lifecycle state of a pending post id. Ids without an
// explicit entry are Drafts.
func (c *Coordinator) State(id string) State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if s, ok := c.states[id]; ok {
		return s
	}
	return StateDraft
}

// transition moves id to the next state, enforcing the transition table.
func (c *Coordinator) transition(id string, to State) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	from, ok := c.states[id]
	if !ok {
		from = StateDraft
	}

	for _, allowed := range transitions[from] {
		if allowed == to {
			c.states[id] = to
			return nil
		}
	}
	return &TransitionError{ID: id, From: from, To: to}
}

func (c *Coordinator) setState(id string, s State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.states[id] = s
}

func (c *Coordinator) forget(id string) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	delete(c.states, id)
}

// deliveryKind labels a publish for metrics.
func deliveryKind(p *entity.PendingPost) string {
	switch {
	case p.IsMultiPart:
		return "multipart"
	case p.Artifact.HasImage():
		return "photo"
	default:
		return "text"
	}
}
