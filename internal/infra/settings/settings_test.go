package settings

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestOpen_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "settings.yaml")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got := st.Get()
	want := Defaults()
	if got != want {
		t.Errorf("Get() = %+v, want defaults %+v", got, want)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file should exist after Open: %v", err)
	}
}

func TestOpen_LoadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "text_template: long\nimage_enabled: false\nrecipe_type: keto\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got := st.Get()
	if got.TextTemplate != TemplateLong {
		t.Errorf("TextTemplate = %q, want long", got.TextTemplate)
	}
	if got.ImageEnabled {
		t.Error("ImageEnabled should be false")
	}
	if got.RecipeType != RecipeTypeKeto {
		t.Errorf("RecipeType = %q, want keto", got.RecipeType)
	}
	// Fields absent from the file fall back to defaults.
	if got.ChannelName != Defaults().ChannelName {
		t.Errorf("ChannelName = %q, want default", got.ChannelName)
	}
}

func TestOpen_NormalizesUnknownValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "text_template: gigantic\nimage_model: sd15\nrecipe_type: vegan\ncustom_budget: -5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got := st.Get()
	def := Defaults()
	if got.TextTemplate != def.TextTemplate {
		t.Errorf("TextTemplate = %q, want %q", got.TextTemplate, def.TextTemplate)
	}
	if got.ImageModel != def.ImageModel {
		t.Errorf("ImageModel = %q, want %q", got.ImageModel, def.ImageModel)
	}
	if got.RecipeType != def.RecipeType {
		t.Errorf("RecipeType = %q, want %q", got.RecipeType, def.RecipeType)
	}
	if got.CustomBudget != def.CustomBudget {
		t.Errorf("CustomBudget = %d, want %d", got.CustomBudget, def.CustomBudget)
	}
}

func TestOpen_ClampsOversizedCustomBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "text_template: custom\ncustom_budget: 10000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// A budget above the Telegram message limit would render single parts
	// the transport refuses to send.
	got := st.Get()
	if got.CustomBudget != longBudget {
		t.Errorf("CustomBudget = %d, want clamped to %d", got.CustomBudget, longBudget)
	}
	if b := got.TemplateBudget(); b != longBudget {
		t.Errorf("TemplateBudget() = %d, want %d", b, longBudget)
	}
}

func TestOpen_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("text_template: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Open should fail on malformed YAML")
	}
}

func TestUpdate_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	updated, err := st.Update(func(s *Settings) {
		s.TextTemplate = TemplateLong
		s.ImageModel = ImageModelFlux
		s.ChannelLink = "https://t.me/utro"
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.TextTemplate != TemplateLong {
		t.Errorf("TextTemplate = %q, want long", updated.TextTemplate)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got := reopened.Get()
	if got.TextTemplate != TemplateLong || got.ImageModel != ImageModelFlux {
		t.Errorf("reopened settings = %+v, update not persisted", got)
	}
	if got.ChannelLink != "https://t.me/utro" {
		t.Errorf("ChannelLink = %q, want https://t.me/utro", got.ChannelLink)
	}
}

func TestUpdate_NormalizesValues(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got, err := st.Update(func(s *Settings) {
		s.TextTemplate = "bogus"
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.TextTemplate != Defaults().TextTemplate {
		t.Errorf("TextTemplate = %q, want default after normalize", got.TextTemplate)
	}
}

func TestUpdate_Concurrent(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Update(func(s *Settings) {
				s.CustomBudget++
			})
			_ = st.Get()
		}()
	}
	wg.Wait()

	if got := st.Get().CustomBudget; got != Defaults().CustomBudget+20 {
		t.Errorf("CustomBudget = %d, want %d", got, Defaults().CustomBudget+20)
	}
}

func TestTemplateBudget(t *testing.T) {
	tests := []struct {
		template string
		custom   int
		want     int
	}{
		{TemplateShort, 0, 800},
		{TemplateMedium, 0, 1024},
		{TemplateLong, 0, 4096},
		{TemplateCustom, 2500, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			s := Settings{TextTemplate: tt.template, CustomBudget: tt.custom}
			if got := s.TemplateBudget(); got != tt.want {
				t.Errorf("TemplateBudget() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShouldSplit(t *testing.T) {
	for _, template := range []string{TemplateShort, TemplateMedium, TemplateCustom} {
		if (Settings{TextTemplate: template}).ShouldSplit() {
			t.Errorf("template %q should not split", template)
		}
	}
	if !(Settings{TextTemplate: TemplateLong}).ShouldSplit() {
		t.Error("long template should split")
	}
}

func TestChannelSignature(t *testing.T) {
	s := Defaults()

	plain := s.ChannelSignature()
	if !strings.HasPrefix(plain, "\n\n") {
		t.Errorf("signature should start with a blank line, got %q", plain)
	}
	if !strings.Contains(plain, s.ChannelName) {
		t.Errorf("signature %q should contain channel name", plain)
	}

	s.ChannelLink = "https://t.me/utro"
	linked := s.ChannelSignature()
	if !strings.Contains(linked, `<a href="https://t.me/utro">`) {
		t.Errorf("linked signature = %q, want anchor tag", linked)
	}
}
