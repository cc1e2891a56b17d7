package preview

import (
	"errors"
	"testing"
)

func TestRegistryDefine(t *testing.T) {
	reg := NewRegistry()
	if err := DefineCard(reg, newGatedFetcher(), NewRenderer()); err != nil {
		t.Fatalf("DefineCard() error = %v", err)
	}

	def, ok := reg.Lookup(Tag)
	if !ok {
		t.Fatalf("Lookup(%q) not found", Tag)
	}
	c := def.New()
	defer c.Close()
	if c.URL() != "" {
		t.Errorf("new card URL = %q, want empty", c.URL())
	}

	err := DefineCard(reg, newGatedFetcher(), NewRenderer())
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second DefineCard() error = %v, want ErrAlreadyRegistered", err)
	}
	if tags := reg.Tags(); len(tags) != 1 || tags[0] != Tag {
		t.Errorf("Tags() = %v", tags)
	}
}

func TestRegistryDefinitionOptions(t *testing.T) {
	g := newGatedFetcher()
	g.release("https://a.example")

	var hooked bool
	reg := NewRegistry()
	err := DefineCard(reg, g, NewRenderer(), WithSettleHook(func(Settlement) { hooked = true }))
	if err != nil {
		t.Fatal(err)
	}

	def, _ := reg.Lookup(Tag)
	c := def.New(WithURL("https://a.example"))
	defer c.Close()
	waitSettled(t, c)

	if !hooked {
		t.Error("base option was not applied to the created card")
	}
}

func TestRegistryInvalidTags(t *testing.T) {
	tests := []struct {
		tag   string
		valid bool
	}{
		{"link-preview-card", true},
		{"x-card2", true},
		{"", false},
		{"card", false},
		{"Link-card", false},
		{"1-card", false},
		{"link card-x", false},
	}

	for _, tt := range tests {
		reg := NewRegistry()
		err := reg.Define(Definition{
			Tag:      tt.tag,
			New:      func(...Option) *Card { return nil },
			Renderer: NewRenderer(),
		})
		if tt.valid && err != nil {
			t.Errorf("Define(%q) error = %v", tt.tag, err)
		}
		if !tt.valid && !errors.Is(err, ErrInvalidTag) {
			t.Errorf("Define(%q) error = %v, want ErrInvalidTag", tt.tag, err)
		}
	}
}

func TestRegistryIncompleteDefinition(t *testing.T) {
	if err := NewRegistry().Define(Definition{Tag: "x-card"}); err == nil {
		t.Error("Define() accepted a definition without constructor")
	}
}
