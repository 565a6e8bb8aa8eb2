package registry

import (
	"testing"

	"github.com/spf13/cobra"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "kontrakt"}
	root.AddCommand(
		&cobra.Command{Use: "compile", Short: "Compile contracts", Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "migrate", Aliases: []string{"deploy"}, Short: "Run migrations", Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "console", Short: "Interactive console", Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "console-child", Hidden: true, Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "secret", Hidden: true, Run: func(*cobra.Command, []string) {}},
	)
	return root
}

func TestRegistry_Lookup(t *testing.T) {
	r := New(testRoot())

	tests := []struct {
		name      string
		text      string
		noAliases bool
		want      string
	}{
		{"name", "compile", false, "compile"},
		{"name with args", "compile --all", false, "compile"},
		{"leading space", "   migrate --reset", false, "migrate"},
		{"alias", "deploy", false, "migrate"},
		{"alias disabled", "deploy", true, ""},
		{"name with aliases disabled", "migrate", true, "migrate"},
		{"excluded", "console", false, ""},
		{"hidden", "secret", false, ""},
		{"child", "console-child", false, ""},
		{"expression", "1 + 1", false, ""},
		{"empty", "", false, ""},
		{"prefix only", "comp", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Lookup(tt.text, tt.noAliases)
			if tt.want == "" {
				if got != nil {
					t.Errorf("Lookup(%q) = %q, want nil", tt.text, got.Name)
				}
				return
			}
			if got == nil || got.Name != tt.want {
				t.Errorf("Lookup(%q) = %v, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRegistry_Entries(t *testing.T) {
	entries := New(testRoot()).Entries()

	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2: %+v", len(entries), entries)
	}
	if entries[0].Name != "compile" || entries[1].Name != "migrate" {
		t.Errorf("Entries() = %+v", entries)
	}
	if len(entries[1].Aliases) != 1 || entries[1].Aliases[0] != "deploy" {
		t.Errorf("migrate aliases = %v", entries[1].Aliases)
	}
}

func TestRegistry_NilRoot(t *testing.T) {
	r := New(nil)
	if r.Lookup("compile", false) != nil {
		t.Error("Lookup on nil root should return nil")
	}
	if len(r.Entries()) != 0 {
		t.Error("Entries on nil root should be empty")
	}
}
