package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()
	want := &Config{
		Builder: &BuilderConfig{
			Import: "github.com/recera/vex/pkg/vex/builder",
			Name:   "builder",
		},
		Stringer:   &StringerConfig{Func: "fmt.Sprint", Import: "fmt"},
		SearchDirs: []string{"."},
		Cache:      &CacheConfig{Enabled: true, MaxEntries: 1024},
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("DefaultConfig() diff (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, c *Config)
		wantErr string
	}{
		{
			name: "custom builder import",
			yaml: "builder:\n  import: example.com/ui/b\n",
			check: func(t *testing.T, c *Config) {
				if c.Builder.Name != "b" {
					t.Errorf("Builder.Name = %q, want b", c.Builder.Name)
				}
			},
		},
		{
			name: "raw stringer",
			yaml: "stringer:\n  func: none\n",
			check: func(t *testing.T, c *Config) {
				if c.StringerFunc() != "" || c.Stringer.Import != "" {
					t.Errorf("stringer = %+v, want none", c.Stringer)
				}
			},
		},
		{
			name: "custom stringer",
			yaml: "stringer:\n  func: html.EscapeString\n  import: html\n",
			check: func(t *testing.T, c *Config) {
				if c.StringerFunc() != "html.EscapeString" || c.Stringer.Import != "html" {
					t.Errorf("stringer = %+v", c.Stringer)
				}
			},
		},
		{
			name: "cache disabled",
			yaml: "cache:\n  enabled: false\n  maxEntries: 10\nsearchDirs: [app, components]\nlineDirectives: true\n",
			check: func(t *testing.T, c *Config) {
				if c.Cache.Enabled || c.Cache.MaxEntries != 10 {
					t.Errorf("cache = %+v", c.Cache)
				}
				if strings.Join(c.SearchDirs, ",") != "app,components" || !c.LineDirectives {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name:    "invalid yaml",
			yaml:    "builder: [",
			wantErr: "parsing vex.yaml",
		},
		{
			name:    "import without stringer",
			yaml:    "stringer:\n  func: none\n  import: fmt\n",
			wantErr: "stringer.func is none",
		},
		{
			name:    "qualified stringer without import",
			yaml:    "stringer:\n  func: strconv.Quote\n",
			wantErr: "stringer.import is not set",
		},
		{
			name: "local stringer needs no import",
			yaml: "stringer:\n  func: show\n",
			check: func(t *testing.T, c *Config) {
				if c.StringerFunc() != "show" || c.Stringer.Import != "" {
					t.Errorf("stringer = %+v", c.Stringer)
				}
			},
		},
		{
			name:    "negative cache size",
			yaml:    "cache:\n  maxEntries: -1\n",
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() without file error = %v", err)
	}
	if diff := pretty.Compare(DefaultConfig(), c); diff != "" {
		t.Errorf("Load() without file should return defaults:\n%s", diff)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("lineDirectives: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err = Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !c.LineDirectives {
		t.Error("LineDirectives not loaded")
	}
}
