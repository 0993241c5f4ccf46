package classify

import "testing"

func TestFileCategory(t *testing.T) {
	tests := []struct {
		path string
		want Category
	}{
		{"src/main.go", CategorySource},
		{"lib/parser.ts", CategorySource},
		{"app/models/user.rb", CategorySource},
		{"main.rs", CategorySource},
		{"index.html", CategorySource},
		{"styles.css", CategorySource},

		{"package.json", CategoryConfig},
		{"package-lock.json", CategoryConfig},
		{"yarn.lock", CategoryConfig},
		{"Cargo.lock", CategoryConfig},
		{"config/settings.yaml", CategoryConfig},
		{"repodoc.toml", CategoryConfig},
		{"README.md", CategoryConfig},
		{"docs/guide.md", CategoryConfig},
		{"LICENSE", CategoryConfig},
		{"LICENSE.md", CategoryConfig},
		{"LICENCE.txt", CategoryConfig},
		{"COPYING", CategoryConfig},
		{".gitignore", CategoryConfig},
		{".env.example", CategoryConfig},
		{"Makefile", CategoryConfig},
		{"Dockerfile", CategoryConfig},
		{"go.sum", CategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FileCategory(tt.path); got != tt.want {
				t.Errorf("FileCategory(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
