package filefilter

import "testing"

func TestGitignoreMatcher_MatchPattern(t *testing.T) {
	m := NewGitignoreMatcher()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		// Rooted patterns
		{"Rooted target dir", "/target", "target/debug/build.rs", true},
		{"Rooted target exact", "/target", "target", true},
		{"Rooted target no match", "/target", "crates/target/lib.rs", false},

		// Globstar patterns
		{"Globstar generated files", "**/*.gen.rs", "src/proto/api.gen.rs", true},
		{"Globstar nested generated", "**/*.gen.rs", "crates/core/src/wire.gen.rs", true},
		{"Globstar under src", "src/**/*.snap", "src/tests/snapshots/attr.snap", true},
		{"Globstar deep under src", "src/**/*.snap", "src/a/b/c/doc.snap", true},

		// Bracket expressions
		{"Bracket backup one", "*.bk[12]", "notes.bk1", true},
		{"Bracket backup two", "*.bk[12]", "notes.bk2", true},
		{"Bracket no match", "*.bk[12]", "notes.bk3", false},

		// Directory patterns
		{"Dir pattern root", "**/target/", "target/debug.rs", true},
		{"Dir pattern nested", "**/target/", "crates/core/target/out.rs", true},
		{"Dir pattern deep", "**/target/", "a/b/c/target/gen.rs", true},

		// Simple patterns
		{"Simple extension log", "*.log", "app.log", true},
		{"Simple extension nested", "*.log", "logs/app.log", true},
		{"Simple tmp", "*.tmp", "data.tmp", true},
		{"Single char wildcard", "bench?.rs", "bench1.rs", true},
		{"Single char wildcard no slash", "bench?.rs", "bench/a.rs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchPattern(tt.pattern, tt.path)
			if got != tt.want {
				regex := m.gitignoreToRegex(tt.pattern)
				t.Errorf("MatchPattern(%q, %q) = %v, want %v\nRegex: %s",
					tt.pattern, tt.path, got, tt.want, regex)
			}
		})
	}
}

func TestGitignoreMatcher_CachesCompiledPatterns(t *testing.T) {
	m := NewGitignoreMatcher()

	if !m.MatchPattern("*.log", "app.log") {
		t.Fatal("expected *.log to match app.log")
	}
	if len(m.compiledPatterns) != 1 {
		t.Errorf("expected 1 cached pattern, got %d", len(m.compiledPatterns))
	}

	// Same pattern again reuses the compiled regex.
	if !m.MatchPattern("*.log", "other.log") {
		t.Fatal("expected *.log to match other.log")
	}
	if len(m.compiledPatterns) != 1 {
		t.Errorf("expected cache to stay at 1 pattern, got %d", len(m.compiledPatterns))
	}
}
