package filefilter

import (
	"path/filepath"
	"regexp"
	"strings"
)

// GitignoreMatcher matches file paths against gitignore patterns following
// the Git pattern format.
type GitignoreMatcher struct {
	// Cache compiled patterns for performance
	compiledPatterns map[string]*regexp.Regexp
}

// NewGitignoreMatcher creates a new gitignore matcher.
func NewGitignoreMatcher() *GitignoreMatcher {
	return &GitignoreMatcher{
		compiledPatterns: make(map[string]*regexp.Regexp),
	}
}

// MatchPattern matches a gitignore pattern against a slash-separated path
// relative to the directory holding the .gitignore file.
func (m *GitignoreMatcher) MatchPattern(pattern, path string) bool {
	path = strings.TrimPrefix(path, "./")
	path = filepath.ToSlash(path)

	if pattern == "" {
		return false
	}

	// Negation is resolved by the caller; match the bare pattern.
	pattern = strings.TrimPrefix(pattern, "!")

	return m.matchWithRegex(pattern, path)
}

// matchWithRegex converts a gitignore pattern to a regex and matches it
// against the path.
func (m *GitignoreMatcher) matchWithRegex(pattern, path string) bool {
	if regex, exists := m.compiledPatterns[pattern]; exists {
		return regex.MatchString(path)
	}

	regexPattern := m.gitignoreToRegex(pattern)

	regex, err := regexp.Compile(regexPattern)
	if err != nil {
		// If regex compilation fails, fall back to simple matching
		return m.fallbackMatch(pattern, path)
	}

	m.compiledPatterns[pattern] = regex

	return regex.MatchString(path)
}

// gitignoreToRegex converts a gitignore pattern to a regular expression.
func (m *GitignoreMatcher) gitignoreToRegex(pattern string) string {
	// Patterns starting with / anchor at the root of the tree.
	isRooted := strings.HasPrefix(pattern, "/")
	if isRooted {
		pattern = strings.TrimPrefix(pattern, "/")
	}

	// Patterns ending with / match directories and everything below them.
	pattern = strings.TrimSuffix(pattern, "/")

	regex := m.escapeRegexChars(pattern)
	regex = m.convertWildcards(regex)

	var finalRegex string
	if isRooted {
		finalRegex = "^" + regex
	} else {
		finalRegex = "(^|/)" + regex
	}

	// A match covers the path itself and anything nested under it.
	finalRegex += "($|/.*)"

	return finalRegex
}

// escapeRegexChars escapes special regex characters except wildcards. The
// backslash goes first so the escapes it introduces are not escaped again.
func (m *GitignoreMatcher) escapeRegexChars(s string) string {
	chars := []string{"\\", ".", "+", "(", ")", "{", "}", "^", "$", "|"}
	for _, char := range chars {
		s = strings.ReplaceAll(s, char, "\\"+char)
	}
	return s
}

// convertWildcards converts gitignore wildcards to regex equivalents.
func (m *GitignoreMatcher) convertWildcards(s string) string {
	// **/ matches zero or more leading directories
	s = regexp.MustCompile(`\*\*/`).ReplaceAllString(s, `([^/]*/)*`)

	// /** matches everything inside a directory
	s = regexp.MustCompile(`/\*\*`).ReplaceAllString(s, `/.*`)

	// A bare ** matches zero or more path segments
	s = regexp.MustCompile(`\*\*`).ReplaceAllString(s, `.*`)

	// * matches anything except a slash
	s = strings.ReplaceAll(s, "*", `[^/]*`)

	// ? matches a single character except a slash
	s = strings.ReplaceAll(s, "?", `[^/]`)

	return s
}

// fallbackMatch provides simple pattern matching when regex compilation fails.
func (m *GitignoreMatcher) fallbackMatch(pattern, path string) bool {
	isRooted := strings.HasPrefix(pattern, "/")
	if isRooted {
		pattern = strings.TrimPrefix(pattern, "/")
	}

	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		return strings.HasPrefix(path, pattern+"/") || path == pattern
	}

	if strings.Contains(pattern, "*") {
		return m.simpleGlobMatch(pattern, path, isRooted)
	}

	if isRooted {
		return path == pattern || strings.HasPrefix(path, pattern+"/")
	}

	return path == pattern || strings.HasSuffix(path, "/"+pattern) ||
		strings.Contains(path, "/"+pattern+"/")
}

// simpleGlobMatch provides basic glob matching for the fallback path.
func (m *GitignoreMatcher) simpleGlobMatch(pattern, path string, isRooted bool) bool {
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(path, pattern[1:])
	}

	if strings.Contains(pattern, "**/") {
		return m.globstarMatch(pattern, path, isRooted)
	}

	pattern = strings.ReplaceAll(pattern, "*", ".*")
	regex, err := regexp.Compile(pattern)
	if err == nil {
		return regex.MatchString(path)
	}

	// Last resort: contains check
	return strings.Contains(path, strings.ReplaceAll(pattern, ".*", ""))
}

// globstarMatch handles **/ patterns in the fallback path.
func (m *GitignoreMatcher) globstarMatch(pattern, path string, isRooted bool) bool {
	parts := strings.Split(pattern, "**/")
	if len(parts) != 2 {
		return false
	}

	prefix := parts[0]
	suffix := parts[1]

	if prefix == "" {
		return strings.Contains(path, suffix) || strings.HasSuffix(path, suffix)
	}

	if !strings.HasPrefix(path, prefix) && (isRooted || !strings.Contains(path, prefix)) {
		return false
	}

	remainder := path
	if idx := strings.Index(path, prefix); idx >= 0 {
		remainder = path[idx+len(prefix):]
	}
	return strings.Contains(remainder, suffix) || strings.HasSuffix(remainder, suffix)
}
