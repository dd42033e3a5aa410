package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// LanguageType represents different categories of programming languages.
type LanguageType int

const (
	LanguageTypeUnknown LanguageType = iota
	LanguageTypeCompiled
	LanguageTypeInterpreted
	LanguageTypeMarkup
	LanguageTypeData
)

// DetectionMethod represents how a language was detected.
type DetectionMethod int

const (
	DetectionMethodUnknown DetectionMethod = iota
	DetectionMethodExtension
	DetectionMethodContent
	DetectionMethodFallback
)

// Language identifies a programming language throughout the extraction
// pipeline. It is a value object: validated on construction, immutable after.
type Language struct {
	name            string
	extensions      []string
	languageType    LanguageType
	detectionMethod DetectionMethod
	confidence      float64 // 0.0 to 1.0
}

// Common language names as constants for consistency.
const (
	LanguageRust       = "Rust"
	LanguageGo         = "Go"
	LanguagePython     = "Python"
	LanguageJavaScript = "JavaScript"
	LanguageMarkdown   = "Markdown"
	LanguageJSON       = "JSON"
	LanguageYAML       = "YAML"
	LanguageUnknown    = "Unknown"
)

// Rust is the well-known Rust language instance used across the extraction
// pipeline.
//
//nolint:gochecknoglobals // Well-known language instances are shared immutable values
var Rust = mustLanguageWithDetails(
	LanguageRust,
	[]string{".rs"},
	LanguageTypeCompiled,
	DetectionMethodExtension,
	1.0,
)

func mustLanguageWithDetails(
	name string,
	extensions []string,
	langType LanguageType,
	detectionMethod DetectionMethod,
	confidence float64,
) Language {
	lang, err := NewLanguageWithDetails(name, extensions, langType, detectionMethod, confidence)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in language %s: %v", name, err))
	}
	return lang
}

// GetLanguageByName resolves a language name or a bare extension alias to a
// well-known language instance. Returns nil when the name is unrecognized.
func GetLanguageByName(name string) *Language {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rust", "rs":
		return &Rust
	default:
		return nil
	}
}

// NewLanguage creates a new Language value object with validation.
func NewLanguage(name string) (Language, error) {
	normalizedName := strings.TrimSpace(name)
	if normalizedName == "" {
		return Language{}, errors.New("language name cannot be empty")
	}

	if err := validateLanguageName(normalizedName); err != nil {
		return Language{}, fmt.Errorf("invalid language name: %w", err)
	}

	return Language{
		name:            normalizedName,
		extensions:      []string{},
		languageType:    LanguageTypeUnknown,
		detectionMethod: DetectionMethodUnknown,
		confidence:      0.0,
	}, nil
}

// NewLanguageWithDetails creates a Language with extensions, category and
// detection provenance.
func NewLanguageWithDetails(
	name string,
	extensions []string,
	langType LanguageType,
	detectionMethod DetectionMethod,
	confidence float64,
) (Language, error) {
	lang, err := NewLanguage(name)
	if err != nil {
		return Language{}, err
	}

	if confidence < 0.0 || confidence > 1.0 {
		return Language{}, errors.New("confidence score must be between 0.0 and 1.0")
	}

	normalizedExtensions, err := normalizeExtensions(extensions)
	if err != nil {
		return Language{}, fmt.Errorf("invalid extensions: %w", err)
	}

	lang.extensions = normalizedExtensions
	lang.languageType = langType
	lang.detectionMethod = detectionMethod
	lang.confidence = confidence

	return lang, nil
}

func validateLanguageName(name string) error {
	if len(name) > 100 {
		return errors.New("language name too long (max 100 characters)")
	}

	for _, char := range name {
		if char < ' ' || char > '~' {
			return fmt.Errorf("invalid character in language name: %c", char)
		}
	}

	return nil
}

func normalizeExtensions(extensions []string) ([]string, error) {
	normalized := make([]string, 0, len(extensions))
	seen := make(map[string]bool)

	for _, ext := range extensions {
		trimmed := strings.ToLower(strings.TrimSpace(ext))
		if trimmed == "" {
			continue
		}

		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}

		if len(trimmed) < 2 || len(trimmed) > 20 {
			return nil, fmt.Errorf("invalid extension length: %s", trimmed)
		}

		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true

		for i, char := range trimmed[1:] {
			if (char < 'a' || char > 'z') &&
				(char < '0' || char > '9') &&
				char != '-' && char != '_' {
				return nil, fmt.Errorf("invalid character at position %d in extension %s", i+1, trimmed)
			}
		}

		normalized = append(normalized, trimmed)
	}

	return normalized, nil
}

// Name returns the language name.
func (l Language) Name() string {
	return l.name
}

// Extensions returns a copy of the file extensions for this language.
func (l Language) Extensions() []string {
	extensions := make([]string, len(l.extensions))
	copy(extensions, l.extensions)
	return extensions
}

// Type returns the language type category.
func (l Language) Type() LanguageType {
	return l.languageType
}

// DetectionMethod returns how this language was detected.
func (l Language) DetectionMethod() DetectionMethod {
	return l.detectionMethod
}

// Confidence returns the confidence score of the language detection.
func (l Language) Confidence() float64 {
	return l.confidence
}

// IsUnknown returns true if this is the unknown language.
func (l Language) IsUnknown() bool {
	return l.name == LanguageUnknown
}

// HasExtension returns true if the language claims the given extension.
func (l Language) HasExtension(extension string) bool {
	normalized := strings.ToLower(strings.TrimSpace(extension))
	if !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}

	for _, ext := range l.extensions {
		if ext == normalized {
			return true
		}
	}
	return false
}

// String returns a string representation of the language.
func (l Language) String() string {
	if l.confidence > 0 {
		return fmt.Sprintf("%s (%.1f%%)", l.name, l.confidence*100)
	}
	return l.name
}

// Equal compares two Language instances for equality.
func (l Language) Equal(other Language) bool {
	return strings.EqualFold(l.name, other.name) &&
		l.languageType == other.languageType
}

// String returns a string representation of the language type.
func (lt LanguageType) String() string {
	switch lt {
	case LanguageTypeCompiled:
		return "Compiled"
	case LanguageTypeInterpreted:
		return "Interpreted"
	case LanguageTypeMarkup:
		return "Markup"
	case LanguageTypeData:
		return "Data"
	case LanguageTypeUnknown:
		return LanguageUnknown
	default:
		return LanguageUnknown
	}
}

// String returns a string representation of the detection method.
func (dm DetectionMethod) String() string {
	switch dm {
	case DetectionMethodExtension:
		return "Extension"
	case DetectionMethodContent:
		return "Content"
	case DetectionMethodFallback:
		return "Fallback"
	case DetectionMethodUnknown:
		return LanguageUnknown
	default:
		return LanguageUnknown
	}
}
