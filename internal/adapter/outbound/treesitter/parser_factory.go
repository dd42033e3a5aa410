package treesitter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codemeta/internal/application/common/slogger"
	"codemeta/internal/domain/valueobject"
)

// ParserFactoryImpl creates language parsers backed by go-sitter-forest
// grammars. Parsers self-register through RegisterParser from their package
// init functions; the factory only resolves registrations.
type ParserFactoryImpl struct {
	mu        sync.RWMutex
	startTime time.Time
}

// NewTreeSitterParserFactory creates a new parser factory.
func NewTreeSitterParserFactory(ctx context.Context) (*ParserFactoryImpl, error) {
	factory := &ParserFactoryImpl{
		startTime: time.Now(),
	}

	slogger.Info(ctx, "TreeSitterParserFactory initialized", slogger.Fields{
		"registered_languages": len(GetRegisteredLanguages()),
	})

	return factory, nil
}

// CreateParser creates a parser for a specific language.
func (f *ParserFactoryImpl) CreateParser(
	ctx context.Context,
	language valueobject.Language,
) (TreeSitterParser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	parserFactory := GetRegisteredParser(language.Name())
	if parserFactory == nil {
		return nil, fmt.Errorf("no parser registered for language %q", language.Name())
	}

	slogger.Debug(ctx, "Creating registered parser for language", slogger.Fields{
		"language": language.Name(),
	})

	return parserFactory()
}

// GetSupportedLanguages returns all languages with a registered parser.
func (f *ParserFactoryImpl) GetSupportedLanguages(_ context.Context) ([]valueobject.Language, error) {
	names := GetRegisteredLanguages()
	languages := make([]valueobject.Language, 0, len(names))
	for _, name := range names {
		if lang := valueobject.GetLanguageByName(name); lang != nil {
			languages = append(languages, *lang)
			continue
		}
		lang, err := valueobject.NewLanguage(name)
		if err != nil {
			return nil, fmt.Errorf("invalid registered language %q: %w", name, err)
		}
		languages = append(languages, lang)
	}
	return languages, nil
}

// IsLanguageSupported checks whether a parser is registered for the language.
func (f *ParserFactoryImpl) IsLanguageSupported(_ context.Context, language valueobject.Language) bool {
	return GetRegisteredParser(language.Name()) != nil
}

// ParserFactory is a function type that creates a parser instance.
type ParserFactory func() (TreeSitterParser, error)

// ParserRegistry manages parser factories for different languages.
type ParserRegistry struct {
	factories map[string]ParserFactory
	mu        sync.RWMutex
}

// globalRegistry is the singleton registry instance.
//
//nolint:gochecknoglobals // Registry pattern requires global access for init() functions
var globalRegistry = &ParserRegistry{
	factories: make(map[string]ParserFactory),
}

// RegisterParser registers a parser factory for a specific language.
// This is called by language parsers in their init() functions.
func RegisterParser(languageName string, factory ParserFactory) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.factories[languageName] = factory
}

// GetRegisteredParser retrieves a parser factory for a language.
func GetRegisteredParser(languageName string) ParserFactory {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.factories[languageName]
}

// GetRegisteredLanguages returns all registered language names.
func GetRegisteredLanguages() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	languages := make([]string, 0, len(globalRegistry.factories))
	for lang := range globalRegistry.factories {
		languages = append(languages, lang)
	}
	return languages
}
