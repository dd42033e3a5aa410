package outbound

import (
	"context"
	"errors"

	"codemeta/internal/domain/valueobject"
)

// ErrUnsupportedFile indicates a file whose language no registered parser
// handles. Directory walkers treat it as a skip signal rather than a failure.
var ErrUnsupportedFile = errors.New("unsupported file type")

// SourceParser defines the outbound port for turning source code into domain
// parse trees. Implementations own the parser lifecycle; callers own the
// returned tree and must release it with Cleanup.
type SourceParser interface {
	// ParseFile reads and parses one source file, detecting its language
	// from the path. Returns ErrUnsupportedFile for unrecognized extensions.
	ParseFile(ctx context.Context, filePath string) (*valueobject.ParseTree, error)

	// ParseSource parses in-memory source code of the given language.
	ParseSource(
		ctx context.Context,
		language valueobject.Language,
		source []byte,
	) (*valueobject.ParseTree, error)
}
