package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codemeta/internal/domain/entity"
	"codemeta/internal/domain/valueobject"
	"codemeta/internal/port/outbound"
)

// Mock documented item repository for testing.
type MockDocumentedItemRepository struct {
	mock.Mock
}

func (m *MockDocumentedItemRepository) Save(ctx context.Context, item *entity.DocumentedItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockDocumentedItemRepository) SaveBatch(ctx context.Context, items []*entity.DocumentedItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockDocumentedItemRepository) DeleteByFilePath(ctx context.Context, filePath string) (int64, error) {
	args := m.Called(ctx, filePath)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentedItemRepository) FindByFilePath(
	ctx context.Context,
	filePath string,
) ([]*entity.DocumentedItem, error) {
	args := m.Called(ctx, filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.DocumentedItem), args.Error(1)
}

func (m *MockDocumentedItemRepository) CountByLanguage(ctx context.Context, language string) (int64, error) {
	args := m.Called(ctx, language)
	return args.Get(0).(int64), args.Error(1)
}

// Mock message publisher for testing.
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishFileIndexed(
	ctx context.Context,
	filePath string,
	language valueobject.Language,
	itemCount int,
) error {
	args := m.Called(ctx, filePath, language, itemCount)
	return args.Error(0)
}

func (m *MockMessagePublisher) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMessagePublisher) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Mock file filter for testing.
type MockFileFilter struct {
	mock.Mock
}

func (m *MockFileFilter) LoadPatterns(ctx context.Context, rootDir string) ([]outbound.GitignorePattern, error) {
	args := m.Called(ctx, rootDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]outbound.GitignorePattern), args.Error(1)
}

func (m *MockFileFilter) ShouldIndexFile(ctx context.Context, rootDir, filePath string) (bool, error) {
	args := m.Called(ctx, rootDir, filePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileFilter) ShouldIndexDir(ctx context.Context, rootDir, dirPath string) (bool, error) {
	args := m.Called(ctx, rootDir, dirPath)
	return args.Bool(0), args.Error(1)
}

func writeIndexFixture(t *testing.T, dir, relPath, content string) string {
	t.Helper()
	path := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// stubExtractorForAnyTree wires the extractor mock to return one documented
// declaration regardless of which tree it receives.
func stubExtractorForAnyTree(mockExtractor *MockAnnotationExtractor) {
	node := &valueobject.ParseNode{Type: "function_item", StartByte: 0, EndByte: 12}
	declarations := []outbound.SourceDeclaration{
		{Node: node, Kind: "function_item", Name: "main", StartByte: 0, EndByte: 12},
	}

	mockExtractor.On("GetSupportedLanguage").Return(valueobject.Rust)
	mockExtractor.On("DiscoverDeclarations", mock.Anything, mock.Anything).Return(declarations, nil)
	mockExtractor.On("Documentation", mock.Anything, mock.Anything, mock.Anything).Return("Entry point.", nil)
	mockExtractor.On("QueryAttributes", mock.Anything, mock.Anything, mock.Anything).
		Return(valueobject.NewAttributeQuery(nil), nil)
}

func TestNewIndexService_NilExtraction(t *testing.T) {
	assert.Panics(t, func() {
		NewIndexService(nil, nil, nil, nil, 4)
	})
}

func TestIndexService_IndexDirectory_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	lexerPath := writeIndexFixture(t, dir, "lexer.rs", "fn lex() {}\n")
	astPath := writeIndexFixture(t, dir, "nested/ast.rs", "fn walk() {}\n")
	parserPath := writeIndexFixture(t, dir, "parser.rs", "fn parse() {}\n")
	writeIndexFixture(t, dir, "notes.txt", "not source\n")
	writeIndexFixture(t, dir, ".hidden/skipped.rs", "fn hidden() {}\n")

	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)
	mockRepo := new(MockDocumentedItemRepository)
	mockPublisher := new(MockMessagePublisher)

	stubExtractorForAnyTree(mockExtractor)
	for _, path := range []string{lexerPath, astPath, parserPath} {
		mockParser.On("ParseFile", mock.Anything, path).Return(newExtractionTestTree(t), nil)
	}
	mockRepo.On("DeleteByFilePath", mock.Anything, mock.AnythingOfType("string")).Return(int64(0), nil)
	mockRepo.On("SaveBatch", mock.Anything, mock.AnythingOfType("[]*entity.DocumentedItem")).Return(nil)
	mockPublisher.On("PublishFileIndexed", mock.Anything, mock.AnythingOfType("string"), valueobject.Rust, 1).
		Return(nil)

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, mockRepo, mockPublisher, nil, 2)

	// Act
	report, err := service.IndexDirectory(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 3, report.FilesSeen)
	assert.Equal(t, 3, report.FilesIndexed)
	assert.Equal(t, 3, report.ItemCount)
	assert.Empty(t, report.Failures)

	mockParser.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "DeleteByFilePath", 3)
	mockRepo.AssertNumberOfCalls(t, "SaveBatch", 3)
	mockPublisher.AssertNumberOfCalls(t, "PublishFileIndexed", 3)
}

func TestIndexService_IndexDirectory_FilterPrunesIgnoredPaths(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	mainPath := writeIndexFixture(t, dir, "src/main.rs", "fn main() {}\n")
	writeIndexFixture(t, dir, "target/generated.rs", "fn gen() {}\n")
	writeIndexFixture(t, dir, "src/scratch.rs", "fn scratch() {}\n")

	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)
	mockFilter := new(MockFileFilter)

	stubExtractorForAnyTree(mockExtractor)
	mockParser.On("ParseFile", mock.Anything, mainPath).Return(newExtractionTestTree(t), nil)

	mockFilter.On("ShouldIndexDir", mock.Anything, dir, filepath.Join(dir, "src")).Return(true, nil)
	mockFilter.On("ShouldIndexDir", mock.Anything, dir, filepath.Join(dir, "target")).Return(false, nil)
	mockFilter.On("ShouldIndexFile", mock.Anything, dir, mainPath).Return(true, nil)
	mockFilter.On("ShouldIndexFile", mock.Anything, dir, filepath.Join(dir, "src/scratch.rs")).Return(false, nil)

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, nil, nil, mockFilter, 2)

	// Act
	report, err := service.IndexDirectory(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesSeen, "pruned and filtered files are never seen")
	assert.Equal(t, 1, report.FilesIndexed)
	assert.Empty(t, report.Failures)

	mockParser.AssertExpectations(t)
	mockFilter.AssertExpectations(t)
	mockParser.AssertNumberOfCalls(t, "ParseFile", 1)
}

func TestIndexService_IndexDirectory_CollectsFailures(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	goodPath := writeIndexFixture(t, dir, "good.rs", "fn ok() {}\n")
	badPath := writeIndexFixture(t, dir, "mangled.rs", "fn broken(\n")

	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)
	mockRepo := new(MockDocumentedItemRepository)

	stubExtractorForAnyTree(mockExtractor)
	mockParser.On("ParseFile", mock.Anything, goodPath).Return(newExtractionTestTree(t), nil)
	mockParser.On("ParseFile", mock.Anything, badPath).Return(nil, errors.New("parsing failed"))
	mockRepo.On("DeleteByFilePath", mock.Anything, goodPath).Return(int64(2), nil)
	mockRepo.On("SaveBatch", mock.Anything, mock.AnythingOfType("[]*entity.DocumentedItem")).Return(nil)

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, mockRepo, nil, nil, 1)

	// Act
	report, err := service.IndexDirectory(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, report.FilesSeen)
	assert.Equal(t, 1, report.FilesIndexed)
	assert.Equal(t, 1, report.ItemCount)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, badPath, report.Failures[0].FilePath)
	assert.Contains(t, report.Failures[0].Reason, "failed to parse")

	mockRepo.AssertNumberOfCalls(t, "DeleteByFilePath", 1)
	mockRepo.AssertNumberOfCalls(t, "SaveBatch", 1)
}

func TestIndexService_IndexDirectory_RepositoryErrorBecomesFailure(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := writeIndexFixture(t, dir, "main.rs", "fn main() {}\n")

	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)
	mockRepo := new(MockDocumentedItemRepository)
	mockPublisher := new(MockMessagePublisher)

	stubExtractorForAnyTree(mockExtractor)
	mockParser.On("ParseFile", mock.Anything, path).Return(newExtractionTestTree(t), nil)
	mockRepo.On("DeleteByFilePath", mock.Anything, path).Return(int64(0), errors.New("connection refused"))

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, mockRepo, mockPublisher, nil, 1)

	// Act
	report, err := service.IndexDirectory(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, report.FilesIndexed)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Reason, "failed to clear previous items")

	mockRepo.AssertNotCalled(t, "SaveBatch")
	mockPublisher.AssertNotCalled(t, "PublishFileIndexed")
}

func TestIndexService_IndexDirectory_ExtractOnly(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := writeIndexFixture(t, dir, "main.rs", "fn main() {}\n")

	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)

	stubExtractorForAnyTree(mockExtractor)
	mockParser.On("ParseFile", mock.Anything, path).Return(newExtractionTestTree(t), nil)

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, nil, nil, nil, 0)

	// Act
	report, err := service.IndexDirectory(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesIndexed)
	assert.Equal(t, 1, report.ItemCount)
}

func TestIndexService_IndexDirectory_MissingDirectory(t *testing.T) {
	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)
	mockExtractor.On("GetSupportedLanguage").Return(valueobject.Rust)

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, nil, nil, nil, 2)

	report, err := service.IndexDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "failed to scan")
}

func TestIndexService_IndexDirectory_EmptyDirectory(t *testing.T) {
	mockParser := new(MockSourceParser)
	mockExtractor := new(MockAnnotationExtractor)
	mockExtractor.On("GetSupportedLanguage").Return(valueobject.Rust)

	extraction := NewExtractionService(mockParser, mockExtractor, nil)
	service := NewIndexService(extraction, nil, nil, nil, 2)

	report, err := service.IndexDirectory(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Zero(t, report.FilesSeen)
	assert.Zero(t, report.FilesIndexed)
	assert.Zero(t, report.ItemCount)
	assert.Empty(t, report.Failures)
}
