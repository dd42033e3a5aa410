package cmd

import (
	ts "codemeta/internal/adapter/outbound/treesitter"
	rustparser "codemeta/internal/adapter/outbound/treesitter/parsers/rust"
	"codemeta/internal/application/common/logging"
	"codemeta/internal/application/service"
	"codemeta/internal/domain/entity"
	"codemeta/internal/version"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// extractCmd implements: codemeta extract file.rs [more.rs...] [--format yaml|json] [--out out.yaml].
func newExtractCmd() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract attribute and documentation metadata from source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExtract(args, format, outPath)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, json)")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path to write the report")

	return cmd
}

// runExtract performs: parse -> discover declarations -> extract metadata -> output report.
func runExtract(files []string, format, outPath string) error {
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	ctx, _ := logging.EnsureCorrelationID(context.Background())

	extraction, err := buildExtractionService(ctx)
	if err != nil {
		return err
	}

	reports := make([]fileReport, 0, len(files))
	for _, filePath := range files {
		result, err := extraction.ExtractFile(ctx, filePath)
		if err != nil {
			return err
		}
		reports = append(reports, newFileReport(result))
	}

	return writeExtractReport(reports, format, outPath)
}

// buildExtractionService wires the parser, extractor and metrics behind the
// extraction service.
func buildExtractionService(ctx context.Context) (*service.ExtractionService, error) {
	parser, err := ts.NewTreeSitterSourceParser(ctx, ts.SourceParserOptions{
		MaxSourceSize: cfg.Extractor.MaxSourceSize,
		ParseTimeout:  cfg.Extractor.ParseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init parser: %w", err)
	}

	metrics, err := service.NewExtractionMetrics(service.ExtractionMetricsConfig{
		InstanceID:     uuid.New().String(),
		ServiceName:    "codemeta",
		ServiceVersion: version.GetVersion().Version,
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return service.NewExtractionService(parser, rustparser.NewRustAnnotationExtractor(), metrics), nil
}

// writeExtractReport formats and writes the report to stdout or a file.
func writeExtractReport(reports []fileReport, format, outPath string) error {
	payload := extractReport{Files: reports}

	var data []byte
	var err error
	if format == "json" {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = yaml.Marshal(payload)
	}
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if outPath == "" {
		_, _ = os.Stdout.Write(data)
		if format == "json" {
			_, _ = os.Stdout.WriteString("\n")
		}
		return nil
	}

	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// extractReport is the top-level report structure for the extract command.
type extractReport struct {
	Files []fileReport `json:"files" yaml:"files"`
}

// fileReport describes the documented items extracted from one file.
type fileReport struct {
	File       string       `json:"file"       yaml:"file"`
	Language   string       `json:"language"   yaml:"language"`
	Duration   string       `json:"duration"   yaml:"duration"`
	ItemCount  int          `json:"item_count" yaml:"item_count"`
	Documented int          `json:"documented" yaml:"documented"`
	Items      []itemReport `json:"items,omitempty" yaml:"items,omitempty"`
}

// itemReport describes one extracted declaration.
type itemReport struct {
	Kind          string            `json:"kind"                    yaml:"kind"`
	Name          string            `json:"name,omitempty"          yaml:"name,omitempty"`
	StartByte     uint32            `json:"start_byte"              yaml:"start_byte"`
	EndByte       uint32            `json:"end_byte"                yaml:"end_byte"`
	Documentation *string           `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Attributes    []attributeReport `json:"attributes,omitempty"    yaml:"attributes,omitempty"`
}

// attributeReport describes one attribute meta item on a declaration.
type attributeReport struct {
	Key        string  `json:"key"             yaml:"key"`
	HasEquals  bool    `json:"has_equals"      yaml:"has_equals"`
	HasArgList bool    `json:"has_arg_list"    yaml:"has_arg_list"`
	Value      *string `json:"value,omitempty" yaml:"value,omitempty"`
}

func newFileReport(result *service.FileExtraction) fileReport {
	items := make([]itemReport, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, newItemReport(item))
	}

	return fileReport{
		File:       result.FilePath,
		Language:   result.Language.Name(),
		Duration:   result.Duration.String(),
		ItemCount:  result.ItemCount(),
		Documented: result.DocumentedCount(),
		Items:      items,
	}
}

func newItemReport(item *entity.DocumentedItem) itemReport {
	report := itemReport{
		Kind:          item.Kind(),
		Name:          item.Name(),
		StartByte:     item.StartByte(),
		EndByte:       item.EndByte(),
		Documentation: item.Documentation(),
	}

	for _, meta := range item.Attributes() {
		attr := attributeReport{
			Key:        meta.Key(),
			HasEquals:  meta.HasEquals(),
			HasArgList: meta.HasArgList(),
		}
		if value, ok := meta.StringValue(); ok {
			attr.Value = &value
		}
		report.Attributes = append(report.Attributes, attr)
	}

	return report
}

func init() { //nolint:gochecknoinits // required by cobra for command registration
	rootCmd.AddCommand(newExtractCmd())
}
