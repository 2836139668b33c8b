package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/checkoutsync/internal/manifest"
)

const (
	// DefaultExportSchemeNameConstant names the exported scheme when none is given.
	DefaultExportSchemeNameConstant   = "repro"
	jsonIndentConstant                = "    "
	yamlIndentConstant                = 4
	unsupportedFormatTemplateConstant = "unsupported export format %q (supported: %s)"
	encodeFailureTemplateConstant     = "failed to encode document: %w"
	formatSeparatorConstant           = ", "
)

// Format selects the export encoding.
type Format string

const (
	// FormatJSON encodes with four-space indentation.
	FormatJSON Format = "json"
	// FormatYAML encodes with yaml.v3.
	FormatYAML Format = "yaml"
)

// SupportedFormats lists the accepted export encodings.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML)}
}

// UnsupportedFormatError reports an unknown export encoding.
type UnsupportedFormatError struct {
	Format string
}

// Error describes the unsupported format.
func (formatError UnsupportedFormatError) Error() string {
	return fmt.Sprintf(unsupportedFormatTemplateConstant, formatError.Format, strings.Join(SupportedFormats(), formatSeparatorConstant))
}

// ExportScheme builds a document carrying the clone patterns and repositories of document
// and a single branch scheme, aliased schemeName, that pins every repository to its hash.
func ExportScheme(document manifest.Document, hashes Hashes, schemeName string) manifest.Document {
	if len(strings.TrimSpace(schemeName)) == 0 {
		schemeName = DefaultExportSchemeNameConstant
	}
	pinnedRepositories := make(map[string]string, len(hashes))
	for repositoryName, hash := range hashes {
		pinnedRepositories[repositoryName] = hash
	}
	return manifest.Document{
		SSHClonePattern:   document.SSHClonePattern,
		HTTPSClonePattern: document.HTTPSClonePattern,
		Repositories:      document.Repositories,
		BranchSchemes: map[string]manifest.BranchScheme{
			schemeName: {
				Aliases:      []string{schemeName},
				Repositories: pinnedRepositories,
			},
		},
	}
}

// WriteDocument encodes document to writer in the requested format.
func WriteDocument(writer io.Writer, document manifest.Document, format Format) error {
	switch Format(strings.ToLower(string(format))) {
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		encoder.SetEscapeHTML(false)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return fmt.Errorf(encodeFailureTemplateConstant, encodeError)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return fmt.Errorf(encodeFailureTemplateConstant, encodeError)
		}
		return encoder.Close()
	default:
		return UnsupportedFormatError{Format: string(format)}
	}
}
