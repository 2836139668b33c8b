package snapshot

import (
	"fmt"
	"io"
	"sort"

	"github.com/temirov/checkoutsync/internal/ui"
)

const (
	hashColumnWidthConstant      = 35
	hashRowTemplateConstant      = "%s: %s\n"
	paddedColumnTemplateConstant = "%-*s"
)

// HashReport renders hashes as aligned name and hash columns.
type HashReport struct {
	Styler ui.Styler
}

// Write renders one row per repository in name order. Skipped repositories are muted.
func (report HashReport) Write(writer io.Writer, hashes Hashes) error {
	theme := report.Styler.Theme()
	repositoryNames := make([]string, 0, len(hashes))
	for repositoryName := range hashes {
		repositoryNames = append(repositoryNames, repositoryName)
	}
	sort.Strings(repositoryNames)

	for _, repositoryName := range repositoryNames {
		hash := hashes[repositoryName]
		valueStyle := theme.Value
		if hash == SkipHashConstant {
			valueStyle = theme.Muted
		}
		renderedName := report.Styler.Render(padColumn(repositoryName), theme.Name)
		renderedHash := report.Styler.Render(padColumn(hash), valueStyle)
		if _, writeError := fmt.Fprintf(writer, hashRowTemplateConstant, renderedName, renderedHash); writeError != nil {
			return writeError
		}
	}
	return nil
}

func padColumn(text string) string {
	return fmt.Sprintf(paddedColumnTemplateConstant, hashColumnWidthConstant, text)
}
