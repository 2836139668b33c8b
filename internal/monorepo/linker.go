package monorepo

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/repos/dependencies"
	"github.com/temirov/checkoutsync/internal/repos/shared"
)

const (
	// DefaultRootConstant names the monorepo checkout under the source root.
	DefaultRootConstant               = "llvm-project"
	linkingNoticeTemplateConstant     = "Create symlink for %s\n"
	existingPathLogMessageConstant    = "link destination exists; leaving it in place"
	linkCreatedLogMessageConstant     = "linked monorepo project"
	linkFailureTemplateConstant       = "failed to link %s to %s: %w"
	sourceRootRequiredMessageConstant = "source root must be provided"
	logFieldSourceConstant            = "source"
	logFieldDestinationConstant       = "destination"
	logFieldSymlinkConstant           = "symlink"
)

// DefaultProjects lists the projects linked when none are configured.
func DefaultProjects() []string {
	return []string{"clang", "llvm", "lldb", "compiler-rt", "libcxx", "clang-tools-extra"}
}

// ErrSourceRootRequired indicates Link was called without a source root.
var ErrSourceRootRequired = errors.New(sourceRootRequiredMessageConstant)

// Options selects the monorepo and the projects to link.
type Options struct {
	SourceRoot string
	Root       string
	Projects   []string
}

// Dependencies enumerates collaborators of Linker.
type Dependencies struct {
	FileSystem shared.FileSystem
	Reporter   shared.Reporter
	Logger     *zap.Logger
}

// Linker creates <root>/<project> -> <root>/<monorepo>/<project> links.
type Linker struct {
	fileSystem shared.FileSystem
	reporter   shared.Reporter
	logger     *zap.Logger
}

// NewLinker constructs a Linker.
func NewLinker(linkerDependencies Dependencies) *Linker {
	logger := linkerDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linker{
		fileSystem: dependencies.ResolveFileSystem(linkerDependencies.FileSystem),
		reporter:   dependencies.ResolveReporter(linkerDependencies.Reporter),
		logger:     logger,
	}
}

// Link creates every missing project link. Destinations that already exist, whether links
// or directories, are left untouched.
func (linker *Linker) Link(options Options) error {
	sourceRoot := strings.TrimSpace(options.SourceRoot)
	if len(sourceRoot) == 0 {
		return ErrSourceRootRequired
	}
	monorepoRoot := strings.TrimSpace(options.Root)
	if len(monorepoRoot) == 0 {
		monorepoRoot = DefaultRootConstant
	}
	projects := options.Projects
	if projects == nil {
		projects = DefaultProjects()
	}

	linker.reporter.Printf(linkingNoticeTemplateConstant, monorepoRoot)
	for _, project := range projects {
		sourcePath := filepath.Join(sourceRoot, monorepoRoot, project)
		destinationPath := filepath.Join(sourceRoot, project)

		if destinationInfo, statError := linker.fileSystem.Lstat(destinationPath); statError == nil {
			linker.logger.Debug(existingPathLogMessageConstant,
				zap.String(logFieldDestinationConstant, destinationPath),
				zap.Bool(logFieldSymlinkConstant, destinationInfo.Mode()&fs.ModeSymlink != 0))
			continue
		}

		if linkError := linker.fileSystem.Symlink(sourcePath, destinationPath); linkError != nil {
			return fmt.Errorf(linkFailureTemplateConstant, destinationPath, sourcePath, linkError)
		}
		linker.logger.Debug(linkCreatedLogMessageConstant, zap.String(logFieldSourceConstant, sourcePath), zap.String(logFieldDestinationConstant, destinationPath))
	}
	return nil
}
