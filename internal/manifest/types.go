package manifest

// RemoteDescriptor identifies where a repository is cloned from. Either ID, which is
// interpolated into a clone pattern, or URL, which is used verbatim, must be set.
type RemoteDescriptor struct {
	ID  string `mapstructure:"id" json:"id,omitempty" yaml:"id,omitempty"`
	URL string `mapstructure:"url" json:"url,omitempty" yaml:"url,omitempty"`
}

// Repository describes one tracked checkout.
type Repository struct {
	Name      string           `mapstructure:"-" json:"-" yaml:"-"`
	Remote    RemoteDescriptor `mapstructure:"remote" json:"remote" yaml:"remote"`
	Platforms []string         `mapstructure:"platforms" json:"platforms,omitempty" yaml:"platforms,omitempty"`
}

// BranchScheme maps repositories to the branch they should track. A scheme is addressed
// by any of its aliases and need not list every repository.
type BranchScheme struct {
	Aliases      []string          `mapstructure:"aliases" json:"aliases" yaml:"aliases"`
	Repositories map[string]string `mapstructure:"repos" json:"repos" yaml:"repos"`
}

// Document is the parsed configuration. It is immutable after Load and shared read-only
// by every worker.
type Document struct {
	SSHClonePattern     string                  `mapstructure:"ssh-clone-pattern" json:"ssh-clone-pattern,omitempty" yaml:"ssh-clone-pattern,omitempty"`
	HTTPSClonePattern   string                  `mapstructure:"https-clone-pattern" json:"https-clone-pattern,omitempty" yaml:"https-clone-pattern,omitempty"`
	Repositories        map[string]Repository   `mapstructure:"repos" json:"repos" yaml:"repos"`
	BranchSchemes       map[string]BranchScheme `mapstructure:"branch-schemes" json:"branch-schemes" yaml:"branch-schemes"`
	DefaultBranchScheme string                  `mapstructure:"default-branch-scheme" json:"default-branch-scheme,omitempty" yaml:"default-branch-scheme,omitempty"`
}
