package reconcile

import "fmt"

const (
	crossRepositoryBranchTemplateConstant = "ci_pr_%s"
	targetKindNoneLabelConstant           = "none"
	targetKindTagLabelConstant            = "tag"
	targetKindSchemeBranchLabelConstant   = "scheme-branch"
)

// TargetKind enumerates what a reconcile run converges to.
type TargetKind int

const (
	// TargetKindNone fetches and rebases onto upstream without an explicit checkout.
	TargetKindNone TargetKind = iota
	// TargetKindTag checks out a tag after confirming it exists on the remote.
	TargetKindTag
	// TargetKindSchemeBranch checks out the branch a branch-scheme assigns to the repository.
	TargetKindSchemeBranch
)

// String returns a label suitable for log fields.
func (kind TargetKind) String() string {
	switch kind {
	case TargetKindTag:
		return targetKindTagLabelConstant
	case TargetKindSchemeBranch:
		return targetKindSchemeBranchLabelConstant
	default:
		return targetKindNoneLabelConstant
	}
}

// Target describes the desired state of one checkout. A scheme branch with a PullRequestID
// is a cross-repository run; a Timestamp replaces the resolved ref with the last
// first-parent commit at or before it.
type Target struct {
	Kind          TargetKind
	Name          string
	PullRequestID string
	Timestamp     string
}

// NoTarget returns the target that only fetches and rebases.
func NoTarget() Target {
	return Target{Kind: TargetKindNone}
}

// TagTarget returns a target converging to the named tag.
func TagTarget(tagName string) Target {
	return Target{Kind: TargetKindTag, Name: tagName}
}

// SchemeBranchTarget returns a target converging to a scheme branch, optionally through a
// cross-repository pull request.
func SchemeBranchTarget(branchName string, pullRequestID string) Target {
	return Target{Kind: TargetKindSchemeBranch, Name: branchName, PullRequestID: pullRequestID}
}

// WithTimestamp returns a copy of the target pinned to the given timestamp.
func (target Target) WithTimestamp(timestamp string) Target {
	target.Timestamp = timestamp
	return target
}

// IsCrossRepository reports whether the run fetches a pull request into a local branch.
func (target Target) IsCrossRepository() bool {
	return target.Kind == TargetKindSchemeBranch && len(target.PullRequestID) > 0
}

// CrossRepositoryBranchName names the local branch a pull request is fetched into.
func CrossRepositoryBranchName(pullRequestID string) string {
	return fmt.Sprintf(crossRepositoryBranchTemplateConstant, pullRequestID)
}
