package object

import "fmt"

// ErrMarkSharedOnImmutable is returned by MarkShared when the target is
// already Immutable — disallowed per §8's boundary behaviors.
var ErrMarkSharedOnImmutable = fmt.Errorf("object: cannot mark an immutable object shared")

// VersionRegressionError reports an attempt to set an object's version
// to a value lower than its current one, violating the non-decreasing
// invariant in §3.
type VersionRegressionError struct {
	ID      Address
	Current Version
	Target  Version
}

func (e *VersionRegressionError) Error() string {
	return fmt.Sprintf("object %s: version regression %d -> %d", e.ID, e.Current, e.Target)
}

func NewVersionRegressionError(id Address, current, target Version) error {
	return &VersionRegressionError{ID: id, Current: current, Target: target}
}
