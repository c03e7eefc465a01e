package replay

import (
	"errors"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/pkg/utils"
)

// Classification is the post-execution label §7 attaches to a replay
// outcome, letting callers dispatch on what kind of divergence (if any)
// occurred without re-deriving it from raw errors or comparison scores.
type Classification string

const (
	ClassificationSuccess              Classification = "success"
	ClassificationHydrationGap         Classification = "hydration_gap"
	ClassificationBytecodeMismatch     Classification = "bytecode_mismatch"
	ClassificationVersionCheckFailure  Classification = "version_check_failure"
	ClassificationArgumentDecodingFail Classification = "argument_decoding_failure"
	ClassificationComparisonMismatch   Classification = "comparison_mismatch"
	ClassificationUnknown              Classification = "unknown"
)

// Classify derives a Classification from an execution error (if any) and
// the comparison outcome (if a comparison was run). execErr takes
// precedence: a failed local execution is classified by its error kind
// before any comparison is consulted.
func Classify(execErr error, cmp *Comparison) Classification {
	if execErr != nil {
		return classifyError(execErr)
	}
	if cmp != nil && (!cmp.StatusMatch || !cmp.SetsMatch || !cmp.VersionMatch || !cmp.DigestMatch) {
		return ClassificationComparisonMismatch
	}
	return ClassificationSuccess
}

func classifyError(err error) Classification {
	if kind, ok := utils.KindOf(err); ok {
		switch kind {
		case utils.KindHydrationGap:
			return ClassificationHydrationGap
		case utils.KindMalformed:
			return ClassificationBytecodeMismatch
		case utils.KindVersionCheck:
			return ClassificationVersionCheckFailure
		case utils.KindComparisonMismatch:
			return ClassificationComparisonMismatch
		}
	}
	var argErr *ArgumentDecodingError
	if errors.As(err, &argErr) {
		return ClassificationArgumentDecodingFail
	}
	return ClassificationUnknown
}

// ArgumentDecodingError marks a failure to resolve or decode a PTB
// command's arguments (malformed pure bytes, an out-of-range index)
// distinctly from a runtime-level execution failure.
type ArgumentDecodingError struct {
	Detail string
}

func (e *ArgumentDecodingError) Error() string { return "argument decoding: " + e.Detail }
