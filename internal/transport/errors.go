package transport

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/pkg/utils"
)

// classify maps a gRPC error to the §7 taxonomy: codes.NotFound becomes
// absence (nil, nil) at the caller, everything retriable becomes
// KindTransient, everything else KindMalformed — network errors must be
// reported distinctly from absence per §6.
func classify(err error) (retriable bool, notFound bool, mapped error) {
	if err == nil {
		return false, false, nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return false, false, utils.NewReplayError(utils.KindMalformed, "transport: non-status error", err)
	}
	switch st.Code() {
	case codes.NotFound:
		return false, true, nil
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
		return true, false, utils.NewReplayError(utils.KindTransient, "transport: "+st.Message(), err)
	default:
		return false, false, utils.NewReplayError(utils.KindMalformed, "transport: "+st.Message(), err)
	}
}

// IsNotFound reports whether err represents §7's "chain data absent"
// case, as opposed to a genuine transport failure.
func IsNotFound(err error) bool {
	_, notFound, _ := classify(err)
	return notFound
}

// IsTransient reports whether err is a rate-limit / unavailable failure
// eligible for the bounded-backoff retry of §6.
func IsTransient(err error) bool {
	var re *utils.ReplayError
	if errors.As(err, &re) {
		return re.Kind == utils.KindTransient
	}
	return false
}
