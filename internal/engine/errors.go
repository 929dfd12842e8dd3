package engine

import "errors"

// ErrConservationViolation is the distinguished fatal error raised
// when a village's wood, food or money goes negative — an
// implementation bug, never a recoverable condition. It is the only
// conservation check: totals across villages are not compared
// between phases.
// Auction non-convergence surfaces separately as
// market.ErrNonConvergence; callers can errors.Is against it directly.
var ErrConservationViolation = errors.New("engine: conservation invariant violated")
