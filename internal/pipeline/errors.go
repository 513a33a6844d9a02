package pipeline

import "errors"

// ErrUpstreamUnavailable is the only error orchestrate can return: a market
// data or agent dispatch failure it could not locally recover from. Every
// other failure mode degrades to a default and the pipeline still produces
// a FinalDecision.
var ErrUpstreamUnavailable = errors.New("pipeline: upstream unavailable")
