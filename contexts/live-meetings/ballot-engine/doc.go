// Package ballotengine implements the meeting lifecycle and real-time
// polling engine inside the live-meetings context.
//
// The module owns meeting/participant/poll orchestration, the anonymous
// vote tally, and the terminal report-then-purge workflow. It keeps
// business rules in application/domain layers and isolates infrastructure
// concerns behind ports and adapters.
package ballotengine
