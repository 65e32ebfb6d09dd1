package library

import "errors"

var (
	ErrCollision         = errors.New("two or more units map to the same target name")
	ErrDestinationExists = errors.New("destination already exists")
	ErrResolutionUnknown = errors.New("cannot determine resolution")
	ErrAboveLadder       = errors.New("height exceeds the resolution ladder")
	ErrEpisodeUnknown    = errors.New("cannot determine season and episode")
	ErrNoIdentifier      = errors.New("no imdb id in folder name")
)

// Outcome classifies how a library item left Fix.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSkipped
	OutcomeCompliant
	OutcomePlanned
	OutcomeFixed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCompliant:
		return "compliant"
	case OutcomePlanned:
		return "planned"
	case OutcomeFixed:
		return "fixed"
	default:
		return "failed"
	}
}
