package evoting

import "errors"

var (
	ErrMissingField       = errors.New("missing required field")
	ErrIDTaken            = errors.New("id already in use")
	ErrElectionNotFound   = errors.New("election not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrDisputeNotFound    = errors.New("dispute not found")
	ErrVoterNotEligible   = errors.New("voter not eligible")
	ErrDuplicateSignature = errors.New("voter has already signed this candidate")
	ErrDuplicateCandidate = errors.New("candidate name already registered in this election")
	ErrRatingOutOfRange   = errors.New("rating must be between 0 and 10")
	ErrNotAdmin           = errors.New("only the election admin can end the election")
	ErrBelowThreshold     = errors.New("candidate has not reached the signature threshold")
)
