package evoting

const (
	StatusOngoing = "ongoing"
	StatusEnded   = "ended"

	MinRating = 0
	MaxRating = 10
)

// Voter is an address that has passed the eligibility check.
type Voter struct {
	Address  string `json:"address"`
	Eligible bool   `json:"eligible"`
	Token    string `json:"token"`
}

// Election is a voting event owned by an admin address. Threshold is the number of signatures a
// candidate needs before it is approved.
type Election struct {
	ElectionID  string `json:"electionId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Threshold   int    `json:"threshold"`
	Admin       string `json:"admin"`
	Status      string `json:"status"`
	Fee         int    `json:"fee,omitempty"`
}

// Ended reports whether the election has been closed by its admin.
func (e *Election) Ended() bool {
	return e.Status == StatusEnded
}

// RatedVote is a single voter's rating of a candidate.
type RatedVote struct {
	Voter  string `json:"voter"`
	Rating int    `json:"rating"`
}

// Candidate stands in exactly one election. Votes preserve the order in which they were cast.
type Candidate struct {
	ElectionID  string      `json:"electionId"`
	CandidateID string      `json:"candidateId"`
	Name        string      `json:"name"`
	Manifesto   string      `json:"manifesto"`
	FeePaid     bool        `json:"fee_paid"`
	SignCount   int         `json:"sign_count"`
	Approved    bool        `json:"approved"`
	Votes       []RatedVote `json:"votes"`
}

func (c *Candidate) hasVoteFrom(voter string) bool {
	for _, v := range c.Votes {
		if v.Voter == voter {
			return true
		}
	}
	return false
}

func (c *Candidate) clone() *Candidate {
	cp := *c
	cp.Votes = append([]RatedVote{}, c.Votes...)
	return &cp
}

// Dispute is a complaint filed against an election.
type Dispute struct {
	DisputeID      string `json:"disputeId"`
	ElectionID     string `json:"electionId"`
	Reason         string `json:"reason"`
	Resolved       bool   `json:"resolved"`
	ResultAdjusted bool   `json:"result_adjusted"`
}

// signatureKey identifies one voter's endorsement of one candidate.
type signatureKey struct {
	Voter       string
	ElectionID  string
	CandidateID string
}

// ElectionParams carries the caller-supplied fields of a new election. ElectionID is only set when
// seeding from a fixture; the store generates one otherwise.
type ElectionParams struct {
	ElectionID  string
	Name        string
	Description string
	StartTime   string
	EndTime     string
	Threshold   int
	Admin       string
	Fee         int
}

// CandidateParams carries the caller-supplied fields of a new candidate.
type CandidateParams struct {
	ElectionID  string
	CandidateID string
	Name        string
	Manifesto   string
	Fee         int
}

// Rating pairs a candidate with the score a voter gives it.
type Rating struct {
	CandidateID string `json:"candidateId"`
	Rating      int    `json:"rating"`
}

// VoteReceipt reports how many of the submitted ratings were recorded.
type VoteReceipt struct {
	Recorded int
	Skipped  int
}

// EndReceipt is returned when an election is closed.
type EndReceipt struct {
	Election           Election
	UnresolvedDisputes int
}

// SignReceipt is the candidate's state after an accepted signature.
type SignReceipt struct {
	SignCount int
	Approved  bool
}
