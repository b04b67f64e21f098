package evoting

// ElectionStore holds every record the mock backend knows about. Mutations check all of their
// preconditions before changing anything, so a failed call leaves the store untouched.
type ElectionStore interface {
	RegisterVoter(idInfo map[string]any, address string) (*Voter, error)
	Voters() []Voter

	RegisterElection(ElectionParams) (*Election, error)
	GetElection(electionID string) (*Election, error)
	GetElections() []Election
	EndElection(electionID, admin string) (*EndReceipt, error)

	RegisterCandidate(CandidateParams) (*Candidate, error)
	GetCandidates(electionID string) []Candidate
	SignCandidate(voter, electionID, candidateID string) (*SignReceipt, error)
	ValidateCandidate(electionID, candidateID string) (*Candidate, error)

	Vote(voter, electionID string, ratings []Rating) (*VoteReceipt, error)
	Results(electionID string) (*ElectionResults, error)

	FileDispute(electionID, reason string) (*Dispute, error)
	ResolveDispute(disputeID string, valid bool) (*Dispute, error)
	GetDisputes() []Dispute

	Counts() StoreCounts
}

// StoreCounts is a snapshot of how many records of each kind are held.
type StoreCounts struct {
	Elections  int
	Candidates int
	Voters     int
	Disputes   int
}
