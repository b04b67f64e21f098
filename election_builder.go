package evoting

import "fmt"

// Ballot is one voter's ratings within a single election.
type Ballot struct {
	VoterID string
	Ratings []Rating
}

// ElectionBuilder exposes a simple builder-pattern DSL for building up an election progressively.
type ElectionBuilder struct {
	ElectionID string
	Name       string
	Admin      string
	Threshold  int
	Candidates [][2]string
	Ballots    []*Ballot
}

func NewElectionBuilder(optionalElectionID ...string) *ElectionBuilder {
	var electionID string
	if len(optionalElectionID) == 1 {
		electionID = optionalElectionID[0]
	} else {
		electionID = "election"
	}
	return &ElectionBuilder{
		ElectionID: electionID,
		Name:       electionID,
		Admin:      "admin",
	}
}

// WithThreshold sets the signature threshold of the election.
func (builder *ElectionBuilder) WithThreshold(threshold int) *ElectionBuilder {
	builder.Threshold = threshold
	return builder
}

// Candidate adds a candidate whose id and name are both candidateID.
func (builder *ElectionBuilder) Candidate(candidateID string, optionalName ...string) *ElectionBuilder {
	name := candidateID
	if len(optionalName) == 1 {
		name = optionalName[0]
	}
	builder.Candidates = append(builder.Candidates, [2]string{candidateID, name})
	return builder
}

// Ballot appends a voter's ratings.
func (builder *ElectionBuilder) Ballot(voterID string, ratings []Rating) *ElectionBuilder {
	builder.Ballots = append(builder.Ballots, &Ballot{VoterID: voterID, Ratings: ratings})
	return builder
}

// Vote is similar to Ballot but takes "candidate=rating" strings, e.g. Vote("V1", "A=7", "B=3").
// It panics on a malformed rating since it is meant for literals in tests.
func (builder *ElectionBuilder) Vote(voterID string, candidateRatings ...string) *ElectionBuilder {
	ratings := make([]Rating, 0, len(candidateRatings))
	for _, token := range candidateRatings {
		r, err := parseRating(token)
		if err != nil {
			panic(err)
		}
		ratings = append(ratings, r)
	}
	return builder.Ballot(voterID, ratings)
}

// Apply registers the election, its candidates and voters in store, then casts every ballot.
func (builder *ElectionBuilder) Apply(store ElectionStore) error {
	_, err := store.RegisterElection(ElectionParams{
		ElectionID: builder.ElectionID,
		Name:       builder.Name,
		Threshold:  builder.Threshold,
		Admin:      builder.Admin,
	})
	if err != nil {
		return err
	}
	for _, c := range builder.Candidates {
		_, err := store.RegisterCandidate(CandidateParams{
			ElectionID:  builder.ElectionID,
			CandidateID: c[0],
			Name:        c[1],
		})
		if err != nil {
			return err
		}
	}
	for _, ballot := range builder.Ballots {
		voter, err := store.RegisterVoter(map[string]any{"voterId": ballot.VoterID}, ballot.VoterID)
		if err != nil {
			return fmt.Errorf("registering %s: %w", ballot.VoterID, err)
		}
		if _, err := store.Vote(voter.Address, builder.ElectionID, ballot.Ratings); err != nil {
			return fmt.Errorf("ballot of %s: %w", ballot.VoterID, err)
		}
	}
	return nil
}

// Store returns a fresh MemoryStore with sequential ids holding only this election.
func (builder *ElectionBuilder) Store(opts Options) (*MemoryStore, error) {
	store := NewMemoryStore(opts, WithIDGenerator(SequentialIDs()))
	if err := builder.Apply(store); err != nil {
		return nil, err
	}
	return store, nil
}

// Results is simply a shorthand for Store(DefaultOptions()) followed by Results().
func (builder *ElectionBuilder) Results() (*ElectionResults, error) {
	store, err := builder.Store(DefaultOptions())
	if err != nil {
		return nil, err
	}
	return store.Results(builder.ElectionID)
}
