package evoting

import (
	"fmt"
	"sync"
)

type electionEntry struct {
	election   *Election
	candidates []*Candidate
	byID       map[string]*Candidate
}

// MemoryStore is an ElectionStore kept entirely in process memory. One lock guards every map, so
// each operation observes and leaves a consistent state.
type MemoryStore struct {
	mu sync.RWMutex

	opts       Options
	newID      IDGenerator
	newAddress func() (string, error)

	voters        map[string]*Voter
	voterOrder    []string
	elections     map[string]*electionEntry
	electionOrder []string
	signatures    map[signatureKey]struct{}
	disputes      map[string]*Dispute
	disputeOrder  []string
}

// MemoryStoreOption customizes a MemoryStore at construction.
type MemoryStoreOption func(*MemoryStore)

// WithIDGenerator replaces the uuid generator used for elections, candidates and disputes.
func WithIDGenerator(gen IDGenerator) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.newID = gen
	}
}

// WithAddressGenerator replaces the generator used when voter addresses are minted server-side.
func WithAddressGenerator(gen func() (string, error)) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.newAddress = gen
	}
}

func NewMemoryStore(opts Options, storeOpts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		opts:       opts.withDefaults(),
		newID:      NewUUID,
		newAddress: GenerateVoterAddress,
		voters:     make(map[string]*Voter),
		elections:  make(map[string]*electionEntry),
		signatures: make(map[signatureKey]struct{}),
		disputes:   make(map[string]*Dispute),
	}
	for _, opt := range storeOpts {
		opt(ms)
	}
	return ms
}

// Options returns the behavior switches the store was built with.
func (ms *MemoryStore) Options() Options {
	return ms.opts
}

func (ms *MemoryStore) RegisterVoter(idInfo map[string]any, address string) (*Voter, error) {
	if len(idInfo) == 0 {
		return nil, fmt.Errorf("id_info: %w", ErrMissingField)
	}
	if ms.opts.VoterAddressMode == AddressModeGenerate || address == "" {
		generated, err := ms.newAddress()
		if err != nil {
			return nil, err
		}
		address = generated
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	voter, found := ms.voters[address]
	if !found {
		voter = &Voter{Address: address}
		ms.voters[address] = voter
		ms.voterOrder = append(ms.voterOrder, address)
	}
	voter.Eligible = true
	voter.Token = ms.opts.EligibilityToken
	cp := *voter
	return &cp, nil
}

func (ms *MemoryStore) Voters() []Voter {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	result := make([]Voter, 0, len(ms.voterOrder))
	for _, address := range ms.voterOrder {
		result = append(result, *ms.voters[address])
	}
	return result
}

func (ms *MemoryStore) RegisterElection(params ElectionParams) (*Election, error) {
	if params.Admin == "" {
		return nil, fmt.Errorf("admin: %w", ErrMissingField)
	}
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = ms.opts.DefaultThreshold
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	electionID := params.ElectionID
	if electionID == "" {
		electionID = ms.newID("election")
	}
	if _, taken := ms.elections[electionID]; taken {
		return nil, fmt.Errorf("election %s: %w", electionID, ErrIDTaken)
	}
	election := &Election{
		ElectionID:  electionID,
		Name:        params.Name,
		Description: params.Description,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Threshold:   threshold,
		Admin:       params.Admin,
		Status:      StatusOngoing,
		Fee:         params.Fee,
	}
	ms.elections[electionID] = &electionEntry{
		election: election,
		byID:     make(map[string]*Candidate),
	}
	ms.electionOrder = append(ms.electionOrder, electionID)
	cp := *election
	return &cp, nil
}

func (ms *MemoryStore) GetElection(electionID string) (*Election, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	entry, err := ms.entry(electionID)
	if err != nil {
		return nil, err
	}
	cp := *entry.election
	return &cp, nil
}

func (ms *MemoryStore) GetElections() []Election {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	result := make([]Election, 0, len(ms.electionOrder))
	for _, electionID := range ms.electionOrder {
		result = append(result, *ms.elections[electionID].election)
	}
	return result
}

func (ms *MemoryStore) EndElection(electionID, admin string) (*EndReceipt, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	entry, err := ms.entry(electionID)
	if err != nil {
		return nil, err
	}
	if ms.opts.RequireAdminToEnd && admin != entry.election.Admin {
		return nil, ErrNotAdmin
	}
	entry.election.Status = StatusEnded

	unresolved := 0
	for _, dispute := range ms.disputes {
		if dispute.ElectionID == electionID && !dispute.Resolved {
			unresolved++
		}
	}
	return &EndReceipt{Election: *entry.election, UnresolvedDisputes: unresolved}, nil
}

func (ms *MemoryStore) RegisterCandidate(params CandidateParams) (*Candidate, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	entry, err := ms.entry(params.ElectionID)
	if err != nil {
		return nil, err
	}
	if ms.opts.UniqueCandidateNames {
		for _, existing := range entry.candidates {
			if existing.Name == params.Name {
				return nil, fmt.Errorf("%q: %w", params.Name, ErrDuplicateCandidate)
			}
		}
	}
	candidateID := params.CandidateID
	if candidateID == "" {
		candidateID = ms.newID("candidate")
	}
	if _, taken := entry.byID[candidateID]; taken {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, ErrIDTaken)
	}

	candidate := &Candidate{
		ElectionID:  params.ElectionID,
		CandidateID: candidateID,
		Name:        params.Name,
		Manifesto:   params.Manifesto,
		FeePaid:     params.Fee > 0,
		Votes:       []RatedVote{},
	}
	entry.candidates = append(entry.candidates, candidate)
	entry.byID[candidateID] = candidate
	return candidate.clone(), nil
}

// GetCandidates lists the candidates of one election, or of every election when electionID is empty.
func (ms *MemoryStore) GetCandidates(electionID string) []Candidate {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	result := []Candidate{}
	for _, id := range ms.electionOrder {
		if electionID != "" && id != electionID {
			continue
		}
		for _, candidate := range ms.elections[id].candidates {
			result = append(result, *candidate.clone())
		}
	}
	return result
}

func (ms *MemoryStore) SignCandidate(voter, electionID, candidateID string) (*SignReceipt, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if !ms.eligible(voter) {
		return nil, fmt.Errorf("%s: %w", voter, ErrVoterNotEligible)
	}
	entry, candidate, err := ms.candidate(electionID, candidateID)
	if err != nil {
		return nil, err
	}
	key := signatureKey{Voter: voter, ElectionID: electionID, CandidateID: candidateID}
	if _, signed := ms.signatures[key]; signed {
		return nil, ErrDuplicateSignature
	}

	ms.signatures[key] = struct{}{}
	candidate.SignCount++
	if candidate.SignCount >= entry.election.Threshold {
		candidate.Approved = true
	}
	return &SignReceipt{SignCount: candidate.SignCount, Approved: candidate.Approved}, nil
}

// ValidateCandidate re-checks a candidate against its election's threshold. A candidate below the
// threshold is returned alongside ErrBelowThreshold.
func (ms *MemoryStore) ValidateCandidate(electionID, candidateID string) (*Candidate, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	entry, candidate, err := ms.candidate(electionID, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.SignCount < entry.election.Threshold {
		return candidate.clone(), ErrBelowThreshold
	}
	candidate.Approved = true
	return candidate.clone(), nil
}

// Vote records each rating unless the candidate is unknown or already rated by this voter. With
// rating validation on, a single out-of-range rating rejects the whole ballot.
func (ms *MemoryStore) Vote(voter, electionID string, ratings []Rating) (*VoteReceipt, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if !ms.eligible(voter) {
		return nil, fmt.Errorf("%s: %w", voter, ErrVoterNotEligible)
	}
	entry, err := ms.entry(electionID)
	if err != nil {
		return nil, err
	}
	if ms.opts.RatingValidation {
		for _, r := range ratings {
			if r.Rating < MinRating || r.Rating > MaxRating {
				return nil, fmt.Errorf("candidate %s rated %d: %w", r.CandidateID, r.Rating, ErrRatingOutOfRange)
			}
		}
	}

	receipt := &VoteReceipt{}
	for _, r := range ratings {
		candidate, found := entry.byID[r.CandidateID]
		if !found || candidate.hasVoteFrom(voter) {
			receipt.Skipped++
			continue
		}
		candidate.Votes = append(candidate.Votes, RatedVote{Voter: voter, Rating: r.Rating})
		receipt.Recorded++
	}
	return receipt, nil
}

func (ms *MemoryStore) FileDispute(electionID, reason string) (*Dispute, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, err := ms.entry(electionID); err != nil {
		return nil, err
	}
	dispute := &Dispute{
		DisputeID:  ms.newID("dispute"),
		ElectionID: electionID,
		Reason:     reason,
	}
	ms.disputes[dispute.DisputeID] = dispute
	ms.disputeOrder = append(ms.disputeOrder, dispute.DisputeID)
	cp := *dispute
	return &cp, nil
}

// ResolveDispute closes a dispute. Neither flag is ever cleared once set.
func (ms *MemoryStore) ResolveDispute(disputeID string, valid bool) (*Dispute, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	dispute, found := ms.disputes[disputeID]
	if !found {
		return nil, fmt.Errorf("dispute %s: %w", disputeID, ErrDisputeNotFound)
	}
	dispute.Resolved = true
	dispute.ResultAdjusted = dispute.ResultAdjusted || valid
	cp := *dispute
	return &cp, nil
}

func (ms *MemoryStore) GetDisputes() []Dispute {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	result := make([]Dispute, 0, len(ms.disputeOrder))
	for _, disputeID := range ms.disputeOrder {
		result = append(result, *ms.disputes[disputeID])
	}
	return result
}

func (ms *MemoryStore) Counts() StoreCounts {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	counts := StoreCounts{
		Elections: len(ms.elections),
		Voters:    len(ms.voters),
		Disputes:  len(ms.disputes),
	}
	for _, entry := range ms.elections {
		counts.Candidates += len(entry.candidates)
	}
	return counts
}

// entry and the helpers below expect ms.mu to be held.
func (ms *MemoryStore) entry(electionID string) (*electionEntry, error) {
	entry, found := ms.elections[electionID]
	if !found {
		return nil, fmt.Errorf("election %s: %w", electionID, ErrElectionNotFound)
	}
	return entry, nil
}

func (ms *MemoryStore) candidate(electionID, candidateID string) (*electionEntry, *Candidate, error) {
	entry, found := ms.elections[electionID]
	if !found {
		return nil, nil, fmt.Errorf("candidate %s in election %s: %w", candidateID, electionID, ErrCandidateNotFound)
	}
	candidate, found := entry.byID[candidateID]
	if !found {
		return nil, nil, fmt.Errorf("candidate %s in election %s: %w", candidateID, electionID, ErrCandidateNotFound)
	}
	return entry, candidate, nil
}

func (ms *MemoryStore) eligible(voter string) bool {
	v, found := ms.voters[voter]
	return found && v.Eligible
}
