package evoting

import "sort"

// CandidateResult is one row of an election's standings.
type CandidateResult struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	TotalRating int    `json:"total_rating"`
	VoteCount   int    `json:"vote_count"`
	Ratings     []int  `json:"-"`
}

// ElectionResults ranks an election's candidates by total rating. Winner is only filled in once the
// election has ended, and only when the store is configured to report one.
type ElectionResults struct {
	ElectionID string
	Status     string
	Ranking    []CandidateResult
	Winner     *CandidateResult
}

// Tally sums each candidate's ratings and orders them by total rating, highest first. Candidates
// with equal totals keep the order in which they were registered.
func Tally(candidates []*Candidate) []CandidateResult {
	ranking := make([]CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		result := CandidateResult{
			CandidateID: c.CandidateID,
			Name:        c.Name,
			VoteCount:   len(c.Votes),
			Ratings:     make([]int, 0, len(c.Votes)),
		}
		for _, v := range c.Votes {
			result.TotalRating += v.Rating
			result.Ratings = append(result.Ratings, v.Rating)
		}
		ranking = append(ranking, result)
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalRating > ranking[j].TotalRating
	})
	return ranking
}

func (ms *MemoryStore) Results(electionID string) (*ElectionResults, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	entry, err := ms.entry(electionID)
	if err != nil {
		return nil, err
	}
	results := &ElectionResults{
		ElectionID: electionID,
		Status:     entry.election.Status,
		Ranking:    Tally(entry.candidates),
	}
	if ms.opts.IncludeWinner && entry.election.Ended() && len(results.Ranking) > 0 {
		winner := results.Ranking[0]
		results.Winner = &winner
	}
	return results, nil
}
