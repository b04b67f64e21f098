package evoting

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// FixtureSummary counts what LoadFixture put into a store.
type FixtureSummary struct {
	ElectionIDs []string
	Candidates  int
	Voters      int
	Recorded    int
	Skipped     int
}

var whitespaceSeparator = regexp.MustCompile(`\s+`)

// LoadFixture seeds a store from a Reader using the following line format:
//
//	election  <electionId> <threshold> <name...>
//	candidate <electionId> <candidateId> <name...>
//	<voterID> <electionId>:<candidateId>=<rating> ...
//
// For example:
//
//	election  council 2 Student Council
//	candidate council finn Finn the Human
//	candidate council jake Jake the Dog
//	VOTER_JAY council:finn=9 council:jake=4
//
// Blank lines and lines starting with # are ignored. Each voter passes the eligibility check before
// their ratings are cast, so in address-generating stores the voter ID is only a label.
func LoadFixture(store ElectionStore, reader io.Reader) (*FixtureSummary, error) {
	summary := &FixtureSummary{}
	voters := map[string]string{}
	scanner := bufio.NewScanner(reader)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := whitespaceSeparator.Split(line, -1)
		var err error
		switch tokens[0] {
		case "election":
			err = loadElectionLine(store, tokens, summary)
		case "candidate":
			err = loadCandidateLine(store, tokens, summary)
		default:
			err = loadBallotLine(store, tokens, voters, summary)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

func loadElectionLine(store ElectionStore, tokens []string, summary *FixtureSummary) error {
	if len(tokens) < 3 {
		return fmt.Errorf("election line needs an id and a threshold: %w", ErrMissingField)
	}
	threshold, err := strconv.Atoi(tokens[2])
	if err != nil {
		return fmt.Errorf("threshold %q: %w", tokens[2], err)
	}
	election, err := store.RegisterElection(ElectionParams{
		ElectionID: tokens[1],
		Name:       strings.Join(tokens[3:], " "),
		Threshold:  threshold,
		Admin:      "admin",
	})
	if err != nil {
		return err
	}
	summary.ElectionIDs = append(summary.ElectionIDs, election.ElectionID)
	return nil
}

func loadCandidateLine(store ElectionStore, tokens []string, summary *FixtureSummary) error {
	if len(tokens) < 3 {
		return fmt.Errorf("candidate line needs an election and a candidate id: %w", ErrMissingField)
	}
	name := strings.Join(tokens[3:], " ")
	if name == "" {
		name = tokens[2]
	}
	_, err := store.RegisterCandidate(CandidateParams{
		ElectionID:  tokens[1],
		CandidateID: tokens[2],
		Name:        name,
	})
	if err != nil {
		return err
	}
	summary.Candidates++
	return nil
}

func loadBallotLine(store ElectionStore, tokens []string, voters map[string]string, summary *FixtureSummary) error {
	voterID := tokens[0]
	address, known := voters[voterID]
	if !known {
		voter, err := store.RegisterVoter(map[string]any{"voterId": voterID}, voterID)
		if err != nil {
			return err
		}
		address = voter.Address
		voters[voterID] = address
		summary.Voters++
	}

	byElection := map[string][]Rating{}
	var order []string
	for _, token := range tokens[1:] {
		electionID, candidateRating, found := strings.Cut(token, ":")
		if !found {
			return fmt.Errorf("rating %q is not of the form election:candidate=rating", token)
		}
		r, err := parseRating(candidateRating)
		if err != nil {
			return err
		}
		if _, seen := byElection[electionID]; !seen {
			order = append(order, electionID)
		}
		byElection[electionID] = append(byElection[electionID], r)
	}
	for _, electionID := range order {
		receipt, err := store.Vote(address, electionID, byElection[electionID])
		if err != nil {
			return fmt.Errorf("ballot of %s: %w", voterID, err)
		}
		summary.Recorded += receipt.Recorded
		summary.Skipped += receipt.Skipped
	}
	return nil
}

// parseRating reads a "candidate=rating" token.
func parseRating(token string) (Rating, error) {
	candidateID, value, found := strings.Cut(token, "=")
	if !found || candidateID == "" {
		return Rating{}, fmt.Errorf("rating %q is not of the form candidate=rating", token)
	}
	rating, err := strconv.Atoi(value)
	if err != nil {
		return Rating{}, fmt.Errorf("rating %q: %w", token, err)
	}
	return Rating{CandidateID: candidateID, Rating: rating}, nil
}
