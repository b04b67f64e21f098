package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	evoting "github.com/jicksta/evoting-mock"
)

// flexInt accepts a JSON number or a numeric string, since form inputs in the dapp post either.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// feeAmount is the optional fee typed into a free-text field. It reads the leading number of the
// value ("0.5", "1 EGLD") and rounds fractions up so any positive fee counts as paid. Anything else
// decodes to 0 rather than failing the registration.
type feeAmount int

func (f *feeAmount) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var amount float64
	switch v := raw.(type) {
	case float64:
		amount = v
	case string:
		if fields := strings.Fields(v); len(fields) > 0 {
			if parsed, err := strconv.ParseFloat(fields[0], 64); err == nil {
				amount = parsed
			}
		}
	}
	switch {
	case math.IsNaN(amount) || amount <= 0:
		*f = 0
	case amount > math.MaxInt32:
		*f = math.MaxInt32
	default:
		*f = feeAmount(math.Ceil(amount))
	}
	return nil
}

type eligibilityRequest struct {
	IDInfo       map[string]any `json:"id_info"`
	VoterAddress string         `json:"voter_address"`
}

type registerElectionRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Threshold   flexInt   `json:"threshold"`
	Admin       string    `json:"admin"`
	Fee         feeAmount `json:"fee"`
}

type registerCandidateRequest struct {
	ElectionID string    `json:"electionId"`
	Name       string    `json:"name"`
	Manifesto  string    `json:"manifesto"`
	Fee        feeAmount `json:"fee"`
}

type signCandidateRequest struct {
	VoterAddress string `json:"voter_address"`
	ElectionID   string `json:"electionId"`
	CandidateID  string `json:"candidateId"`
}

type voteOption struct {
	CandidateID string  `json:"candidateId"`
	Rating      flexInt `json:"rating"`
}

type voteRequest struct {
	VoterAddress string       `json:"voter_address"`
	ElectionID   string       `json:"electionId"`
	Votes        []voteOption `json:"votes"`
}

func (req voteRequest) ratings() []evoting.Rating {
	ratings := make([]evoting.Rating, 0, len(req.Votes))
	for _, v := range req.Votes {
		ratings = append(ratings, evoting.Rating{CandidateID: v.CandidateID, Rating: int(v.Rating)})
	}
	return ratings
}

type endElectionRequest struct {
	ElectionID string `json:"electionId"`
	Admin      string `json:"admin"`
}

type disputeRequest struct {
	ElectionID string `json:"electionId"`
	Reason     string `json:"reason"`
}

type resolveDisputeRequest struct {
	DisputeID string `json:"disputeId"`
	Valid     bool   `json:"valid"`
}

type validateCandidateRequest struct {
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`
}

type resultsResponse struct {
	ElectionID string                    `json:"electionId"`
	Status     string                    `json:"status"`
	Results    []evoting.CandidateResult `json:"results"`
	Winner     *evoting.CandidateResult  `json:"winner,omitempty"`
}
