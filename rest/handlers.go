package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	evoting "github.com/jicksta/evoting-mock"
)

// statusFor maps store errors onto the status codes the frontend expects.
func statusFor(err error) int {
	switch {
	case errors.Is(err, evoting.ErrElectionNotFound),
		errors.Is(err, evoting.ErrCandidateNotFound),
		errors.Is(err, evoting.ErrDisputeNotFound):
		return http.StatusNotFound
	case errors.Is(err, evoting.ErrVoterNotEligible),
		errors.Is(err, evoting.ErrNotAdmin):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// bind decodes the JSON body into req, answering 400 itself when that fails.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) eligibilityCheck(c *gin.Context) {
	req := &eligibilityRequest{}
	if !bind(c, req) {
		return
	}
	voter, err := s.store.RegisterVoter(req.IDInfo, req.VoterAddress)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"eligible":      voter.Eligible,
		"voter_address": voter.Address,
		"token":         voter.Token,
	})
}

func (s *Server) registerElection(c *gin.Context) {
	req := &registerElectionRequest{}
	if !bind(c, req) {
		return
	}
	election, err := s.store.RegisterElection(evoting.ElectionParams{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Threshold:   int(req.Threshold),
		Admin:       req.Admin,
		Fee:         int(req.Fee),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	s.logger.Debug("election registered", "electionId", election.ElectionID)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Election registered successfully",
		"electionId": election.ElectionID,
	})
}

func (s *Server) registerCandidate(c *gin.Context) {
	req := &registerCandidateRequest{}
	if !bind(c, req) {
		return
	}
	candidate, err := s.store.RegisterCandidate(evoting.CandidateParams{
		ElectionID: req.ElectionID,
		Name:       req.Name,
		Manifesto:  req.Manifesto,
		Fee:        int(req.Fee),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Candidate registered successfully",
		"candidateId": candidate.CandidateID,
	})
}

func (s *Server) signCandidate(c *gin.Context) {
	req := &signCandidateRequest{}
	if !bind(c, req) {
		return
	}
	receipt, err := s.store.SignCandidate(req.VoterAddress, req.ElectionID, req.CandidateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Candidate signed successfully",
		"sign_count": receipt.SignCount,
		"approved":   receipt.Approved,
	})
}

func (s *Server) validateCandidate(c *gin.Context) {
	req := &validateCandidateRequest{}
	if !bind(c, req) {
		return
	}
	candidate, err := s.store.ValidateCandidate(req.ElectionID, req.CandidateID)
	if errors.Is(err, evoting.ErrBelowThreshold) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"approved":   false,
			"sign_count": candidate.SignCount,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Candidate validated successfully",
		"approved":   candidate.Approved,
		"sign_count": candidate.SignCount,
	})
}

func (s *Server) vote(c *gin.Context) {
	req := &voteRequest{}
	if !bind(c, req) {
		return
	}
	receipt, err := s.store.Vote(req.VoterAddress, req.ElectionID, req.ratings())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Votes recorded successfully",
		"recorded": receipt.Recorded,
		"skipped":  receipt.Skipped,
	})
}

func (s *Server) endElection(c *gin.Context) {
	req := &endElectionRequest{}
	if !bind(c, req) {
		return
	}
	receipt, err := s.store.EndElection(req.ElectionID, req.Admin)
	if err != nil {
		respondError(c, err)
		return
	}
	s.logger.Info("election ended", "electionId", req.ElectionID, "unresolvedDisputes", receipt.UnresolvedDisputes)
	c.JSON(http.StatusOK, gin.H{
		"message":             "Election ended successfully",
		"electionId":          receipt.Election.ElectionID,
		"status":              receipt.Election.Status,
		"unresolved_disputes": receipt.UnresolvedDisputes,
	})
}

func (s *Server) results(c *gin.Context) {
	electionID := c.Query("electionId")
	if electionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "electionId: " + evoting.ErrMissingField.Error()})
		return
	}
	results, err := s.store.Results(electionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resultsResponse{
		ElectionID: results.ElectionID,
		Status:     results.Status,
		Results:    results.Ranking,
		Winner:     results.Winner,
	})
}

func (s *Server) fileDispute(c *gin.Context) {
	req := &disputeRequest{}
	if !bind(c, req) {
		return
	}
	dispute, err := s.store.FileDispute(req.ElectionID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Dispute filed successfully",
		"disputeId": dispute.DisputeID,
	})
}

func (s *Server) resolveDispute(c *gin.Context) {
	req := &resolveDisputeRequest{}
	if !bind(c, req) {
		return
	}
	dispute, err := s.store.ResolveDispute(req.DisputeID, req.Valid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Dispute resolved successfully",
		"dispute": dispute,
	})
}

func (s *Server) listElections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"elections": s.store.GetElections()})
}

func (s *Server) getElection(c *gin.Context) {
	electionID := c.Param("electionID")
	election, err := s.store.GetElection(electionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cannot find election with ID " + electionID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"election": election})
}

func (s *Server) listCandidates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"candidates": s.store.GetCandidates(c.Query("electionId"))})
}

func (s *Server) listVoters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"voters": s.store.Voters()})
}

func (s *Server) listDisputes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"disputes": s.store.GetDisputes()})
}
