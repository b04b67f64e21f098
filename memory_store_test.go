package evoting

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryStore", func() {

	var store *MemoryStore
	var idInfo map[string]any

	BeforeEach(func() {
		store = NewMemoryStore(DefaultOptions(), WithIDGenerator(SequentialIDs()))
		idInfo = map[string]any{"fullName": "Finn Mertens", "birthdate": "2000-01-01"}
	})

	registerElection := func(threshold int) *Election {
		election, err := store.RegisterElection(ElectionParams{
			Name:        "Council",
			Description: "Student council",
			Threshold:   threshold,
			Admin:       "erd1admin",
		})
		Expect(err).To(Succeed())
		return election
	}

	registerCandidate := func(electionID, name string) *Candidate {
		candidate, err := store.RegisterCandidate(CandidateParams{ElectionID: electionID, Name: name, Manifesto: "More snacks"})
		Expect(err).To(Succeed())
		return candidate
	}

	eligible := func(address string) {
		_, err := store.RegisterVoter(idInfo, address)
		Expect(err).To(Succeed())
	}

	It("implements the ElectionStore interface", func() {
		var _ = ElectionStore(store)
	})

	It("reports its options with unset values defaulted", func() {
		opts := NewMemoryStore(Options{RatingValidation: true}).Options()
		Expect(opts).To(Equal(Options{
			RatingValidation: true,
			VoterAddressMode: AddressModeClient,
			DefaultThreshold: DefaultThreshold,
			EligibilityToken: DefaultEligibilityToken,
		}))
		Expect(store.Options()).To(Equal(DefaultOptions()))
	})

	Describe("#RegisterVoter", func() {
		It("requires identity information", func() {
			_, err := store.RegisterVoter(nil, "erd1voter")
			Expect(errors.Is(err, ErrMissingField)).To(BeTrue())
			Expect(store.Voters()).To(BeEmpty())
		})

		It("mints an address in client mode when none is supplied", func() {
			store = NewMemoryStore(DefaultOptions(), WithAddressGenerator(func() (string, error) {
				return "0xMINTED", nil
			}))
			voter, err := store.RegisterVoter(idInfo, "")
			Expect(err).To(Succeed())
			Expect(voter.Address).To(Equal("0xMINTED"))
			Expect(voter.Eligible).To(BeTrue())

			supplied, err := store.RegisterVoter(idInfo, "erd1voter")
			Expect(err).To(Succeed())
			Expect(supplied.Address).To(Equal("erd1voter"))
		})

		It("marks the voter eligible with the fixed token", func() {
			voter, err := store.RegisterVoter(idInfo, "erd1voter")
			Expect(err).To(Succeed())
			Expect(*voter).To(Equal(Voter{Address: "erd1voter", Eligible: true, Token: DefaultEligibilityToken}))
			Expect(store.Voters()).To(ConsistOf(*voter))
		})

		It("does not duplicate a voter checked twice", func() {
			eligible("erd1voter")
			eligible("erd1voter")
			Expect(store.Voters()).To(HaveLen(1))
		})

		It("mints addresses in generate mode", func() {
			opts := DefaultOptions()
			opts.VoterAddressMode = AddressModeGenerate
			next := 0
			store = NewMemoryStore(opts, WithAddressGenerator(func() (string, error) {
				next++
				return []string{"", "0xA", "0xB"}[next], nil
			}))
			first, err := store.RegisterVoter(idInfo, "ignored")
			Expect(err).To(Succeed())
			second, err := store.RegisterVoter(idInfo, "")
			Expect(err).To(Succeed())
			Expect(first.Address).To(Equal("0xA"))
			Expect(second.Address).To(Equal("0xB"))
		})
	})

	Describe("#RegisterElection", func() {
		It("requires an admin", func() {
			_, err := store.RegisterElection(ElectionParams{Name: "No admin"})
			Expect(errors.Is(err, ErrMissingField)).To(BeTrue())
			Expect(store.GetElections()).To(BeEmpty())
		})

		It("creates an ongoing election that can be retrieved", func() {
			created := registerElection(3)
			Expect(created.ElectionID).To(Equal("election_1"))
			Expect(created.Status).To(Equal(StatusOngoing))

			get, err := store.GetElection(created.ElectionID)
			Expect(err).To(Succeed())
			Expect(get.Name).To(Equal("Council"))
			Expect(get.Description).To(Equal("Student council"))
			Expect(get.Threshold).To(Equal(3))
		})

		It("defaults the threshold to 10", func() {
			Expect(registerElection(0).Threshold).To(Equal(10))
		})

		It("rejects a reused fixture id", func() {
			_, err := store.RegisterElection(ElectionParams{ElectionID: "fixed", Admin: "a"})
			Expect(err).To(Succeed())
			_, err = store.RegisterElection(ElectionParams{ElectionID: "fixed", Admin: "a"})
			Expect(errors.Is(err, ErrIDTaken)).To(BeTrue())
		})

		It("returns copies that do not alias stored state", func() {
			created := registerElection(1)
			created.Status = StatusEnded
			get, _ := store.GetElection(created.ElectionID)
			Expect(get.Status).To(Equal(StatusOngoing))
		})
	})

	Describe("#GetElection", func() {
		It("returns an error when an election hasn't been created", func() {
			result, err := store.GetElection("doesn't exist")
			Expect(result).To(BeNil())
			Expect(errors.Is(err, ErrElectionNotFound)).To(BeTrue())
		})
	})

	Describe("#RegisterCandidate", func() {
		It("returns an error when the election hasn't been created", func() {
			_, err := store.RegisterCandidate(CandidateParams{ElectionID: "missing", Name: "Finn"})
			Expect(errors.Is(err, ErrElectionNotFound)).To(BeTrue())
			Expect(store.GetCandidates("")).To(BeEmpty())
		})

		It("rejects a duplicate name within one election", func() {
			election := registerElection(1)
			registerCandidate(election.ElectionID, "Finn")
			_, err := store.RegisterCandidate(CandidateParams{ElectionID: election.ElectionID, Name: "Finn"})
			Expect(errors.Is(err, ErrDuplicateCandidate)).To(BeTrue())
		})

		It("allows duplicate names when the check is disabled", func() {
			opts := DefaultOptions()
			opts.UniqueCandidateNames = false
			store = NewMemoryStore(opts)
			election := registerElection(1)
			registerCandidate(election.ElectionID, "Finn")
			registerCandidate(election.ElectionID, "Finn")
			Expect(store.GetCandidates(election.ElectionID)).To(HaveLen(2))
		})

		It("records whether a fee was paid", func() {
			election := registerElection(1)
			paid, err := store.RegisterCandidate(CandidateParams{ElectionID: election.ElectionID, Name: "Finn", Fee: 5})
			Expect(err).To(Succeed())
			Expect(paid.FeePaid).To(BeTrue())
			Expect(registerCandidate(election.ElectionID, "Jake").FeePaid).To(BeFalse())
		})

		It("filters candidates by election", func() {
			first, second := registerElection(1), registerElection(1)
			registerCandidate(first.ElectionID, "Finn")
			registerCandidate(second.ElectionID, "Jake")
			registerCandidate(first.ElectionID, "Marceline")

			Expect(store.GetCandidates("")).To(HaveLen(3))
			names := []string{}
			for _, c := range store.GetCandidates(first.ElectionID) {
				names = append(names, c.Name)
			}
			Expect(names).To(Equal([]string{"Finn", "Marceline"}))
			Expect(store.GetCandidates("unknown")).To(BeEmpty())
		})
	})

	Describe("#SignCandidate", func() {
		var election *Election
		var candidate *Candidate

		BeforeEach(func() {
			election = registerElection(2)
			candidate = registerCandidate(election.ElectionID, "Finn")
		})

		It("refuses ineligible voters", func() {
			_, err := store.SignCandidate("stranger", election.ElectionID, candidate.CandidateID)
			Expect(errors.Is(err, ErrVoterNotEligible)).To(BeTrue())
		})

		It("refuses unknown candidates", func() {
			eligible("V1")
			_, err := store.SignCandidate("V1", election.ElectionID, "nobody")
			Expect(errors.Is(err, ErrCandidateNotFound)).To(BeTrue())
			_, err = store.SignCandidate("V1", "nowhere", candidate.CandidateID)
			Expect(errors.Is(err, ErrCandidateNotFound)).To(BeTrue())
		})

		It("counts one signature per voter", func() {
			eligible("V1")
			receipt, err := store.SignCandidate("V1", election.ElectionID, candidate.CandidateID)
			Expect(err).To(Succeed())
			Expect(receipt.SignCount).To(Equal(1))

			_, err = store.SignCandidate("V1", election.ElectionID, candidate.CandidateID)
			Expect(errors.Is(err, ErrDuplicateSignature)).To(BeTrue())
			Expect(store.GetCandidates(election.ElectionID)[0].SignCount).To(Equal(1))
		})

		It("approves the candidate exactly when the threshold is reached", func() {
			eligible("V1")
			eligible("V2")
			eligible("V3")
			receipt, _ := store.SignCandidate("V1", election.ElectionID, candidate.CandidateID)
			Expect(receipt.Approved).To(BeFalse())
			receipt, _ = store.SignCandidate("V2", election.ElectionID, candidate.CandidateID)
			Expect(receipt.Approved).To(BeTrue())
			receipt, _ = store.SignCandidate("V3", election.ElectionID, candidate.CandidateID)
			Expect(receipt).To(Equal(&SignReceipt{SignCount: 3, Approved: true}))
		})

		It("approves at once with a threshold of one", func() {
			single := registerElection(1)
			c := registerCandidate(single.ElectionID, "Jake")
			eligible("V")
			receipt, err := store.SignCandidate("V", single.ElectionID, c.CandidateID)
			Expect(err).To(Succeed())
			Expect(receipt).To(Equal(&SignReceipt{SignCount: 1, Approved: true}))
		})
	})

	Describe("#ValidateCandidate", func() {
		It("reports candidates below the threshold without approving them", func() {
			election := registerElection(2)
			candidate := registerCandidate(election.ElectionID, "Finn")
			validated, err := store.ValidateCandidate(election.ElectionID, candidate.CandidateID)
			Expect(errors.Is(err, ErrBelowThreshold)).To(BeTrue())
			Expect(validated.Approved).To(BeFalse())
		})

		It("keeps approved candidates approved", func() {
			election := registerElection(1)
			candidate := registerCandidate(election.ElectionID, "Finn")
			eligible("V1")
			_, err := store.SignCandidate("V1", election.ElectionID, candidate.CandidateID)
			Expect(err).To(Succeed())
			for i := 0; i < 2; i++ {
				validated, err := store.ValidateCandidate(election.ElectionID, candidate.CandidateID)
				Expect(err).To(Succeed())
				Expect(validated.Approved).To(BeTrue())
			}
		})

		It("refuses unknown candidates", func() {
			_, err := store.ValidateCandidate("nowhere", "nobody")
			Expect(errors.Is(err, ErrCandidateNotFound)).To(BeTrue())
		})
	})

	Describe("#Vote", func() {
		var election *Election
		var finn, jake *Candidate

		BeforeEach(func() {
			election = registerElection(1)
			finn = registerCandidate(election.ElectionID, "Finn")
			jake = registerCandidate(election.ElectionID, "Jake")
			eligible("V1")
		})

		It("refuses ineligible voters before looking at the election", func() {
			_, err := store.Vote("stranger", "nowhere", nil)
			Expect(errors.Is(err, ErrVoterNotEligible)).To(BeTrue())
		})

		It("returns an error when the election hasn't been created", func() {
			_, err := store.Vote("V1", "nowhere", nil)
			Expect(errors.Is(err, ErrElectionNotFound)).To(BeTrue())
		})

		It("records one vote per voter and candidate", func() {
			receipt, err := store.Vote("V1", election.ElectionID, []Rating{{finn.CandidateID, 7}})
			Expect(err).To(Succeed())
			Expect(receipt).To(Equal(&VoteReceipt{Recorded: 1}))

			receipt, err = store.Vote("V1", election.ElectionID, []Rating{{finn.CandidateID, 3}, {jake.CandidateID, 4}})
			Expect(err).To(Succeed())
			Expect(receipt).To(Equal(&VoteReceipt{Recorded: 1, Skipped: 1}))

			candidates := store.GetCandidates(election.ElectionID)
			Expect(candidates[0].Votes).To(Equal([]RatedVote{{Voter: "V1", Rating: 7}}))
			Expect(candidates[1].Votes).To(Equal([]RatedVote{{Voter: "V1", Rating: 4}}))
		})

		It("skips unknown candidates", func() {
			receipt, err := store.Vote("V1", election.ElectionID, []Rating{{"ghost", 5}, {jake.CandidateID, 5}})
			Expect(err).To(Succeed())
			Expect(receipt).To(Equal(&VoteReceipt{Recorded: 1, Skipped: 1}))
		})

		It("rejects the whole ballot when a rating is out of range", func() {
			_, err := store.Vote("V1", election.ElectionID, []Rating{{finn.CandidateID, 5}, {jake.CandidateID, 11}})
			Expect(errors.Is(err, ErrRatingOutOfRange)).To(BeTrue())
			for _, c := range store.GetCandidates(election.ElectionID) {
				Expect(c.Votes).To(BeEmpty())
			}
		})

		It("accepts any rating when validation is disabled", func() {
			opts := DefaultOptions()
			opts.RatingValidation = false
			store = NewMemoryStore(opts)
			e := registerElection(1)
			c := registerCandidate(e.ElectionID, "Finn")
			eligible("V1")
			receipt, err := store.Vote("V1", e.ElectionID, []Rating{{c.CandidateID, -4}})
			Expect(err).To(Succeed())
			Expect(receipt.Recorded).To(Equal(1))
		})
	})

	Describe("#EndElection", func() {
		It("requires the admin", func() {
			election := registerElection(1)
			_, err := store.EndElection(election.ElectionID, "impostor")
			Expect(errors.Is(err, ErrNotAdmin)).To(BeTrue())
			get, _ := store.GetElection(election.ElectionID)
			Expect(get.Status).To(Equal(StatusOngoing))
		})

		It("ends the election and counts unresolved disputes", func() {
			election := registerElection(1)
			other := registerElection(1)
			_, err := store.FileDispute(election.ElectionID, "ballot stuffing")
			Expect(err).To(Succeed())
			resolved, _ := store.FileDispute(election.ElectionID, "late polls")
			_, err = store.ResolveDispute(resolved.DisputeID, false)
			Expect(err).To(Succeed())
			_, err = store.FileDispute(other.ElectionID, "unrelated")
			Expect(err).To(Succeed())

			receipt, err := store.EndElection(election.ElectionID, "erd1admin")
			Expect(err).To(Succeed())
			Expect(receipt.Election.Status).To(Equal(StatusEnded))
			Expect(receipt.UnresolvedDisputes).To(Equal(1))
		})

		It("lets anyone end the election when admin checks are off", func() {
			opts := DefaultOptions()
			opts.RequireAdminToEnd = false
			store = NewMemoryStore(opts)
			election := registerElection(1)
			receipt, err := store.EndElection(election.ElectionID, "")
			Expect(err).To(Succeed())
			Expect(receipt.Election.Ended()).To(BeTrue())
		})

		It("returns an error when the election hasn't been created", func() {
			_, err := store.EndElection("nowhere", "erd1admin")
			Expect(errors.Is(err, ErrElectionNotFound)).To(BeTrue())
		})
	})

	Describe("disputes", func() {
		It("cannot be filed against unknown elections", func() {
			_, err := store.FileDispute("nowhere", "reason")
			Expect(errors.Is(err, ErrElectionNotFound)).To(BeTrue())
			Expect(store.GetDisputes()).To(BeEmpty())
		})

		It("are resolved with an optional result adjustment", func() {
			election := registerElection(1)
			valid, _ := store.FileDispute(election.ElectionID, "miscount")
			invalid, _ := store.FileDispute(election.ElectionID, "sore loser")

			resolved, err := store.ResolveDispute(valid.DisputeID, true)
			Expect(err).To(Succeed())
			Expect(resolved.Resolved).To(BeTrue())
			Expect(resolved.ResultAdjusted).To(BeTrue())

			resolved, err = store.ResolveDispute(invalid.DisputeID, false)
			Expect(err).To(Succeed())
			Expect(resolved.Resolved).To(BeTrue())
			Expect(resolved.ResultAdjusted).To(BeFalse())

			Expect(store.GetDisputes()).To(HaveLen(2))
		})

		It("never clear the adjustment flag", func() {
			election := registerElection(1)
			dispute, _ := store.FileDispute(election.ElectionID, "miscount")
			store.ResolveDispute(dispute.DisputeID, true)
			resolved, _ := store.ResolveDispute(dispute.DisputeID, false)
			Expect(resolved.ResultAdjusted).To(BeTrue())
		})

		It("cannot resolve an unknown dispute", func() {
			_, err := store.ResolveDispute("nope", true)
			Expect(errors.Is(err, ErrDisputeNotFound)).To(BeTrue())
		})
	})

	Describe("#Counts", func() {
		It("reports how many records are held", func() {
			election := registerElection(1)
			registerCandidate(election.ElectionID, "Finn")
			eligible("V1")
			store.FileDispute(election.ElectionID, "miscount")
			Expect(store.Counts()).To(Equal(StoreCounts{Elections: 1, Candidates: 1, Voters: 1, Disputes: 1}))
		})
	})

	It("serializes concurrent signatures", func() {
		election := registerElection(50)
		candidate := registerCandidate(election.ElectionID, "Finn")
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			address := string(rune('A' + i))
			eligible(address)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := store.SignCandidate(address, election.ElectionID, candidate.CandidateID)
				Expect(err).To(Succeed())
			}()
		}
		wg.Wait()
		c := store.GetCandidates(election.ElectionID)[0]
		Expect(c.SignCount).To(Equal(50))
		Expect(c.Approved).To(BeTrue())
	})

})
