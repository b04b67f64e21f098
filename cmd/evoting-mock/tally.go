package main

import (
	"fmt"
	"io"

	evoting "github.com/jicksta/evoting-mock"
	"github.com/jicksta/evoting-mock/internal"
	"github.com/jicksta/evoting-mock/internal/config"
	"github.com/jicksta/evoting-mock/report"
	"github.com/spf13/cobra"
)

var tallyFlags = struct {
	end bool
}{}

func tally(writer io.Writer, cfg *config.Config, path string, end bool) error {
	store := evoting.NewMemoryStore(cfg.StoreOptions())
	summary, err := loadFixtureFile(store, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer, "Candidates: %d\nVoters:     %d\nRatings:    %d recorded, %d skipped\n\n",
		summary.Candidates, summary.Voters, summary.Recorded, summary.Skipped)

	for _, electionID := range summary.ElectionIDs {
		if end {
			election, err := store.GetElection(electionID)
			if err != nil {
				return err
			}
			if _, err := store.EndElection(electionID, election.Admin); err != nil {
				return err
			}
		}
		results, err := store.Results(electionID)
		if err != nil {
			return err
		}
		report.NewResultsReport(results).Print(writer)
		fmt.Fprintf(writer, "Ballots cast: %d\n", len(electionVoters(store, electionID)))
		fmt.Fprintln(writer)
	}
	return nil
}

// electionVoters lists every address that rated at least one candidate of the election.
func electionVoters(store evoting.ElectionStore, electionID string) []string {
	return internal.SortedUniques(func(emit func(string)) {
		for _, candidate := range store.GetCandidates(electionID) {
			for _, vote := range candidate.Votes {
				emit(vote.Voter)
			}
		}
	})
}

func tallyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tally <fixture>",
		Short: "Load a fixture and print the ranking of every election in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tally(cmd.OutOrStdout(), configFromCommand(cmd), args[0], tallyFlags.end)
		},
	}
	cmd.Flags().BoolVar(&tallyFlags.end, "end", true, "end each election before tallying so a winner is reported")
	return cmd
}
