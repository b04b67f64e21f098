package report

import (
	"fmt"
	"io"

	"github.com/gookit/color"
	evoting "github.com/jicksta/evoting-mock"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
)

type ResultsReport struct {
	Results *evoting.ElectionResults
}

func NewResultsReport(results *evoting.ElectionResults) *ResultsReport {
	return &ResultsReport{
		Results: results,
	}
}

// MeanRating is the average rating a candidate received, or false when nobody rated it.
func MeanRating(result evoting.CandidateResult) (float64, bool) {
	if len(result.Ratings) == 0 {
		return 0, false
	}
	ratings := make([]float64, len(result.Ratings))
	for i, r := range result.Ratings {
		ratings[i] = float64(r)
	}
	return stat.Mean(ratings, nil), true
}

func (rr *ResultsReport) PrintRankingTable(writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Rank", "Candidate", "ID", "Total", "Votes", "Mean"})

	// Configure for Markdown table formatting
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for i, result := range rr.Results.Ranking {
		mean := "-"
		if m, ok := MeanRating(result); ok {
			mean = fmt.Sprintf("%.2f", m)
		}
		table.Append([]string{
			fmt.Sprint(i + 1),
			result.Name,
			result.CandidateID,
			fmt.Sprint(result.TotalRating),
			fmt.Sprint(result.VoteCount),
			mean,
		})
	}

	table.Render()
}

// PrintSummary writes the election header and, once the election has ended, its winner.
func (rr *ResultsReport) PrintSummary(writer io.Writer) {
	fmt.Fprintf(writer, "Election %s (%s)\n", rr.Results.ElectionID, rr.Results.Status)
	if winner := rr.Results.Winner; winner != nil {
		fmt.Fprintf(writer, "Winner: %s with %d\n", color.Render("<suc>"+winner.Name+"</>"), winner.TotalRating)
	}
}

func (rr *ResultsReport) Print(writer io.Writer) {
	rr.PrintSummary(writer)
	rr.PrintRankingTable(writer)
}
