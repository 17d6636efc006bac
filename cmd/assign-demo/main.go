// Command assign-demo is a minimal CLI standing in for the out-of-scope
// service that would otherwise front the solver core: it reads a score
// file in the whitespace "paper_id reviewer_id score" format, runs one
// of the four solvers, and prints the resulting assignment.
//
// Usage:
//
//	assign-demo -scores scores.txt -solver MinMax -min-reviewers 1 -max-reviewers 2 -min-papers 0 -max-papers 1
//
// Exit codes: 0 = Complete, 1 = Infeasible, 2 = SolverError, 3 = input
// validation error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"reviewmatch/internal/scoreio"
	"reviewmatch/pkg/assign"
	"reviewmatch/pkg/assign/apperror"
	"reviewmatch/pkg/assign/fairflow"
	"reviewmatch/pkg/assign/solve"
	"reviewmatch/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("assign-demo", flag.ContinueOnError)
	scoresPath := fs.String("scores", "", "path to a whitespace-format score file")
	solverName := fs.String("solver", "MinMax", "MinMax | FairFlow | Randomized | FairSequence")
	minReviewers := fs.Int("min-reviewers", 0, "minimum reviewers per paper")
	maxReviewers := fs.Int("max-reviewers", 1, "maximum reviewers per paper")
	minPapers := fs.Int("min-papers", 0, "minimum papers per reviewer")
	maxPapers := fs.Int("max-papers", 1, "maximum papers per reviewer")
	seed := fs.Uint64("seed", 1, "randomized solver seed")
	numAlternates := fs.Int("num-alternates", 0, "alternates to record per paper")
	logLevel := fs.String("log-level", "info", "debug | info | warn | error")

	if err := fs.Parse(args); err != nil {
		return 3
	}
	logger.Init(*logLevel)

	if *scoresPath == "" {
		logger.Error("missing required flag", "flag", "-scores")
		return 3
	}

	f, err := os.Open(*scoresPath)
	if err != nil {
		logger.Error("failed to open scores file", "error", err)
		return 3
	}
	defer f.Close()

	scoreMatrix, paperIDs, reviewerIDs, err := scoreio.ParseScores(f)
	if err != nil {
		logger.Error("failed to parse scores", "error", err)
		return 3
	}

	numPapers, numReviewers := len(paperIDs), len(reviewerIDs)
	rows := make([][]float64, numPapers)
	constraint := make([][]int8, numPapers)
	minRev := make([]int, numPapers)
	maxRev := make([]int, numPapers)
	for i := 0; i < numPapers; i++ {
		rows[i] = make([]float64, numReviewers)
		constraint[i] = make([]int8, numReviewers)
		for j := 0; j < numReviewers; j++ {
			rows[i][j] = scoreMatrix.At(i, j)
		}
		minRev[i] = *minReviewers
		maxRev[i] = *maxReviewers
	}
	minPap := make([]int, numReviewers)
	maxPap := make([]int, numReviewers)
	for j := 0; j < numReviewers; j++ {
		minPap[j] = *minPapers
		maxPap[j] = *maxPapers
	}

	p, ve := assign.Build(assign.BuildInput{
		PaperIDs:      paperIDs,
		ReviewerIDs:   reviewerIDs,
		Score:         rows,
		Constraint:    constraint,
		MinReviewers:  minRev,
		MaxReviewers:  maxRev,
		MinPapers:     minPap,
		MaxPapers:     maxPap,
		NumAlternates: *numAlternates,
	})
	if ve.HasErrors() {
		for _, msg := range ve.ErrorMessages() {
			logger.Error("validation error", "message", msg)
		}
		return 3
	}

	result := solve.Solve(context.Background(), p, solve.SolverKind(*solverName), solve.Options{
		FairFlowOptions: fairflow.DefaultOptions(),
		Seed:            *seed,
	})

	if result.Err != nil {
		logger.Error("solve failed", "error", result.Err)
		switch {
		case apperror.IsInfeasible(result.Err):
			return 1
		case apperror.IsCancelled(result.Err), apperror.IsSolverError(result.Err):
			return 2
		default:
			return 3
		}
	}

	for _, a := range result.Assignments {
		fmt.Printf("%s %s %.4f\n", a.PaperID, a.ReviewerID, a.Score)
	}
	for _, alt := range result.Alternates {
		fmt.Printf("ALT %s %s %.4f\n", alt.PaperID, alt.ReviewerID, alt.Score)
	}
	logger.Info("solve complete", "solver", *solverName, "total_score", result.TotalScore)
	return 0
}
