package workflows

import (
	"time"

	"medlit/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetProgress = "GetProgress"

// CorpusIngestWorkflow processes every paper file in a folder into the
// evidence store. Per-paper failures and skips are tallied in queryable
// progress; one bad paper never fails the run.
func CorpusIngestWorkflow(ctx workflow.Context, input CorpusIngestInput) (CorpusIngestProgress, error) {
	progress := CorpusIngestProgress{PerPaper: map[string]string{}}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (CorpusIngestProgress, error) {
		return progress, nil
	}); err != nil {
		return progress, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	if input.ClearExisting {
		if err := workflow.ExecuteActivity(ctx, "ClearStoreActivity", activities.ClearStoreInput{}).Get(ctx, nil); err != nil {
			return progress, err
		}
	}

	var listOut activities.ListPapersOutput
	if err := workflow.ExecuteActivity(ctx, "ListPapersActivity", activities.ListPapersInput{InputDir: input.InputDir}).Get(ctx, &listOut); err != nil {
		return progress, err
	}
	progress.Total = len(listOut.Paths)

	for _, path := range listOut.Paths {
		progress.PerPaper[path] = "processing"

		var processed activities.ProcessPaperOutput
		if err := workflow.ExecuteActivity(ctx, "ProcessPaperActivity", activities.ProcessPaperInput{PaperPath: path}).Get(ctx, &processed); err != nil {
			progress.Failed++
			progress.Done++
			progress.PerPaper[path] = "failed"
			continue
		}
		if processed.Skipped != "" {
			progress.Skipped++
			progress.Done++
			progress.PerPaper[path] = "skipped"
			continue
		}

		var stored activities.StorePaperOutput
		if err := workflow.ExecuteActivity(ctx, "StorePaperActivity", activities.StorePaperInput{Paper: processed.Paper, Chunks: processed.Chunks}).Get(ctx, &stored); err != nil {
			progress.Failed++
			progress.Done++
			progress.PerPaper[path] = "failed"
			continue
		}
		progress.Done++
		if stored.Duplicate {
			progress.Skipped++
			progress.PerPaper[path] = "duplicate"
			continue
		}
		progress.PapersAdded++
		progress.ChunksAdded += stored.ChunkCount
		progress.PerPaper[path] = "added"
	}

	_ = workflow.ExecuteActivity(ctx, "WriteIngestSummaryActivity", activities.WriteIngestSummaryInput{
		Summary: map[string]any{
			"total":            progress.Total,
			"papers_added":     progress.PapersAdded,
			"chunks_added":     progress.ChunksAdded,
			"skipped":          progress.Skipped,
			"failed":           progress.Failed,
			"per_paper_status": progress.PerPaper,
			"generated_at":     workflow.Now(ctx),
		},
	}).Get(ctx, nil)

	return progress, nil
}
