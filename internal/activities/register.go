package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListPapersActivity)
	w.RegisterActivity(a.ClearStoreActivity)
	w.RegisterActivity(a.ProcessPaperActivity)
	w.RegisterActivity(a.StorePaperActivity)
	w.RegisterActivity(a.WriteIngestSummaryActivity)
}
