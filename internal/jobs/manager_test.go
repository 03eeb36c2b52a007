package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gcbaptista/go-natex/model"
)

func waitForStatus(t *testing.T, manager *Manager, jobID string, want model.JobStatus) *model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := manager.GetJob(jobID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := manager.GetJob(jobID)
	t.Fatalf("Job %s did not reach status %s (last: %s)", jobID, want, job.Status)
	return nil
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeAnnotateBatch, "lexicon", "de", map[string]string{
		"sentences": "3",
	})
	if jobID == "" {
		t.Error("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}
	if job.Type != model.JobTypeAnnotateBatch {
		t.Errorf("Expected job type %s, got %s", model.JobTypeAnnotateBatch, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.Annotator != "lexicon" || job.Language != "de" {
		t.Errorf("Expected annotator lexicon and language de, got %s and %s", job.Annotator, job.Language)
	}

	if _, err := manager.GetJob("missing"); err == nil {
		t.Error("Expected an error for an unknown job")
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeAnnotateBatch, "lexicon", "en", nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(jobID, 1, 2, "Annotated 1 of 2 sentences")
		manager.AddSentenceID(jobID, "s1")
		manager.UpdateJobProgress(jobID, 2, 2, "Annotated 2 of 2 sentences")
		manager.AddSentenceID(jobID, "s2")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	if job.Progress == nil || job.Progress.Current != 2 || job.Progress.Total != 2 {
		t.Errorf("Expected progress 2/2, got %+v", job.Progress)
	}
	if len(job.SentenceIDs) != 2 {
		t.Errorf("Expected 2 sentence IDs, got %v", job.SentenceIDs)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}

	if err := manager.ExecuteJob(jobID, func(context.Context, *model.Job) error { return nil }); err == nil {
		t.Error("Expected an error when executing a finished job")
	}

	metrics := manager.GetMetrics()
	if metrics.JobsCompleted != 1 || metrics.SentencesProcessed != 2 {
		t.Errorf("Expected 1 completed job and 2 sentences, got %+v", metrics)
	}
}

func TestJobManager_FailedJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeImportCoNLLU, "conllu", "de", nil)
	if err := manager.ExecuteJob(jobID, func(context.Context, *model.Job) error {
		return errors.New("conllu line 3: expected 10 columns, got 2")
	}); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	if job.Error != "conllu line 3: expected 10 columns, got 2" {
		t.Errorf("Unexpected job error %q", job.Error)
	}
	if rate := manager.GetJobSuccessRate(); rate != 0 {
		t.Errorf("Expected success rate 0, got %f", rate)
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeAnnotateBatch, "lexicon", "en", nil)
	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}
	<-started

	// the only worker is busy, so this one waits
	queuedID := manager.CreateJob(model.JobTypeAnnotateBatch, "lexicon", "en", nil)
	if err := manager.ExecuteJob(queuedID, func(context.Context, *model.Job) error { return nil }); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}
	if got := manager.GetCurrentWorkload(); got != 2 {
		t.Errorf("Expected workload 2, got %d", got)
	}

	if err := manager.CancelJob(queuedID); err != nil {
		t.Fatalf("Failed to cancel queued job: %v", err)
	}
	waitForStatus(t, manager, queuedID, model.JobStatusCancelled)

	if err := manager.CancelJob(jobID); err != nil {
		t.Fatalf("Failed to cancel running job: %v", err)
	}
	waitForStatus(t, manager, jobID, model.JobStatusCancelled)

	if err := manager.CancelJob(jobID); err == nil {
		t.Error("Expected an error when cancelling a finished job")
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	first := manager.CreateJob(model.JobTypeAnnotateBatch, "lexicon", "en", nil)
	time.Sleep(time.Millisecond)
	second := manager.CreateJob(model.JobTypeImportCoNLLU, "conllu", "de", nil)

	all := manager.ListJobs(nil)
	if len(all) != 2 || all[0].ID != first || all[1].ID != second {
		t.Fatalf("Expected jobs in creation order, got %v", all)
	}

	if err := manager.CancelJob(first); err != nil {
		t.Fatalf("Failed to cancel job: %v", err)
	}
	cancelled := model.JobStatusCancelled
	filtered := manager.ListJobs(&cancelled)
	if len(filtered) != 1 || filtered[0].ID != first {
		t.Errorf("Expected only the cancelled job, got %v", filtered)
	}
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeAnnotateBatch, "lexicon", "en", nil)
	if err := manager.CancelJob(jobID); err != nil {
		t.Fatalf("Failed to cancel job: %v", err)
	}
	if n := manager.CleanupOldJobs(time.Hour); n != 0 {
		t.Errorf("Expected no cleanup of a fresh job, got %d", n)
	}
	time.Sleep(2 * time.Millisecond)
	if n := manager.CleanupOldJobs(time.Millisecond); n != 1 {
		t.Errorf("Expected 1 job cleaned up, got %d", n)
	}
	if _, err := manager.GetJob(jobID); err == nil {
		t.Error("Expected the job to be gone")
	}
}
