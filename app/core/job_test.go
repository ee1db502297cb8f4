// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bimexport/app/config"
	"bimexport/app/testutil"
)

func setupFakeRedis() {
	config.SetRedis(testutil.NewFakeRedis())
}

func testJob(key, sessionId string) Job {
	return Job{
		Key:       key,
		SessionId: sessionId,
		FileGroups: []FileGroup{
			{Urn: "urn:a", Derivatives: []string{"a.pdf", "b.pdf"}, Name: "Model A"},
		},
		Settings: ExportSettings{MergeScope: MergeScopeAll, Zip: true, ModelFolders: true},
		Token:    "test-token",
		Deadline: time.Now().Add(time.Hour),
	}
}

func TestAddJobQueuesAndLocks(t *testing.T) {
	setupFakeRedis()
	ctx := context.Background()

	if err := AddJob(ctx, testJob("job-1", "session-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, ok := GetJobStatus(ctx, "job-1")
	if !ok || status.State != "queued" {
		t.Errorf("expected queued status, got %+v (found: %v)", status, ok)
	}

	// same session is locked until the first job completes
	err := AddJob(ctx, testJob("job-2", "session-1"))
	if err == nil {
		t.Fatal("expected second job for the same session to be rejected")
	}

	// other sessions are not affected
	if err := AddJob(ctx, testJob("job-3", "session-2")); err != nil {
		t.Errorf("unexpected error for another session: %v", err)
	}

	unlock("session-1")
	if err := AddJob(ctx, testJob("job-4", "session-1")); err != nil {
		t.Errorf("expected session to accept jobs again after unlock: %v", err)
	}
}

func TestAddJobRequiresKey(t *testing.T) {
	setupFakeRedis()
	if err := AddJob(context.Background(), testJob("", "session-1")); err == nil {
		t.Fatal("expected error for missing job key")
	}
}

func TestPopJobRoundTrip(t *testing.T) {
	setupFakeRedis()
	ctx := context.Background()

	if _, ok := popJob(); ok {
		t.Fatal("expected no job on an empty queue")
	}

	if err := AddJob(ctx, testJob("job-1", "session-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AddJob(ctx, testJob("job-2", "session-2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, ok := popJob()
	if !ok || first.Key != "job-1" {
		t.Errorf("expected jobs in submission order, got %+v (found: %v)", first, ok)
	}
	if first.SessionId != "session-1" || len(first.FileGroups) != 1 || first.Token != "test-token" {
		t.Errorf("job did not survive the round trip: %+v", first)
	}
	second, ok := popJob()
	if !ok || second.Key != "job-2" {
		t.Errorf("expected the second job next, got %+v (found: %v)", second, ok)
	}
}

func TestGetJobStatusUnknownKey(t *testing.T) {
	setupFakeRedis()
	if _, ok := GetJobStatus(context.Background(), "no-such-job"); ok {
		t.Error("expected unknown key to report not found")
	}
}

func TestRunJobDeliversResult(t *testing.T) {
	setupFakeRedis()
	defer stubDownload(t, "")()

	delivered := ""
	origDeliver := deliver
	deliver = func(ctx context.Context, key string, result ExportResult) (string, error) {
		delivered = key
		return "https://bucket.example.com/" + key + "?signed", nil
	}
	defer func() { deliver = origDeliver }()

	runJob(testJob("job-1", "session-1"))

	status, ok := GetJobStatus(context.Background(), "job-1")
	if !ok || status.State != "completed" {
		t.Fatalf("expected completed status, got %+v (found: %v)", status, ok)
	}
	if delivered != "job-1/derivatives.zip" {
		t.Errorf("unexpected delivery key: %v", delivered)
	}
	if status.Url == "" || status.Filename != "derivatives.zip" || status.ContentType != "application/zip" {
		t.Errorf("unexpected status payload: %+v", status)
	}
}

func TestRunJobRecordsFailure(t *testing.T) {
	setupFakeRedis()
	defer stubDownload(t, "urn:a")()

	runJob(testJob("job-1", "session-1"))

	status, ok := GetJobStatus(context.Background(), "job-1")
	if !ok || status.State != "failed" {
		t.Fatalf("expected failed status, got %+v (found: %v)", status, ok)
	}
	if status.Error == "" || status.Url != "" {
		t.Errorf("expected an error without a delivery url, got %+v", status)
	}
}

func TestProcessJobsRunsAndStops(t *testing.T) {
	setupFakeRedis()
	defer stubDownload(t, "")()

	origDeliver := deliver
	deliver = func(ctx context.Context, key string, result ExportResult) (string, error) {
		return "https://bucket.example.com/" + key + "?signed", nil
	}
	defer func() { deliver = origDeliver }()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		ProcessJobs(ctx)
		close(stopped)
	}()

	if err := AddJob(context.Background(), testJob("job-1", "session-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		status, ok := GetJobStatus(context.Background(), "job-1")
		if ok && status.State == "completed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job was not processed, last status: %+v", status)
		}
		time.Sleep(50 * time.Millisecond)
	}

	// the session lock is released once the job ended
	for {
		if err := AddJob(context.Background(), testJob("job-2", "session-1")); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session lock was not released after the job ended")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

func TestRunJobRecordsDeliveryFailure(t *testing.T) {
	setupFakeRedis()
	defer stubDownload(t, "")()

	origDeliver := deliver
	deliver = func(ctx context.Context, key string, result ExportResult) (string, error) {
		return "", fmt.Errorf("bucket unavailable")
	}
	defer func() { deliver = origDeliver }()

	runJob(testJob("job-1", "session-1"))

	status, ok := GetJobStatus(context.Background(), "job-1")
	if !ok || status.State != "failed" {
		t.Fatalf("expected failed status, got %+v (found: %v)", status, ok)
	}
}
