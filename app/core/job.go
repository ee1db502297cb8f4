// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bimexport/app/config"
	"bimexport/app/logging"
)

// Job is one queued export request. The whole selection travels with the job,
// there is no shared selection state between callers.
type Job struct {
	Key        string         `json:"key"`
	User       string         `json:"user,omitempty"`
	SessionId  string         `json:"sessionId"`
	FileGroups []FileGroup    `json:"fileGroups"`
	Settings   ExportSettings `json:"settings"`
	Token      string         `json:"token"`
	Deadline   time.Time      `json:"deadline"`
}

type JobStatus struct {
	Key         string `json:"key"`
	State       string `json:"state"` // queued, running, completed, failed
	Error       string `json:"error,omitempty"`
	Url         string `json:"url,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

var redisCtxDuration = 5 * time.Minute
var jobStatusDuration = 24 * time.Hour

// deliver is a package hook so the worker tests can stub the bucket upload.
var deliver = DeliverExport

func lock(sessionId string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisCtxDuration)
	defer cancel()
	ok := config.GetRedis().SetNX(ctx, "export lock: "+sessionId, true, config.LockMaxDuration)
	return ok.Val()
}

func unlock(sessionId string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCtxDuration)
	defer cancel()
	config.GetRedis().Del(ctx, "export lock: "+sessionId)
}

// AddJob queues an export job. One export at a time per session: a second job
// for the same session is rejected until the first completes.
func AddJob(ctx context.Context, job Job) error {
	if job.Key == "" {
		return fmt.Errorf("job key is required")
	}
	if !lock(job.SessionId) {
		return fmt.Errorf("an export for this session is already in progress")
	}
	job.Deadline = time.Now().Add(config.LockMaxDuration)
	b, err := json.Marshal(job)
	if err != nil {
		unlock(job.SessionId)
		return fmt.Errorf("failed to serialize job: %w", err)
	}
	cmd := config.GetRedis().LPush(ctx, "export jobs", string(b))
	if cmd.Err() != nil {
		unlock(job.SessionId)
		return cmd.Err()
	}
	setJobStatus(ctx, JobStatus{Key: job.Key, State: "queued"})
	logging.Logger.Infof("export job added: %v", job.Key)
	return nil
}

func popJob() (Job, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCtxDuration)
	defer cancel()
	cmd := config.GetRedis().RPop(ctx, "export jobs")
	if cmd.Err() != nil {
		return Job{}, false
	}
	job := Job{}
	err := json.Unmarshal([]byte(cmd.Val()), &job)
	if err != nil {
		logging.Logger.Errorf("failed to unmarshal a job: %v", err)
		return Job{}, false
	}
	return job, true
}

func setJobStatus(ctx context.Context, status JobStatus) {
	b, err := json.Marshal(status)
	if err != nil {
		logging.Logger.Errorf("failed to serialize job status: %v", err)
		return
	}
	config.GetRedis().Set(ctx, "export status: "+status.Key, string(b), jobStatusDuration)
}

// GetJobStatus returns the stored status of an export job, false when the key
// is unknown or expired.
func GetJobStatus(ctx context.Context, key string) (JobStatus, bool) {
	v := config.GetRedis().Get(ctx, "export status: "+key).Val()
	if v == "" {
		return JobStatus{}, false
	}
	status := JobStatus{}
	if err := json.Unmarshal([]byte(v), &status); err != nil {
		return JobStatus{}, false
	}
	return status, true
}

// ProcessJobs is the worker loop, it runs until the context is cancelled. An
// export job runs exactly once, a failure is recorded and never retried,
// partial output is never delivered.
func ProcessJobs(ctx context.Context) {
	defer logging.Logger.Infof("worker exited gracefully")
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
		job, ok := popJob()
		if !ok {
			continue
		}
		logging.Logger.Infof("%v: export job started", job.Key)
		runJob(job)
		unlock(job.SessionId)
		logging.Logger.Infof("%v: export job ended", job.Key)
	}
}

func runJob(job Job) {
	ctx, cancel := context.WithDeadline(context.Background(), job.Deadline)
	defer cancel()
	setJobStatus(ctx, JobStatus{Key: job.Key, State: "running"})
	result, err := RunExport(ctx, job.FileGroups, job.Settings, job.Token)
	if err != nil {
		logging.Logger.Errorf("%v: export job failed: %v", job.Key, err)
		setJobStatus(ctx, JobStatus{Key: job.Key, State: "failed", Error: err.Error()})
		return
	}
	url, err := deliver(ctx, job.Key+"/"+result.Filename, result)
	if err != nil {
		logging.Logger.Errorf("%v: delivering export failed: %v", job.Key, err)
		setJobStatus(ctx, JobStatus{Key: job.Key, State: "failed", Error: err.Error()})
		return
	}
	setJobStatus(ctx, JobStatus{
		Key:         job.Key,
		State:       "completed",
		Url:         url,
		Filename:    result.Filename,
		ContentType: result.ContentType,
	})
}
