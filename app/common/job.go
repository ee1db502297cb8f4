// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"fmt"
	"io"
	"net/http"

	"bimexport/app/config"
	"bimexport/app/core"

	"github.com/google/uuid"
)

// SubmitExportJob queues an export to run on the workers. The result is
// uploaded to the delivery bucket and exposed through a presigned url on the
// job status.
func SubmitExportJob(w http.ResponseWriter, r *http.Request) {
	if !config.RedisReady(r.Context()) {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("cache not ready"))
		return
	}
	b, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	groups, settings, err := core.ParseExportRequest(b)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token := getToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return
	}
	job := core.Job{
		Key:        uuid.New().String(),
		SessionId:  getSessionId(r),
		FileGroups: groups,
		Settings:   settings,
		Token:      token,
	}
	err = core.AddJob(r.Context(), job)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, struct {
		Key string `json:"key"`
	}{job.Key})
}

func GetExportJobStatus(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("key is required"))
		return
	}
	status, ok := core.GetJobStatus(r.Context(), key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown export job: %v", key))
		return
	}
	writeJson(w, status)
}
