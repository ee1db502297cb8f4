// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bimexport/app/aps"
)

func GetHubs(w http.ResponseWriter, r *http.Request) {
	hubs, warnings, err := aps.GetHubs(r.Context(), getToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, struct {
		Hubs     []aps.Hub `json:"hubs"`
		Warnings []string  `json:"warnings"`
	}{hubs, warnings})
}

func GetProjects(w http.ResponseWriter, r *http.Request) {
	hubId := r.URL.Query().Get("hubId")
	if hubId == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("hubId is required"))
		return
	}
	projects, err := aps.GetProjects(r.Context(), hubId, getToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, struct {
		Projects []aps.Project `json:"projects"`
	}{projects})
}

func GetTopFolders(w http.ResponseWriter, r *http.Request) {
	hubId := r.URL.Query().Get("hubId")
	projectId := r.URL.Query().Get("projectId")
	if hubId == "" || projectId == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("hubId and projectId are required"))
		return
	}
	folders, err := aps.GetTopFolders(r.Context(), hubId, projectId, getToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, struct {
		Folders []aps.FolderEntry `json:"folders"`
	}{folders})
}

func GetFolderContents(w http.ResponseWriter, r *http.Request) {
	projectId := r.URL.Query().Get("projectId")
	folderId := r.URL.Query().Get("folderId")
	pageUrl := r.URL.Query().Get("url")
	if projectId == "" || folderId == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("projectId and folderId are required"))
		return
	}
	contents, next, err := aps.GetFolderContents(r.Context(), projectId, folderId, pageUrl, getToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, struct {
		Contents []aps.FolderContent `json:"contents"`
		Next     string              `json:"next,omitempty"`
	}{contents, next})
}

func GetItemUrn(w http.ResponseWriter, r *http.Request) {
	projectId := r.URL.Query().Get("projectId")
	itemId := r.URL.Query().Get("itemId")
	if projectId == "" || itemId == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("projectId and itemId are required"))
		return
	}
	tip, err := aps.GetItemTip(r.Context(), projectId, itemId, getToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, tip)
}

func writeJson(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}
