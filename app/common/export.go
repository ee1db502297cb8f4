// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"fmt"
	"io"
	"net/http"

	"bimexport/app/core"
)

// Export runs the export pipeline synchronously and responds with the single
// binary payload: a pdf when the zip option is off, a zip archive otherwise.
// Failures never produce a partial body.
func Export(w http.ResponseWriter, r *http.Request) {
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
	result, err := core.RunExport(r.Context(), groups, settings, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Write(result.Data)
}
