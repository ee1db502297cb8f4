// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"fmt"
	"net/http"

	"bimexport/app/aps"
)

// GetDerivativePdf resolves one derivative through the signed-download flow and
// returns it inline, so a sheet can be previewed without running an export.
func GetDerivativePdf(w http.ResponseWriter, r *http.Request) {
	urn := r.URL.Query().Get("urn")
	derivativeUrn := r.URL.Query().Get("derivativeUrn")
	if urn == "" || derivativeUrn == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("urn and derivativeUrn are required"))
		return
	}
	token := getToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
		return
	}
	signed, err := aps.GetSignedDownload(r.Context(), urn, derivativeUrn, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	file, err := aps.DownloadDerivative(r.Context(), signed, derivativeUrn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
	w.Write(file.Data)
}
