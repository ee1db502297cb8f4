// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"fmt"
	"net/http"

	"bimexport/app/aps"
	"bimexport/app/derivatives"
)

type manifestResponse struct {
	Urn           string                      `json:"urn"`
	Derivatives   []derivatives.PdfDerivative `json:"derivatives"`
	ViewSets      []derivatives.ViewSet       `json:"viewSets"`
	Compatibility derivatives.Compatibility   `json:"compatibility"`
}

// GetManifest fetches a model's manifest and returns its normalized sheet
// derivatives, view sets and the Revit version verdict.
func GetManifest(w http.ResponseWriter, r *http.Request) {
	urn := r.URL.Query().Get("urn")
	if urn == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("urn is required"))
		return
	}
	manifest, err := aps.GetManifest(r.Context(), urn, getToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	response := manifestResponse{Urn: manifest.Urn, Derivatives: []derivatives.PdfDerivative{}, ViewSets: []derivatives.ViewSet{}}
	if len(manifest.Derivatives) > 0 {
		primary := manifest.Derivatives[0]
		response.Derivatives = derivatives.FilterPdfDerivatives(primary.Children)
		response.ViewSets = derivatives.ExtractViewSets(response.Derivatives)
		response.Compatibility = derivatives.CheckRevitVersion(primary)
	}
	writeJson(w, response)
}
