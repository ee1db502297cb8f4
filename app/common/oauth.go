// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bimexport/app/core"
)

type OauthTokenRequest struct {
	Code string `json:"code"`
}

// GetOauthToken exchanges an authorization code for a token pair. The tokens
// are cached for the session so later requests can omit the bearer header.
func GetOauthToken(w http.ResponseWriter, r *http.Request) {
	req := OauthTokenRequest{}
	b, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	err = json.Unmarshal(b, &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("code is required"))
		return
	}
	res, err := core.ExchangeCode(r.Context(), req.Code, getSessionId(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, res)
}

// RefreshOauthToken trades the session's cached refresh token for a fresh pair.
func RefreshOauthToken(w http.ResponseWriter, r *http.Request) {
	sessionId := getSessionId(r)
	if sessionId == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%v header is required", sessionHeaderName))
		return
	}
	res, err := core.RefreshToken(r.Context(), sessionId)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJson(w, res)
}
