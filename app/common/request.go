// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"fmt"
	"net/http"
	"strings"

	"bimexport/app/core"
)

const sessionHeaderName = "X-Session-Id"

// getToken resolves the bearer credential of a request: the Authorization
// header wins, the session's cached token is the fallback.
func getToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth {
		token = ""
	}
	return core.GetTokenFromCache(r.Context(), token, getSessionId(r))
}

func getSessionId(r *http.Request) string {
	return r.Header.Get(sessionHeaderName)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	w.Write([]byte(fmt.Sprintf("%d - %v", status, err)))
}
