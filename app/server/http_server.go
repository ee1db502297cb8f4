// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package server

import (
	"net/http"

	"bimexport/app/common"
	"bimexport/app/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Start() {
	// auth
	http.HandleFunc("/api/auth/token", common.GetOauthToken)
	http.HandleFunc("/api/auth/refresh", common.RefreshOauthToken)

	// hierarchy browsing
	http.HandleFunc("/api/aps/hubs", common.GetHubs)
	http.HandleFunc("/api/aps/projects", common.GetProjects)
	http.HandleFunc("/api/aps/topfolders", common.GetTopFolders)
	http.HandleFunc("/api/aps/contents", common.GetFolderContents)
	http.HandleFunc("/api/aps/item", common.GetItemUrn)
	http.HandleFunc("/api/aps/manifest", common.GetManifest)
	http.HandleFunc("/api/aps/derivative", common.GetDerivativePdf)

	// discovery stream
	http.HandleFunc("/api/aps/strategies", common.GetStrategies)
	http.HandleFunc("/api/aps/discover", common.Discover)

	// export
	http.HandleFunc("/api/export", common.Export)
	http.HandleFunc("/api/export/job", common.SubmitExportJob)
	http.HandleFunc("/api/export/job/status", common.GetExportJobStatus)

	// metrics
	http.Handle("/metrics", promhttp.Handler())

	err := http.ListenAndServe(":7788", nil)
	if err != nil {
		logging.Logger.Errorf("http server stopped: %v", err)
	}
}
