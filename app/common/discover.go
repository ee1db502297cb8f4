// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package common

import (
	"fmt"
	"net/http"

	"bimexport/app/aps"
	"bimexport/app/plugin"
	"bimexport/app/plugin/types"
	"bimexport/app/stream"
)

// Discover streams model file discovery as server-sent events: a progress event
// per scanned folder, a file event per match, terminated by done or error. A
// dropped consumer connection is the only cancellation signal, the traversal
// stops on the first failed write.
func Discover(w http.ResponseWriter, r *http.Request) {
	hubId := r.URL.Query().Get("hubId")
	projectId := r.URL.Query().Get("projectId")
	if hubId == "" || projectId == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("hubId and projectId are required"))
		return
	}
	strategy := plugin.GetStrategy(r.URL.Query().Get("strategy"))
	token := getToken(r)

	emitter, err := stream.NewEmitter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Failing to enumerate the top folders aborts the whole run.
	topFolders, err := aps.GetTopFolders(r.Context(), hubId, projectId, token)
	if err != nil {
		emitter.Send(stream.Error(err.Error()))
		return
	}
	folders := make([]types.Folder, 0, len(topFolders))
	for _, f := range topFolders {
		folders = append(folders, types.Folder{Id: f.Id, Path: f.Name})
	}

	req := types.DiscoverRequest{ProjectId: projectId, TopFolders: folders, Token: token}
	result, err := strategy.Discover(r.Context(), req,
		func(folder string, scanned int) error {
			return emitter.Send(stream.Progress(folder, scanned))
		},
		func(file types.FileRecord) error {
			return emitter.Send(stream.File(file.Id, file.Name, file.Path))
		},
	)
	if err != nil {
		if emitter.Failed() {
			// Consumer is gone, nobody is listening for an error event.
			return
		}
		emitter.Send(stream.Error(err.Error()))
		return
	}
	emitter.Send(stream.Done(len(result.Files)))
}

// GetStrategies lists the discovery strategy selectors with their display
// names, the frontend renders them as the traversal mode choice.
func GetStrategies(w http.ResponseWriter, r *http.Request) {
	writeJson(w, plugin.GetStrategyToNameMap())
}
