// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package types

// Folder is a reference into the remote hierarchy, the display path is
// accumulated from the root during traversal.
type Folder struct {
	Id   string `json:"id"`
	Path string `json:"path"`
}

type DiscoverRequest struct {
	ProjectId  string   `json:"projectId"`
	TopFolders []Folder `json:"topFolders"`
	Token      string   `json:"token"`
}

// FileRecord is emitted once per discovered model file. Id is the stable item
// identifier, Path the display path of the containing folder.
type FileRecord struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type Result struct {
	Files          []FileRecord
	FoldersScanned int
}

// ProgressFunc and FileFunc push discovery output to the consumer as it happens.
// A non-nil return value means the consumer is gone, the strategy must stop
// issuing remote calls and return the error as-is.
type ProgressFunc func(folder string, scanned int) error

type FileFunc func(file FileRecord) error
