// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

// Package searchindex discovers model files through the folder search endpoint,
// which recurses into subfolders server-side. One search per top folder, no
// manual traversal.
package searchindex

import (
	"context"
	"net/url"

	"bimexport/app/aps"
	"bimexport/app/logging"
	"bimexport/app/metrics"
	"bimexport/app/plugin/types"
)

func Discover(ctx context.Context, req types.DiscoverRequest, onProgress types.ProgressFunc, onFile types.FileFunc) (types.Result, error) {
	res := types.Result{}
	for _, folder := range req.TopFolders {
		res.FoldersScanned++
		metrics.FoldersScanned.WithLabelValues("search").Inc()
		// One progress marker per top folder: the search hides the nesting, so
		// there is no per-subfolder progress to report.
		if onProgress != nil {
			if err := onProgress(folder.Path, res.FoldersScanned); err != nil {
				return res, err
			}
		}

		next := "/data/v1/projects/" + url.PathEscape(req.ProjectId) + "/folders/" +
			url.PathEscape(folder.Id) + "/search?filter[fileType]=rvt"
		for next != "" {
			page, err := aps.GetSearchPage(ctx, next, req.Token)
			if err != nil {
				logging.Logger.Infof("skipping top folder %v: %v", folder.Path, err)
				metrics.FoldersSkipped.Inc()
				break
			}
			for _, version := range page.Data {
				// The search returns versions. Resolve the stable item id through
				// the item relationship; the version id fallback is not stable
				// across versions of the same file.
				id := version.Id
				if version.Relationships.Item != nil && version.Relationships.Item.Data != nil &&
					version.Relationships.Item.Data.Id != "" {
					id = version.Relationships.Item.Data.Id
				}
				record := types.FileRecord{Id: id, Name: version.DisplayName(), Path: folder.Path}
				res.Files = append(res.Files, record)
				metrics.FilesDiscovered.WithLabelValues("search").Inc()
				if onFile != nil {
					if err := onFile(record); err != nil {
						return res, err
					}
				}
			}
			next = page.Links.NextHref()
		}
	}
	return res, nil
}
