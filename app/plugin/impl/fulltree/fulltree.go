// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

// Package fulltree discovers model files by walking every folder of the
// hierarchy breadth-first. The queue is explicit, deep hierarchies with hundreds
// of folders must not grow the call stack.
package fulltree

import (
	"context"
	"strings"
	"time"

	"bimexport/app/aps"
	"bimexport/app/config"
	"bimexport/app/logging"
	"bimexport/app/metrics"
	"bimexport/app/plugin/types"
)

func Discover(ctx context.Context, req types.DiscoverRequest, onProgress types.ProgressFunc, onFile types.FileFunc) (types.Result, error) {
	res := types.Result{}
	queue := append([]types.Folder{}, req.TopFolders...)
	delay := time.Duration(config.GetConfig().Options.FolderScanDelayMs) * time.Millisecond

	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]
		res.FoldersScanned++
		metrics.FoldersScanned.WithLabelValues("fulltree").Inc()
		if onProgress != nil {
			if err := onProgress(folder.Path, res.FoldersScanned); err != nil {
				return res, err
			}
		}

		next := aps.FolderContentsPath(req.ProjectId, folder.Id)
		for next != "" {
			page, err := aps.GetFolderPage(ctx, next, req.Token)
			if err != nil {
				// Partial results are acceptable: skip this folder and keep
				// scanning the rest of the queue.
				logging.Logger.Infof("skipping folder %v: %v", folder.Path, err)
				metrics.FoldersSkipped.Inc()
				break
			}
			for _, entry := range page.Data {
				name := entry.DisplayName()
				if entry.Type == "folders" {
					queue = append(queue, types.Folder{Id: entry.Id, Path: folder.Path + "/" + name})
					continue
				}
				if !strings.HasSuffix(strings.ToLower(name), ".rvt") {
					continue
				}
				record := types.FileRecord{Id: entry.Id, Name: name, Path: folder.Path}
				res.Files = append(res.Files, record)
				metrics.FilesDiscovered.WithLabelValues("fulltree").Inc()
				if onFile != nil {
					if err := onFile(record); err != nil {
						return res, err
					}
				}
			}
			next = page.Links.NextHref()
		}

		// Small delay between folders to respect the upstream rate limits.
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(delay):
		}
	}
	return res, nil
}
