// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bimexport/app/aps"
	"bimexport/app/metrics"
)

const (
	MergeScopeNone     = "none"
	MergeScopePerModel = "per-model"
	MergeScopeAll      = "all"
)

// FileGroup is one model selection of an export request: the model urn plus the
// derivative urns to download, with an optional display name.
type FileGroup struct {
	Urn         string   `json:"urn"`
	Derivatives []string `json:"derivatives"`
	Name        string   `json:"name,omitempty"`
}

type ExportOptions struct {
	MergeScope   string `json:"mergeScope,omitempty"`
	Zip          *bool  `json:"zip,omitempty"`
	ModelFolders *bool  `json:"modelFolders,omitempty"`
}

// ExportRequest accepts the single-model shape (urn + derivatives at the top
// level) and the multi-model shape (files array).
type ExportRequest struct {
	Urn         string         `json:"urn,omitempty"`
	Derivatives []string       `json:"derivatives,omitempty"`
	Files       []FileGroup    `json:"files,omitempty"`
	Options     *ExportOptions `json:"options,omitempty"`
}

// ExportSettings are the normalized options, defaults none/true/true.
type ExportSettings struct {
	MergeScope   string `json:"mergeScope"`
	Zip          bool   `json:"zip"`
	ModelFolders bool   `json:"modelFolders"`
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// outputGroup is a post-merge unit, groups without files are dropped before
// packaging.
type outputGroup struct {
	name  string
	files []aps.DownloadedFile
}

// download is a package hook so the planner tests can stub the network fan-out.
var download = aps.DownloadAll

// ParseExportRequest validates the selection and normalizes the options before
// any network activity begins.
func ParseExportRequest(body []byte) ([]FileGroup, ExportSettings, error) {
	req := ExportRequest{}
	err := json.Unmarshal(body, &req)
	if err != nil {
		return nil, ExportSettings{}, fmt.Errorf("invalid export request: %v", err)
	}

	settings := ExportSettings{MergeScope: MergeScopeNone, Zip: true, ModelFolders: true}
	if req.Options != nil {
		switch req.Options.MergeScope {
		case MergeScopePerModel, MergeScopeAll:
			settings.MergeScope = req.Options.MergeScope
		}
		if req.Options.Zip != nil {
			settings.Zip = *req.Options.Zip
		}
		if req.Options.ModelFolders != nil {
			settings.ModelFolders = *req.Options.ModelFolders
		}
	}

	groups := req.Files
	if groups == nil {
		if req.Urn == "" {
			return nil, settings, fmt.Errorf("urn is required")
		}
		groups = []FileGroup{{Urn: req.Urn, Derivatives: req.Derivatives}}
	}
	if len(groups) == 0 {
		return nil, settings, fmt.Errorf("files must be a non-empty array")
	}
	for _, group := range groups {
		if group.Urn == "" {
			return nil, settings, fmt.Errorf("each file must have a urn")
		}
		if len(group.Derivatives) == 0 {
			return nil, settings, fmt.Errorf("each file must have a non-empty derivatives array")
		}
	}
	return groups, settings, nil
}

// RunExport drives the export pipeline: downloading, merging and packaging. Any
// failure aborts the whole request, partial output is never returned.
func RunExport(ctx context.Context, groups []FileGroup, settings ExportSettings, token string) (ExportResult, error) {
	start := time.Now()
	res, err := runExport(ctx, groups, settings, token)
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("failed").Inc()
		return ExportResult{}, err
	}
	metrics.ExportsTotal.WithLabelValues("completed").Inc()
	return res, nil
}

func runExport(ctx context.Context, groups []FileGroup, settings ExportSettings, token string) (ExportResult, error) {
	downloads, err := downloadGroups(ctx, groups, token)
	if err != nil {
		return ExportResult{}, fmt.Errorf("downloading: %v", err)
	}
	outputs, err := mergeGroups(groups, downloads, settings.MergeScope)
	if err != nil {
		return ExportResult{}, fmt.Errorf("merging: %v", err)
	}
	res, err := packageOutputs(outputs, settings)
	if err != nil {
		return ExportResult{}, fmt.Errorf("packaging: %v", err)
	}
	return res, nil
}

// downloadGroups resolves every derivative of every group in parallel. All
// downloads complete (or the first one fails) before any merging begins.
func downloadGroups(ctx context.Context, groups []FileGroup, token string) ([][]aps.DownloadedFile, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	downloads := make([][]aps.DownloadedFile, len(groups))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for i, group := range groups {
		wg.Add(1)
		go func(i int, group FileGroup) {
			defer wg.Done()
			files, err := download(ctx, group.Urn, group.Derivatives, token)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			downloads[i] = files
		}(i, group)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return downloads, nil
}

func groupName(group FileGroup, index int) string {
	name := group.Name
	if name == "" {
		name = fmt.Sprintf("file-%d", index+1)
	}
	return SanitizeFolderName(name)
}

func mergeGroups(groups []FileGroup, downloads [][]aps.DownloadedFile, scope string) ([]outputGroup, error) {
	outputs := []outputGroup{}
	switch scope {
	case MergeScopeAll:
		all := [][]byte{}
		for _, files := range downloads {
			for _, f := range files {
				all = append(all, f.Data)
			}
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("no derivatives to export")
		}
		merged, err := MergePdfs(all)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, outputGroup{
			name:  "merged",
			files: []aps.DownloadedFile{{Name: "merged.pdf", Data: merged}},
		})
	case MergeScopePerModel:
		for i, files := range downloads {
			if len(files) == 0 {
				continue
			}
			documents := make([][]byte, len(files))
			for j, f := range files {
				documents[j] = f.Data
			}
			merged, err := MergePdfs(documents)
			if err != nil {
				return nil, err
			}
			name := groupName(groups[i], i)
			outputs = append(outputs, outputGroup{
				name:  name,
				files: []aps.DownloadedFile{{Name: name + ".pdf", Data: merged}},
			})
		}
	default:
		for i, files := range downloads {
			if len(files) == 0 {
				continue
			}
			outputs = append(outputs, outputGroup{name: groupName(groups[i], i), files: files})
		}
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("no derivatives to export")
	}
	return outputs, nil
}

func packageOutputs(outputs []outputGroup, settings ExportSettings) (ExportResult, error) {
	if !settings.Zip {
		all := [][]byte{}
		for _, output := range outputs {
			for _, f := range output.files {
				all = append(all, f.Data)
			}
		}
		data := all[0]
		if len(all) > 1 {
			// A single binary was requested: flatten everything into one
			// document, the original merge scope grouping is discarded.
			merged, err := MergePdfs(all)
			if err != nil {
				return ExportResult{}, err
			}
			data = merged
		}
		return ExportResult{Filename: "derivatives.pdf", ContentType: "application/pdf", Data: data}, nil
	}

	data, err := buildArchive(outputs, settings)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Filename: "derivatives.zip", ContentType: "application/zip", Data: data}, nil
}
