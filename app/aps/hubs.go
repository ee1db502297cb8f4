// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

import (
	"context"
	"net/url"
	"strings"
)

type Hub struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

type Project struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type FolderEntry struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// FolderContent is a normalized entry of a folder listing as shown in the browse tree.
type FolderContent struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"` // "folders" or "items"
	IsRevitFile bool   `json:"isRevitFile"`
}

func GetHubs(ctx context.Context, token string) ([]Hub, []string, error) {
	response := struct {
		Data []Item `json:"data"`
		Meta Meta   `json:"meta"`
	}{}
	err := getRequest(ctx, "/project/v1/hubs", token, &response)
	if err != nil {
		return nil, nil, err
	}
	hubs := []Hub{}
	for _, h := range response.Data {
		hubs = append(hubs, Hub{Id: h.Id, Name: h.Attributes.Name, Region: h.Attributes.Region})
	}
	return hubs, normalizeWarnings(response.Meta.Warnings), nil
}

func normalizeWarnings(warnings []Warning) []string {
	res := []string{}
	for _, w := range warnings {
		switch {
		case w.Detail != "":
			res = append(res, w.Detail)
		case w.Title != "":
			res = append(res, w.Title)
		default:
			res = append(res, "Unknown warning")
		}
	}
	return res
}

func GetProjects(ctx context.Context, hubId, token string) ([]Project, error) {
	response := struct {
		Data []Item `json:"data"`
	}{}
	err := getRequest(ctx, "/project/v1/hubs/"+url.PathEscape(hubId)+"/projects", token, &response)
	if err != nil {
		return nil, err
	}
	projects := []Project{}
	for _, p := range response.Data {
		projects = append(projects, Project{Id: p.Id, Name: p.Attributes.Name})
	}
	return projects, nil
}

// GetTopFolders lists the folder entries at the root of a project, non-folder
// entries are filtered out.
func GetTopFolders(ctx context.Context, hubId, projectId, token string) ([]FolderEntry, error) {
	response := struct {
		Data []Item `json:"data"`
	}{}
	path := "/project/v1/hubs/" + url.PathEscape(hubId) + "/projects/" + url.PathEscape(projectId) + "/topFolders"
	err := getRequest(ctx, path, token, &response)
	if err != nil {
		return nil, err
	}
	folders := []FolderEntry{}
	for _, f := range response.Data {
		if f.Type != "folders" {
			continue
		}
		folders = append(folders, FolderEntry{Id: f.Id, Name: f.DisplayName()})
	}
	return folders, nil
}

// GetFolderPage fetches one page of a folder contents listing. The path is either
// the initial contents path or the next link of the previous page.
func GetFolderPage(ctx context.Context, path, token string) (ListPage, error) {
	page := ListPage{}
	err := getRequest(ctx, path, token, &page)
	return page, err
}

// GetSearchPage fetches one page of a folder search, the path is either the
// initial search path or the next link of the previous page.
func GetSearchPage(ctx context.Context, path, token string) (SearchPage, error) {
	page := SearchPage{}
	err := getRequest(ctx, path, token, &page)
	return page, err
}

func FolderContentsPath(projectId, folderId string) string {
	return "/data/v1/projects/" + url.PathEscape(projectId) + "/folders/" + url.PathEscape(folderId) + "/contents"
}

// GetFolderContents returns a normalized page of folder entries plus the link to
// the next page, empty when the listing is exhausted.
func GetFolderContents(ctx context.Context, projectId, folderId, pageUrl, token string) ([]FolderContent, string, error) {
	path := pageUrl
	if path == "" {
		path = FolderContentsPath(projectId, folderId)
	}
	page, err := GetFolderPage(ctx, path, token)
	if err != nil {
		return nil, "", err
	}
	contents := []FolderContent{}
	for _, entry := range page.Data {
		name := entry.DisplayName()
		entryType := "items"
		if entry.Type == "folders" {
			entryType = "folders"
		}
		contents = append(contents, FolderContent{
			Id:          entry.Id,
			Name:        name,
			Type:        entryType,
			IsRevitFile: strings.HasSuffix(strings.ToLower(name), ".rvt"),
		})
	}
	return contents, page.Links.NextHref(), nil
}
