// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

import (
	"context"
	"net/url"
)

// ItemTip identifies the latest version of an item. Urn is the base64-url encoded
// version urn as used by the Model Derivative service.
type ItemTip struct {
	Urn        string `json:"urn"`
	VersionUrn string `json:"versionUrn"`
	Name       string `json:"name"`
}

func GetItemTip(ctx context.Context, projectId, itemId, token string) (ItemTip, error) {
	response := struct {
		Data Item `json:"data"`
	}{}
	path := "/data/v1/projects/" + url.PathEscape(projectId) + "/items/" + url.PathEscape(itemId) + "/tip"
	err := getRequest(ctx, path, token, &response)
	if err != nil {
		return ItemTip{}, err
	}
	return ItemTip{
		Urn:        EncodeUrn(response.Data.Id),
		VersionUrn: response.Data.Id,
		Name:       response.Data.DisplayName(),
	}, nil
}
