// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

import (
	"context"
	"net/url"

	"bimexport/app/derivatives"
)

// GetManifest fetches the derivative manifest of a model. The urn is the
// base64-url encoded version urn.
func GetManifest(ctx context.Context, urn, token string) (derivatives.Manifest, error) {
	manifest := derivatives.Manifest{}
	path := "/modelderivative/v2/designdata/" + url.PathEscape(urn) + "/manifest"
	err := getRequest(ctx, path, token, &manifest)
	return manifest, err
}
