// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

import (
	"encoding/base64"
	"strings"
)

// EncodeUrn converts a version urn to the url-safe base64 form (without padding)
// that the Model Derivative service expects in its paths.
func EncodeUrn(urn string) string {
	if urn == "" {
		return ""
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(urn)), "=")
}

func DecodeUrn(encoded string) string {
	if encoded == "" {
		return ""
	}
	b, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encoded)
	if err != nil {
		return ""
	}
	return string(b)
}
