// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"bimexport/app/metrics"
)

// SignedDownload is a short-lived access descriptor for one derivative: the
// content location plus the three signing parameters that grant access to it.
type SignedDownload struct {
	Url       string
	Policy    string
	KeyPairId string
	Signature string
}

type DownloadedFile struct {
	Name string
	Data []byte
}

// GetSignedDownload requests an access descriptor scoped to a single derivative.
// Descriptors are not reusable across derivatives, one request per derivative.
func GetSignedDownload(ctx context.Context, urn, derivativeUrn, token string) (SignedDownload, error) {
	path := "/modelderivative/v2/designdata/" + url.PathEscape(urn) + "/manifest/" +
		url.PathEscape(derivativeUrn) + "/signedcookies?useCdn=true"
	request, err := http.NewRequestWithContext(ctx, "GET", resolveUrl(path), nil)
	if err != nil {
		return SignedDownload{}, err
	}
	request.Header.Add("Authorization", "Bearer "+token)
	r, err := http.DefaultClient.Do(request)
	if err != nil {
		return SignedDownload{}, err
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return SignedDownload{}, err
	}
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return SignedDownload{}, fmt.Errorf("getting signed cookies for %v failed: %d - %s", derivativeUrn, r.StatusCode, string(b))
	}
	body := struct {
		Url string `json:"url"`
	}{}
	err = json.Unmarshal(b, &body)
	if err != nil || body.Url == "" {
		return SignedDownload{}, fmt.Errorf("getting signed cookies for %v failed: no url in response", derivativeUrn)
	}
	res := SignedDownload{Url: body.Url}
	for _, cookie := range r.Cookies() {
		switch cookie.Name {
		case "CloudFront-Policy":
			res.Policy = cookie.Value
		case "CloudFront-Key-Pair-Id":
			res.KeyPairId = cookie.Value
		case "CloudFront-Signature":
			res.Signature = cookie.Value
		}
	}
	return res, nil
}

// ContentUrl appends the signing parameters as query parameters. They are the
// credential, the content fetch itself carries no bearer header.
func (s SignedDownload) ContentUrl() string {
	return s.Url + "?Policy=" + s.Policy + "&Key-Pair-Id=" + s.KeyPairId + "&Signature=" + s.Signature
}

// DeriveFileName returns the last path segment of a derivative urn.
func DeriveFileName(derivativeUrn string) string {
	segments := strings.Split(derivativeUrn, "/")
	name := segments[len(segments)-1]
	if name == "" {
		return "unknown.pdf"
	}
	return name
}

func DownloadDerivative(ctx context.Context, signed SignedDownload, derivativeUrn string) (DownloadedFile, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", signed.ContentUrl(), nil)
	if err != nil {
		return DownloadedFile{}, err
	}
	r, err := http.DefaultClient.Do(request)
	if err != nil {
		return DownloadedFile{}, err
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return DownloadedFile{}, err
	}
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return DownloadedFile{}, fmt.Errorf("downloading derivative %v failed: %d", derivativeUrn, r.StatusCode)
	}
	metrics.DownloadedBytes.Add(float64(len(b)))
	return DownloadedFile{Name: DeriveFileName(derivativeUrn), Data: b}, nil
}

// DownloadAll resolves and downloads every derivative of a model in parallel.
// Results are returned in the order of the requested derivative urns. The first
// failure cancels the remaining downloads and fails the whole call.
func DownloadAll(ctx context.Context, urn string, derivativeUrns []string, token string) ([]DownloadedFile, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	files := make([]DownloadedFile, len(derivativeUrns))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for i, derivativeUrn := range derivativeUrns {
		wg.Add(1)
		go func(i int, derivativeUrn string) {
			defer wg.Done()
			signed, err := GetSignedDownload(ctx, urn, derivativeUrn, token)
			if err == nil {
				files[i], err = DownloadDerivative(ctx, signed, derivativeUrn)
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
			}
		}(i, derivativeUrn)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return files, nil
}
