// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bimexport/app/config"
)

func resolveUrl(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return config.GetConfig().ApsServer + path
}

func getRequest(ctx context.Context, path, token string, response interface{}) error {
	request, err := http.NewRequestWithContext(ctx, "GET", resolveUrl(path), nil)
	if err != nil {
		return err
	}
	request.Header.Add("Accept", "application/json")
	request.Header.Add("Authorization", "Bearer "+token)
	r, err := http.DefaultClient.Do(request)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return fmt.Errorf("request to %v failed: %d - %s", path, r.StatusCode, string(b))
	}
	err = json.Unmarshal(b, response)
	if err != nil {
		return fmt.Errorf("unexpected response from %v: %s", path, string(b))
	}
	return nil
}
