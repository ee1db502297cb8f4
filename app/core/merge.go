// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// stateless server process, no per-user pdfcpu config dir
	api.DisableConfigDir()
}

// MergePdfs concatenates documents in the order supplied, each document's
// internal page order preserved. The output is always a newly written document,
// merging a single input is not a passthrough of its bytes.
func MergePdfs(documents [][]byte) ([]byte, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("cannot merge an empty set of documents")
	}
	readers := make([]io.ReadSeeker, len(documents))
	for i, d := range documents {
		readers[i] = bytes.NewReader(d)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
		return nil, fmt.Errorf("merging documents failed: %v", err)
	}
	return buf.Bytes(), nil
}

// PageCount reports the number of pages of a document.
func PageCount(document []byte) (int, error) {
	return api.PageCount(bytes.NewReader(document), nil)
}
