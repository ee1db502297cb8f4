// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// buildArchive writes all output files into one zip. The byte collection was
// parallel, but appending happens here under a single writer, never interleaved.
// Files are nested under per-group entry folders when model folders were
// requested and the outputs are still grouped per model (more than one group
// remaining, or a per-model merge).
func buildArchive(outputs []outputGroup, settings ExportSettings) ([]byte, error) {
	nested := settings.ModelFolders &&
		(len(outputs) > 1 || settings.MergeScope == MergeScopePerModel)

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for _, output := range outputs {
		prefix := ""
		if nested {
			prefix = output.name + "/"
		}
		for _, file := range output.files {
			writer, err := zipWriter.Create(prefix + file.Name)
			if err != nil {
				return nil, fmt.Errorf("creating archive entry %v failed: %v", prefix+file.Name, err)
			}
			if _, err := writer.Write(file.Data); err != nil {
				return nil, fmt.Errorf("writing archive entry %v failed: %v", prefix+file.Name, err)
			}
		}
	}
	if err := zipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
