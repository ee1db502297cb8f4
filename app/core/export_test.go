// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"bimexport/app/aps"
)

// minimalPdf writes a valid single-generation pdf with the requested number of
// empty pages, enough for the merge library to accept it as input.
func minimalPdf(t *testing.T, pages int) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := []int{}
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}
	buf.WriteString("%PDF-1.4\n")
	kids := []string{}
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%v] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n", 3+i))
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

func TestMinimalPdfFixture(t *testing.T) {
	for _, pages := range []int{1, 2, 3} {
		count, err := PageCount(minimalPdf(t, pages))
		if err != nil {
			t.Fatalf("fixture with %v pages is not readable: %v", pages, err)
		}
		if count != pages {
			t.Errorf("expected %v pages, got %v", pages, count)
		}
	}
}

func TestSanitizeFolderName(t *testing.T) {
	if got := SanitizeFolderName(`file<>:"/\|?*name`); got != "file_________name" {
		t.Errorf("unexpected sanitized name: %q", got)
	}
	if got := SanitizeFolderName("   "); got != "unknown" {
		t.Errorf("expected whitespace-only name to become unknown, got %q", got)
	}
	if got := SanitizeFolderName("Architecture Model"); got != "Architecture Model" {
		t.Errorf("expected safe name to be kept, got %q", got)
	}
}

func TestMergePdfsEmpty(t *testing.T) {
	_, err := MergePdfs(nil)
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestMergePdfsSingle(t *testing.T) {
	doc := minimalPdf(t, 2)
	merged, err := MergePdfs([][]byte{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, err := PageCount(merged)
	if err != nil {
		t.Fatalf("merged document not readable: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 pages, got %v", count)
	}
}

func TestMergePdfsAssociative(t *testing.T) {
	a := minimalPdf(t, 1)
	b := minimalPdf(t, 2)
	c := minimalPdf(t, 1)

	flat, err := MergePdfs([][]byte{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ab, err := MergePdfs([][]byte{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nested, err := MergePdfs([][]byte{ab, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flatCount, err := PageCount(flat)
	if err != nil {
		t.Fatalf("merged document not readable: %v", err)
	}
	nestedCount, err := PageCount(nested)
	if err != nil {
		t.Fatalf("merged document not readable: %v", err)
	}
	if flatCount != 4 || nestedCount != 4 {
		t.Errorf("expected 4 pages either way, got %v and %v", flatCount, nestedCount)
	}
}

func TestParseExportRequestSingleModel(t *testing.T) {
	groups, settings, err := ParseExportRequest([]byte(`{"urn":"urn:abc","derivatives":["d1","d2"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 1 || groups[0].Urn != "urn:abc" || len(groups[0].Derivatives) != 2 {
		t.Errorf("unexpected groups: %+v", groups)
	}
	if settings.MergeScope != MergeScopeNone || !settings.Zip || !settings.ModelFolders {
		t.Errorf("unexpected defaults: %+v", settings)
	}
}

func TestParseExportRequestMultiModel(t *testing.T) {
	body := `{"files":[{"urn":"urn:a","derivatives":["d1"],"name":"Model A"},{"urn":"urn:b","derivatives":["d2"]}],"options":{"mergeScope":"per-model","zip":false,"modelFolders":false}}`
	groups, settings, err := ParseExportRequest([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "Model A" {
		t.Errorf("unexpected groups: %+v", groups)
	}
	if settings.MergeScope != MergeScopePerModel || settings.Zip || settings.ModelFolders {
		t.Errorf("unexpected settings: %+v", settings)
	}
}

func TestParseExportRequestValidation(t *testing.T) {
	invalid := []string{
		`not json`,
		`{}`,
		`{"derivatives":["d1"]}`,
		`{"files":[]}`,
		`{"files":[{"derivatives":["d1"]}]}`,
		`{"files":[{"urn":"urn:a"}]}`,
		`{"files":[{"urn":"urn:a","derivatives":[]}]}`,
	}
	for _, body := range invalid {
		if _, _, err := ParseExportRequest([]byte(body)); err == nil {
			t.Errorf("expected error for %v", body)
		}
	}
}

func TestParseExportRequestUnknownMergeScope(t *testing.T) {
	_, settings, err := ParseExportRequest([]byte(`{"urn":"urn:abc","derivatives":["d1"],"options":{"mergeScope":"everything"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.MergeScope != MergeScopeNone {
		t.Errorf("expected unknown merge scope to fall back to none, got %v", settings.MergeScope)
	}
}

// stubDownload serves fixture documents instead of hitting the network, one
// single-page file per requested derivative urn.
func stubDownload(t *testing.T, failUrn string) func() {
	t.Helper()
	orig := download
	download = func(ctx context.Context, urn string, derivativeUrns []string, token string) ([]aps.DownloadedFile, error) {
		if urn == failUrn {
			return nil, fmt.Errorf("downloading derivative of %v failed: 403", urn)
		}
		files := make([]aps.DownloadedFile, len(derivativeUrns))
		for i, d := range derivativeUrns {
			files[i] = aps.DownloadedFile{Name: aps.DeriveFileName(d), Data: minimalPdf(t, 1)}
		}
		return files, nil
	}
	return func() { download = orig }
}

func readArchive(t *testing.T, data []byte) map[string]int {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("result is not a readable archive: %v", err)
	}
	entries := map[string]int{}
	for _, f := range reader.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %v failed: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			t.Fatalf("reading entry %v failed: %v", f.Name, err)
		}
		r.Close()
		count, err := PageCount(buf.Bytes())
		if err != nil {
			t.Fatalf("entry %v is not a readable document: %v", f.Name, err)
		}
		entries[f.Name] = count
	}
	return entries
}

func TestRunExportPerModelZip(t *testing.T) {
	defer stubDownload(t, "")()

	groups := []FileGroup{{Urn: "urn:a", Derivatives: []string{"sheets/A-101.pdf", "sheets/A-102.pdf"}, Name: "   "}}
	settings := ExportSettings{MergeScope: MergeScopePerModel, Zip: true, ModelFolders: true}
	res, err := RunExport(context.Background(), groups, settings, "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "derivatives.zip" || res.ContentType != "application/zip" {
		t.Errorf("unexpected result metadata: %v %v", res.Filename, res.ContentType)
	}
	entries := readArchive(t, res.Data)
	if len(entries) != 1 {
		t.Fatalf("expected a single merged entry, got %v", entries)
	}
	if entries["unknown/unknown.pdf"] != 2 {
		t.Errorf("expected unknown/unknown.pdf with 2 pages, got %v", entries)
	}
}

func TestRunExportSingleBinary(t *testing.T) {
	defer stubDownload(t, "")()

	groups := []FileGroup{
		{Urn: "urn:a", Derivatives: []string{"a.pdf"}},
		{Urn: "urn:b", Derivatives: []string{"b.pdf"}},
	}
	settings := ExportSettings{MergeScope: MergeScopeNone, Zip: false, ModelFolders: true}
	res, err := RunExport(context.Background(), groups, settings, "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "derivatives.pdf" || res.ContentType != "application/pdf" {
		t.Errorf("unexpected result metadata: %v %v", res.Filename, res.ContentType)
	}
	count, err := PageCount(res.Data)
	if err != nil {
		t.Fatalf("result not readable: %v", err)
	}
	if count != 2 {
		t.Errorf("expected everything flattened into 2 pages, got %v", count)
	}
}

func TestRunExportMergeAll(t *testing.T) {
	defer stubDownload(t, "")()

	groups := []FileGroup{
		{Urn: "urn:a", Derivatives: []string{"a.pdf", "b.pdf"}, Name: "Model A"},
		{Urn: "urn:b", Derivatives: []string{"c.pdf"}, Name: "Model B"},
	}
	settings := ExportSettings{MergeScope: MergeScopeAll, Zip: true, ModelFolders: true}
	res, err := RunExport(context.Background(), groups, settings, "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := readArchive(t, res.Data)
	// the merge collapsed everything into one output, no per-model nesting left
	if entries["merged.pdf"] != 3 || len(entries) != 1 {
		t.Errorf("expected a flat merged.pdf with 3 pages, got %v", entries)
	}
}

func TestRunExportModelFolders(t *testing.T) {
	defer stubDownload(t, "")()

	groups := []FileGroup{
		{Urn: "urn:a", Derivatives: []string{"a.pdf"}, Name: "Model A"},
		{Urn: "urn:b", Derivatives: []string{"b.pdf"}},
	}

	nested, err := RunExport(context.Background(), groups,
		ExportSettings{MergeScope: MergeScopeNone, Zip: true, ModelFolders: true}, "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := readArchive(t, nested.Data)
	if _, ok := entries["Model A/a.pdf"]; !ok {
		t.Errorf("expected named group folder entry, got %v", entries)
	}
	if _, ok := entries["file-2/b.pdf"]; !ok {
		t.Errorf("expected fallback group folder entry, got %v", entries)
	}

	flat, err := RunExport(context.Background(), groups,
		ExportSettings{MergeScope: MergeScopeNone, Zip: true, ModelFolders: false}, "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries = readArchive(t, flat.Data)
	if _, ok := entries["a.pdf"]; !ok {
		t.Errorf("expected flat entries without model folders, got %v", entries)
	}
}

func TestRunExportDownloadFailure(t *testing.T) {
	defer stubDownload(t, "urn:bad")()

	groups := []FileGroup{
		{Urn: "urn:a", Derivatives: []string{"a.pdf"}},
		{Urn: "urn:bad", Derivatives: []string{"b.pdf"}},
	}
	_, err := RunExport(context.Background(), groups,
		ExportSettings{MergeScope: MergeScopeNone, Zip: true, ModelFolders: true}, "test-token")
	if err == nil {
		t.Fatal("expected the whole export to fail")
	}
	if !strings.HasPrefix(err.Error(), "downloading:") {
		t.Errorf("expected a downloading stage error, got %v", err)
	}
}

func TestRunExportNothingToExport(t *testing.T) {
	orig := download
	download = func(ctx context.Context, urn string, derivativeUrns []string, token string) ([]aps.DownloadedFile, error) {
		return []aps.DownloadedFile{}, nil
	}
	defer func() { download = orig }()

	groups := []FileGroup{{Urn: "urn:a", Derivatives: []string{"a.pdf"}}}
	_, err := RunExport(context.Background(), groups,
		ExportSettings{MergeScope: MergeScopeNone, Zip: true, ModelFolders: true}, "test-token")
	if err == nil {
		t.Fatal("expected error when nothing was downloaded")
	}
	if !strings.Contains(err.Error(), "no derivatives to export") {
		t.Errorf("unexpected error: %v", err)
	}
}
