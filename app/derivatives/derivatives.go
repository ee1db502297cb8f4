// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

// Package derivatives normalizes the raw Model Derivative manifest tree into the
// flat list of selectable sheet derivatives and their view set groupings. All
// functions are pure, empty input yields empty results.
package derivatives

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Manifest struct {
	Urn         string       `json:"urn"`
	Derivatives []Derivative `json:"derivatives"`
}

type Derivative struct {
	Name       string      `json:"name"`
	Properties *Properties `json:"properties,omitempty"`
	Children   []Node      `json:"children,omitempty"`
}

type Node struct {
	Guid     string   `json:"guid"`
	Name     string   `json:"name"`
	Role     string   `json:"role,omitempty"`
	Urn      string   `json:"urn,omitempty"`
	ViewSets ViewSets `json:"ViewSets,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

type Properties struct {
	DocumentInformation DocumentInformation `json:"Document Information"`
}

type DocumentInformation struct {
	RVTVersion string `json:"RVTVersion"`
}

// ViewSets is normalized to a list on unmarshalling: the manifest encodes it as
// either a single string or a list of strings, and it may be absent.
type ViewSets []string

func (v *ViewSets) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*v = ViewSets{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*v = ViewSets(list)
	return nil
}

type PdfDerivative struct {
	Guid     string   `json:"guid"`
	Name     string   `json:"name"`
	Urn      string   `json:"urn"`
	ViewSets []string `json:"viewSets"`
	Active   bool     `json:"active"`
}

type ViewSet struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type Compatibility struct {
	Supported bool `json:"supported"`
	Version   *int `json:"version"`
}

// FilterPdfDerivatives walks the direct children of the primary derivative root
// and keeps those that carry a nested pdf-page child. The emitted derivative is
// named after the last segment of the pdf child's urn, falling back to the pdf
// child's own name.
func FilterPdfDerivatives(children []Node) []PdfDerivative {
	result := []PdfDerivative{}
	for _, child := range children {
		pdfChild := findPdfPage(child.Children)
		if pdfChild == nil {
			continue
		}
		name := pdfChild.Name
		if pdfChild.Urn != "" {
			segments := strings.Split(pdfChild.Urn, "/")
			name = segments[len(segments)-1]
		}
		result = append(result, PdfDerivative{
			Guid:     pdfChild.Guid,
			Name:     name,
			Urn:      pdfChild.Urn,
			ViewSets: append([]string{}, child.ViewSets...),
			Active:   true,
		})
	}
	return result
}

func findPdfPage(children []Node) *Node {
	for i := range children {
		if children[i].Role == "pdf-page" {
			return &children[i]
		}
	}
	return nil
}

// ExtractViewSets collects the view set names present on any derivative,
// deduplicated in first-seen order.
func ExtractViewSets(derivatives []PdfDerivative) []ViewSet {
	seen := map[string]bool{}
	result := []ViewSet{}
	for _, d := range derivatives {
		for _, vs := range d.ViewSets {
			if seen[vs] {
				continue
			}
			seen[vs] = true
			result = append(result, ViewSet{Name: vs, Active: true})
		}
	}
	return result
}

// GroupByViewSet groups derivatives by view set name. A derivative naming N view
// sets is shared (by pointer) into all N groups, so bulk toggling through any
// group is visible everywhere.
func GroupByViewSet(derivatives []PdfDerivative) map[string][]*PdfDerivative {
	groups := map[string][]*PdfDerivative{}
	for i := range derivatives {
		for _, vs := range derivatives[i].ViewSets {
			groups[vs] = append(groups[vs], &derivatives[i])
		}
	}
	return groups
}

// CheckRevitVersion reads the Revit version from the derivative's document
// properties. Models older than 2022 do not produce sheet pdf derivatives.
func CheckRevitVersion(derivative Derivative) Compatibility {
	if derivative.Properties == nil {
		return Compatibility{Supported: false, Version: nil}
	}
	versionStr := derivative.Properties.DocumentInformation.RVTVersion
	if versionStr == "" {
		return Compatibility{Supported: false, Version: nil}
	}
	version, err := strconv.Atoi(strings.TrimSpace(versionStr))
	if err != nil {
		return Compatibility{Supported: false, Version: nil}
	}
	return Compatibility{Supported: version >= 2022, Version: &version}
}
