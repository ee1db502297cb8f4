// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package aps

// Subset of the JSON:API shapes returned by the APS Project and Data Management
// services. Only the fields this application reads are mapped.

type Item struct {
	Id            string        `json:"id"`
	Type          string        `json:"type"`
	Attributes    Attributes    `json:"attributes"`
	Relationships Relationships `json:"relationships"`
}

type Attributes struct {
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Region        string `json:"region"`
	FileType      string `json:"fileType"`
	VersionNumber int    `json:"versionNumber"`
}

type Relationships struct {
	Item *Relationship `json:"item"`
}

type Relationship struct {
	Data *RelationshipData `json:"data"`
}

type RelationshipData struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

type Links struct {
	Next *Link `json:"next"`
}

type Link struct {
	Href string `json:"href"`
}

type Warning struct {
	Title  string `json:"Title"`
	Detail string `json:"Detail"`
}

type Meta struct {
	Warnings []Warning `json:"warnings"`
}

// ListPage is one page of a folder contents listing.
type ListPage struct {
	Data  []Item `json:"data"`
	Links Links  `json:"links"`
}

// SearchPage is one page of a folder search, versions plus their included items.
type SearchPage struct {
	Data     []Item `json:"data"`
	Included []Item `json:"included"`
	Links    Links  `json:"links"`
}

func (l Links) NextHref() string {
	if l.Next == nil {
		return ""
	}
	return l.Next.Href
}

// DisplayName resolves the name of an entry the way the APS UI does.
func (i Item) DisplayName() string {
	if i.Attributes.DisplayName != "" {
		return i.Attributes.DisplayName
	}
	if i.Attributes.Name != "" {
		return i.Attributes.Name
	}
	return "Unnamed"
}
