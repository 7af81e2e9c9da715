package domain

// Paper is one scholar-search result as the papers backend returns it.
// Optional enrichment blocks are pointers so absence survives round trips.
type Paper struct {
	Position        int              `json:"position,omitempty"`
	Title           string           `json:"title"`
	Link            string           `json:"link,omitempty"`
	Snippet         string           `json:"snippet,omitempty"`
	DOI             string           `json:"doi,omitempty"`
	PublicationInfo *PublicationInfo `json:"publication_info,omitempty"`
	Resources       []PaperResource  `json:"resources,omitempty"`
	Unpaywall       *UnpaywallInfo   `json:"unpaywall,omitempty"`
}

type PublicationInfo struct {
	Summary string   `json:"summary,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Journal string   `json:"journal,omitempty"`
	Year    int      `json:"year,omitempty"`
}

type PaperResource struct {
	Title      string `json:"title,omitempty"`
	FileFormat string `json:"file_format,omitempty"`
	Link       string `json:"link,omitempty"`
}

type UnpaywallInfo struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status,omitempty"`
	OAURL    string `json:"oa_url,omitempty"`
	PDFURL   string `json:"pdf_url,omitempty"`
}

// Extract is a privately saved paper excerpt, the thing a participant
// picks from when sharing a reference into a room.
type Extract struct {
	ID              FlexID `json:"id"`
	Title           string `json:"title"`
	Authors         string `json:"authors,omitempty"`
	PublicationInfo string `json:"publication_info,omitempty"`
	DOI             string `json:"doi,omitempty"`
	Link            string `json:"link,omitempty"`
	PDFLink         string `json:"pdf_link,omitempty"`
	PublicationLink string `json:"publication_link,omitempty"`
	Extract         string `json:"extract"`
	PageNumber      string `json:"page_number,omitempty"`
	AdditionalInfo  string `json:"additional_info,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}
