package inventory

// Reference is one inventory entry to be resolved to a document. It is
// read-only once loaded.
type Reference struct {
	ID        string
	Row       int
	Office    string
	DocNumber string
	Title     string
	IssueDate string
	DocType   string
	// URLs are unique by exact string and keep inventory order.
	URLs []string
	// MatchedURL comes from an earlier matching pass, if any.
	MatchedURL string
}

// CrossRefEntry is the known current portal location of a reference.
type CrossRefEntry struct {
	URL    string
	Status string
	Sheet  string
}

// CrossRef maps reference identity to its portal entry. A nil CrossRef is
// a valid empty map.
type CrossRef map[string]CrossRefEntry

// PortalURL returns the portal URL for id, if one is known.
func (c CrossRef) PortalURL(id string) (string, bool) {
	entry, ok := c[id]
	if !ok || entry.URL == "" {
		return "", false
	}
	return entry.URL, true
}

func (c CrossRef) Status(id string) string {
	return c[id].Status
}

// file layouts

type referenceDTO struct {
	ID         string   `yaml:"id"`
	Office     string   `yaml:"office"`
	DocNumber  string   `yaml:"doc_number"`
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Type       string   `yaml:"type"`
	URLs       []string `yaml:"urls"`
	Notes      string   `yaml:"notes"`
	MatchedURL string   `yaml:"matched_url"`
}

func (d referenceDTO) isEmpty() bool {
	return d.ID == "" && d.Office == "" && d.DocNumber == "" && d.Title == "" &&
		d.Date == "" && d.Type == "" && len(d.URLs) == 0 && d.Notes == "" && d.MatchedURL == ""
}

type inventoryDTO struct {
	References []referenceDTO `yaml:"references"`
}

type crossRefRowDTO struct {
	ID        string `yaml:"id"`
	PortalURL string `yaml:"portal_url"`
	Status    string `yaml:"status"`
}

type crossRefDTO struct {
	Sheets map[string][]crossRefRowDTO `yaml:"sheets"`
}
