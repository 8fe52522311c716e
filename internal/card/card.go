package card

import "fmt"

// Source records where a resolved card image came from
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Request represents one decklist entry
type Request struct {
	Name            string // Card name as written (trimmed)
	Quantity        int    // Number of copies to print, always positive
	SetCode         string // Optional set code (lowercase), e.g. 2x2
	CollectorNumber string // Optional collector number within the set
	Line            int    // 1-based source line, 0 for command line arguments
}

// HasPrinting reports whether the request pins a specific printing
func (r Request) HasPrinting() bool {
	return r.SetCode != "" && r.CollectorNumber != ""
}

// String renders the request the way it would appear in a decklist
func (r Request) String() string {
	if r.HasPrinting() {
		return fmt.Sprintf("%dx %s (%s) %s", r.Quantity, r.Name, r.SetCode, r.CollectorNumber)
	}
	return fmt.Sprintf("%dx %s", r.Quantity, r.Name)
}

// Resolved represents a card whose image has been located
type Resolved struct {
	Name    string // Canonical name (as reported by the API, or the requested name on a cache hit)
	Key     string // Cache key the image is stored under
	SetCode string // Set of the printing, when known
	Image   []byte // Encoded image bytes (PNG or JPEG)
	Source  Source
}
