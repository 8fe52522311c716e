package scryfall

// ImageURIs holds the image variants Scryfall publishes for a card face.
type ImageURIs struct {
	Small      string `json:"small"`
	Normal     string `json:"normal"`
	Large      string `json:"large"`
	PNG        string `json:"png"`
	ArtCrop    string `json:"art_crop"`
	BorderCrop string `json:"border_crop"`
}

// Get returns the URI for a size name ("png", "large", ...).
func (u *ImageURIs) Get(size string) string {
	if u == nil {
		return ""
	}
	switch size {
	case "small":
		return u.Small
	case "normal":
		return u.Normal
	case "large":
		return u.Large
	case "png":
		return u.PNG
	case "art_crop":
		return u.ArtCrop
	case "border_crop":
		return u.BorderCrop
	}
	return ""
}

// Face is one side of a multi-faced card.
type Face struct {
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost"`
	TypeLine   string     `json:"type_line"`
	OracleText string     `json:"oracle_text"`
	ImageURIs  *ImageURIs `json:"image_uris"`
}

// Card is the subset of the Scryfall card object this tool uses.
type Card struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Set             string     `json:"set"`
	SetName         string     `json:"set_name"`
	CollectorNumber string     `json:"collector_number"`
	Rarity          string     `json:"rarity"`
	ManaCost        string     `json:"mana_cost"`
	TypeLine        string     `json:"type_line"`
	OracleText      string     `json:"oracle_text"`
	Artist          string     `json:"artist"`
	ImageURIs       *ImageURIs `json:"image_uris"`
	CardFaces       []Face     `json:"card_faces"`
}

// DefaultImageSizes is the preference order used when none is configured.
var DefaultImageSizes = []string{"png", "large", "normal"}

// ImageURL returns the first available image in the preferred sizes. Cards
// whose faces carry separate images (transform, modal DFC) use the front face.
func (c *Card) ImageURL(preferred ...string) (string, error) {
	if len(preferred) == 0 {
		preferred = DefaultImageSizes
	}
	candidates := []*ImageURIs{c.ImageURIs}
	if len(c.CardFaces) > 0 {
		candidates = append(candidates, c.CardFaces[0].ImageURIs)
	}
	for _, uris := range candidates {
		for _, size := range preferred {
			if u := uris.Get(size); u != "" {
				return u, nil
			}
		}
	}
	return "", ErrNoImage
}

type apiError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}
