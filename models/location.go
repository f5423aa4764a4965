package models

import "time"

// NotFound marks an address component the geocoder did not return.
const NotFound = "Not found"

// AddressHierarchy is the administrative breakdown of a resolved coordinate pair.
type AddressHierarchy struct {
	PostalCode  string `bson:"postalCode" json:"postalCode"`
	Locality    string `bson:"locality" json:"locality"`
	AdminLevel3 string `bson:"adminLevel3" json:"adminLevel3"` // district
	AdminLevel2 string `bson:"adminLevel2" json:"adminLevel2"` // state
	AdminLevel1 string `bson:"adminLevel1" json:"adminLevel1"` // country
}

// Present reports whether an address component carries a usable value.
func Present(v string) bool {
	return v != "" && v != NotFound
}

// Fingerprint returns the identifier used to detect a change of service location:
// the postal code when known, otherwise the most specific admin-level name.
func (h AddressHierarchy) Fingerprint() string {
	for _, v := range []string{h.PostalCode, h.AdminLevel3, h.Locality, h.AdminLevel2, h.AdminLevel1} {
		if Present(v) {
			return v
		}
	}
	return ""
}

// Coordinates is a latitude/longitude pair as submitted by the client.
type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// LocationSnapshot is the committed location/pricing state of a session.
type LocationSnapshot struct {
	Hierarchy    AddressHierarchy `json:"location"`
	Coordinates  *Coordinates     `json:"coordinates,omitempty"`
	Tier         PriceTier        `json:"tier"`
	Fingerprint  string           `json:"fingerprint"`
	SelectedCity string           `json:"selectedCity,omitempty"`
	Serving      bool             `json:"serving"`
	Seq          uint64           `json:"seq"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
