package models

import "time"

// TierSource tags the granularity a PriceTier was resolved at.
type TierSource string

const (
	TierCustom   TierSource = "custom"
	TierDistrict TierSource = "district"
	TierState    TierSource = "state"
	TierCountry  TierSource = "country"
	TierNone     TierSource = "none"
)

// PriceRecord is a single price/availability entry returned by the pricing service.
type PriceRecord struct {
	Category    string  `json:"category" bson:"category"`
	SubCategory string  `json:"subcategory" bson:"subcategory"`
	ServiceName string  `json:"servicename" bson:"servicename"`
	Price       float64 `json:"price,omitempty" bson:"price,omitempty"`
	Available   *bool   `json:"available,omitempty" bson:"available,omitempty"`
	ServiceTime string  `json:"serviceTime,omitempty" bson:"serviceTime,omitempty"`
}

// PriceTier is the set of price records active for a location.
type PriceTier struct {
	Source     TierSource    `json:"source" bson:"source"`
	Key        string        `json:"key,omitempty" bson:"key,omitempty"`
	Records    []PriceRecord `json:"records" bson:"records"`
	ResolvedAt time.Time     `json:"resolvedAt" bson:"resolvedAt"`
}

// NoTier is the tier used when nothing is served at a location.
func NoTier() PriceTier {
	return PriceTier{Source: TierNone, Records: []PriceRecord{}, ResolvedAt: time.Now()}
}

// Serving reports whether the tier carries any priced records.
func (t PriceTier) Serving() bool {
	return t.Source != TierNone && t.Source != "" && len(t.Records) > 0
}
