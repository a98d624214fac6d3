package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Order lifecycle statuses.
const (
	OrderPlaced     = "placed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Listing statuses and verification states.
const (
	ListingActive   = "active"
	ListingInactive = "inactive"

	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Quality grades.
const (
	QualityBasic    = "Basic"
	QualityStandard = "Standard"
	QualityPremium  = "Premium"
)

// Grain size and color grades used by quality checks.
const (
	GrainUniform = "Uniform"
	GrainMixed   = "Mixed"
	GrainSmall   = "Small"

	ColorNatural    = "Natural"
	ColorMixed      = "Mixed"
	ColorDiscolored = "Discolored"
)

// Order is a buyer's purchase of a crop from a farmer. Records arrive from
// the storage layer with duck-typed field aliases (cropType vs milletType,
// district vs region, userId vs buyerId); UnmarshalJSON resolves those into
// the canonical fields so the engines never see the ambiguity.
type Order struct {
	ID         string    `json:"id"`
	MilletType string    `json:"milletType"`
	Quantity   float64   `json:"quantity"`
	PricePerKg float64   `json:"pricePerKg"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	FarmerID   string    `json:"farmerId"`
	BuyerID    string    `json:"buyerId"`
	Region     string    `json:"region"`
}

// TotalValue is always derived, never stored.
func (o Order) TotalValue() float64 { return o.Quantity * o.PricePerKg }

func (o *Order) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         string    `json:"id"`
		MilletType string    `json:"milletType"`
		CropType   string    `json:"cropType"`
		Quantity   float64   `json:"quantity"`
		PricePerKg float64   `json:"pricePerKg"`
		Status     string    `json:"status"`
		CreatedAt  time.Time `json:"createdAt"`
		FarmerID   string    `json:"farmerId"`
		BuyerID    string    `json:"buyerId"`
		UserID     string    `json:"userId"`
		Region     string    `json:"region"`
		District   string    `json:"district"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	o.ID = raw.ID
	o.MilletType = firstNonEmpty(raw.MilletType, raw.CropType)
	o.Quantity = raw.Quantity
	o.PricePerKg = raw.PricePerKg
	o.Status = raw.Status
	o.CreatedAt = raw.CreatedAt
	o.FarmerID = raw.FarmerID
	o.BuyerID = firstNonEmpty(raw.BuyerID, raw.UserID)
	o.Region = firstNonEmpty(raw.Region, raw.District)
	return nil
}

// Listing is a farmer's offer of produce for sale.
type Listing struct {
	ID                 string    `json:"id"`
	MilletType         string    `json:"milletType"`
	PricePerKg         float64   `json:"pricePerKg"`
	Quantity           float64   `json:"quantity"`
	Quality            string    `json:"quality"`
	Status             string    `json:"status"`
	VerificationStatus string    `json:"verificationStatus"`
	HarvestDate        time.Time `json:"harvestDate"`
	FarmerID           string    `json:"farmerId"`
	FarmerName         string    `json:"farmerName"`
	FarmerPhone        string    `json:"farmerPhone,omitempty"`
	Location           string    `json:"location"`
	Taluk              string    `json:"taluk"`
	Region             string    `json:"region"`
	Unit               string    `json:"unit,omitempty"`
}

func (l *Listing) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID                 string    `json:"id"`
		MilletType         string    `json:"milletType"`
		CropType           string    `json:"cropType"`
		PricePerKg         float64   `json:"pricePerKg"`
		Quantity           float64   `json:"quantity"`
		Quality            string    `json:"quality"`
		Status             string    `json:"status"`
		VerificationStatus string    `json:"verificationStatus"`
		HarvestDate        time.Time `json:"harvestDate"`
		FarmerID           string    `json:"farmerId"`
		FarmerName         string    `json:"farmerName"`
		FarmerPhone        string    `json:"farmerPhone"`
		Location           string    `json:"location"`
		Taluk              string    `json:"taluk"`
		Region             string    `json:"region"`
		District           string    `json:"district"`
		Unit               string    `json:"unit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.ID = raw.ID
	l.MilletType = firstNonEmpty(raw.MilletType, raw.CropType)
	l.PricePerKg = raw.PricePerKg
	l.Quantity = raw.Quantity
	l.Quality = raw.Quality
	l.Status = raw.Status
	l.VerificationStatus = raw.VerificationStatus
	l.HarvestDate = raw.HarvestDate
	l.FarmerID = raw.FarmerID
	l.FarmerName = raw.FarmerName
	l.FarmerPhone = raw.FarmerPhone
	l.Location = raw.Location
	l.Taluk = raw.Taluk
	l.Region = firstNonEmpty(raw.Region, raw.District)
	l.Unit = raw.Unit
	return nil
}

// PriceSample is one historical price observation for a crop. Samples keyed
// by productId in older data are folded into MilletType at decode time.
type PriceSample struct {
	MilletType string    `json:"milletType"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p *PriceSample) UnmarshalJSON(b []byte) error {
	var raw struct {
		MilletType string    `json:"milletType"`
		ProductID  string    `json:"productId"`
		Price      float64   `json:"price"`
		Timestamp  time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.MilletType = firstNonEmpty(raw.MilletType, raw.ProductID)
	p.Price = raw.Price
	p.Timestamp = raw.Timestamp
	return nil
}

// FarmerProfile carries the trust metric consumed by the match engine.
type FarmerProfile struct {
	FarmerID         string  `json:"farmerId"`
	Name             string  `json:"name,omitempty"`
	CredibilityScore float64 `json:"credibilityScore"`
}

// DefaultCredibility is assumed when no profile exists for a farmer.
const DefaultCredibility = 50.0

// MatchPreferences is a buyer's constraint vector for product matching.
// Pointer fields distinguish "not set" from an explicit zero, which matters
// for tolerance (0 means exact-price matching) and max age (0 means only
// today's harvest).
type MatchPreferences struct {
	MaxPrice             float64  `json:"maxPrice"`
	PreferredQuality     string   `json:"preferredQuality"`
	PriceTolerancePct    *float64 `json:"priceTolerancePct,omitempty"`
	MilletTypes          []string `json:"milletTypes,omitempty"`
	MinQuantity          float64  `json:"minQuantity,omitempty"`
	MaxAgeDays           *int     `json:"maxAgeDays,omitempty"`
	MinFarmerCredibility *float64 `json:"minFarmerCredibility,omitempty"`
	AllowLowerQuality    bool     `json:"allowLowerQuality,omitempty"`
	Location             string   `json:"location,omitempty"`
	Taluk                string   `json:"taluk,omitempty"`
}

// QualityBatch is the physical profile of a produce batch under inspection.
type QualityBatch struct {
	BatchID         string  `json:"batchId"`
	MilletType      string  `json:"milletType"`
	MoistureContent float64 `json:"moistureContent"`
	ImpurityLevel   float64 `json:"impurityLevel"`
	GrainSize       string  `json:"grainSize"`
	Color           string  `json:"color"`
	Weight          float64 `json:"weight,omitempty"`
	ExpectedWeight  float64 `json:"expectedWeight,omitempty"`
}

// QualityRank orders grades for floor comparisons: Basic < Standard < Premium.
// Unknown grades rank as Standard.
func QualityRank(quality string) int {
	switch quality {
	case QualityBasic:
		return 1
	case QualityPremium:
		return 3
	default:
		return 2
	}
}

// CropName falls back to "Unknown" for records missing a crop, so grouping
// keys are never empty.
func CropName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}
	return name
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
