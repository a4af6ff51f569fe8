package steam

import "encoding/json"

// Record is one fetched game detail row, immutable once written.
type Record struct {
	AppID                   int64
	Name                    string
	Price                   string
	OriginalPrice           float64
	ReviewRating            string
	ReviewCount             int
	ReleaseDate             string
	Developer               string
	Genre                   string
	MinimumRequirements     string
	RecommendedRequirements string
	StoreURL                string
}

// detailsResponse is the appdetails envelope, keyed by the requested
// app ID: {"570": {"success": true, "data": {...}}}
type detailsResponse map[string]appEntry

type appEntry struct {
	Success bool    `json:"success"`
	Data    appData `json:"data"`
}

type appData struct {
	Name             string          `json:"name"`
	SteamAppID       int64           `json:"steam_appid"`
	IsFree           bool            `json:"is_free"`
	ShortDescription string          `json:"short_description"`
	PriceOverview    *PriceOverview  `json:"price_overview"`
	Recommendations  Recommendations `json:"recommendations"`
	ReleaseDate      ReleaseDate     `json:"release_date"`
	Developers       []string        `json:"developers"`
	Genres           []Genre         `json:"genres"`
	// pc_requirements is an object for most apps but an empty JSON
	// array for some delisted ones, so it is decoded leniently.
	PCRequirements json.RawMessage `json:"pc_requirements"`
}

// PriceOverview carries prices in minor currency units (cents).
type PriceOverview struct {
	Currency         string `json:"currency"`
	Initial          int64  `json:"initial"`
	Final            int64  `json:"final"`
	DiscountPercent  int    `json:"discount_percent"`
	InitialFormatted string `json:"initial_formatted"`
	FinalFormatted   string `json:"final_formatted"`
}

type Recommendations struct {
	Total int `json:"total"`
}

type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type pcRequirements struct {
	Minimum     string `json:"minimum"`
	Recommended string `json:"recommended"`
}
