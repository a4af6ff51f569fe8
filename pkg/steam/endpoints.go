package steam

import (
	"fmt"
	"net/url"
)

// BaseURL is the Steam storefront root.
const BaseURL = "https://store.steampowered.com"

// DetailsURL builds the appdetails endpoint for one identifier with the
// configured region and language.
func DetailsURL(appID int64, countryCode, language string) string {
	v := url.Values{}
	v.Set("appids", fmt.Sprintf("%d", appID))
	if countryCode != "" {
		v.Set("cc", countryCode)
	}
	if language != "" {
		v.Set("l", language)
	}
	return fmt.Sprintf("%s/api/appdetails?%s", BaseURL, v.Encode())
}

// StoreURL returns the public store page for an app.
func StoreURL(appID int64) string {
	return fmt.Sprintf("%s/app/%d/", BaseURL, appID)
}
