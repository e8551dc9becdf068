package render

import (
	"errors"
	"strings"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultLanguage is used for unknown or empty language codes.
const DefaultLanguage = "en"

// Message keys.
const (
	KeyTitle             = "title"
	KeySearchPlaceholder = "searchPlaceholder"
	KeySearchButton      = "searchButton"
	KeyCurrentLocation   = "currentLocation"
	KeySelectLocation    = "selectLocation"
	KeyTemperature       = "temperature"
	KeyWind              = "wind"
	KeyHumidity          = "humidity"
	KeyPressure          = "pressure"
	KeyRain              = "rain"
	KeyCloudiness        = "cloudiness"
	KeyForecast          = "forecast"
	KeyNotAvailable      = "notAvailable"

	KeyErrLocation   = "error.location"
	KeyErrNetwork    = "error.network"
	KeyErrCoordinate = "error.coordinate"
	KeyErrPayload    = "error.payload"
	KeyErrUnknown    = "error.unknown"
)

var translations = map[string]map[string]string{
	"en": {
		KeyTitle:             "Weather Dashboard",
		KeySearchPlaceholder: "Enter city name",
		KeySearchButton:      "Search",
		KeyCurrentLocation:   "Current Location",
		KeySelectLocation:    "Select a location",
		KeyTemperature:       "Temperature",
		KeyWind:              "Wind",
		KeyHumidity:          "Humidity",
		KeyPressure:          "Pressure",
		KeyRain:              "Rain",
		KeyCloudiness:        "Cloudiness",
		KeyForecast:          "24-hour forecast",
		KeyNotAvailable:      "n/a",
		KeyErrLocation:       "Location not found!",
		KeyErrNetwork:        "Network response was not ok",
		KeyErrCoordinate:     "Error getting location",
		KeyErrPayload:        "Weather data is incomplete",
		KeyErrUnknown:        "Something went wrong",
	},
	"no": {
		KeyTitle:             "Værvarsel Dashbord",
		KeySearchPlaceholder: "Skriv inn stedsnavn",
		KeySearchButton:      "Søk",
		KeyCurrentLocation:   "Nåværende posisjon",
		KeySelectLocation:    "Velg sted",
		KeyTemperature:       "Temperatur",
		KeyWind:              "Vind",
		KeyHumidity:          "Luftfuktighet",
		KeyPressure:          "Lufttrykk",
		KeyRain:              "Nedbør",
		KeyCloudiness:        "Skydekke",
		KeyForecast:          "24-timers varsel",
		KeyNotAvailable:      "i/t",
		KeyErrLocation:       "Fant ikke stedet!",
		KeyErrNetwork:        "Nettverksfeil",
		KeyErrCoordinate:     "Feil ved stedsbestemmelse",
		KeyErrPayload:        "Værdataene er ufullstendige",
		KeyErrUnknown:        "Noe gikk galt",
	},
}

// Languages lists the supported language codes.
func Languages() []string {
	return []string{"en", "no"}
}

// NormalizeLanguage returns lang if supported, else DefaultLanguage.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := translations[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// Message looks up key in lang, falling back to English and then to the key.
func Message(lang, key string) string {
	return common.FirstNonEmpty(
		translations[NormalizeLanguage(lang)][key],
		translations[DefaultLanguage][key],
		key,
	)
}

// Messages returns the full string table for lang, with English filling any
// gaps. The caller owns the returned map.
func Messages(lang string) map[string]string {
	out := make(map[string]string, len(translations[DefaultLanguage]))
	for key := range translations[DefaultLanguage] {
		out[key] = Message(lang, key)
	}
	return out
}

// ErrorMessage returns the single user-facing message for err.
func ErrorMessage(lang string, err error) string {
	return Message(lang, ErrorKey(err))
}

// ErrorKey maps an error to its message key.
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return KeyErrLocation
	case errors.Is(err, weather.ErrInvalidCoordinate):
		return KeyErrCoordinate
	case errors.Is(err, weather.ErrMalformedPayload):
		return KeyErrPayload
	case errors.Is(err, weather.ErrTransport):
		return KeyErrNetwork
	default:
		return KeyErrUnknown
	}
}
