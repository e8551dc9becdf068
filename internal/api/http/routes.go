package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/render"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// ClientIDHeader carries the preferences record a request belongs to.
const ClientIDHeader = "X-Client-ID"

var validate = validator.New()

type handler struct {
	opts    Options
	tracker *lookupTracker
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, opts Options) {
	h := &handler{
		opts:    opts.withDefaults(),
		tracker: newLookupTracker(),
	}

	v1 := app.Group("/api/v1")

	v1.Get("/weather/search", h.search)
	v1.Get("/weather/coordinates", h.coordinates)
	v1.Get("/weather/chart.png", h.chart)

	v1.Get("/messages", h.messages)

	v1.Post("/preferences", h.createPreferences)
	v1.Get("/preferences/:id", h.getPreferences)
	v1.Put("/preferences/:id", h.updatePreferences)
}

// lookupResponse is the report plus its localized display rendition.
type lookupResponse struct {
	weather.Report
	View render.SummaryView `json:"view"`
}

// searchQuery holds query parameters for a free-text lookup.
type searchQuery struct {
	Query string `validate:"required,max=256"`
}

// coordinatesQuery holds query parameters for a device-coordinates lookup.
// Range checks are left to the resolver.
type coordinatesQuery struct {
	Lat   string `validate:"required,numeric"`
	Lon   string `validate:"required,numeric"`
	Label string `validate:"max=256"`
}

func (q coordinatesQuery) parse() (lat, lon float64, err error) {
	if lat, err = strconv.ParseFloat(q.Lat, 64); err != nil {
		return 0, 0, err
	}
	if lon, err = strconv.ParseFloat(q.Lon, 64); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func parseCoordinatesQuery(c *fiber.Ctx) (coordinatesQuery, error) {
	q := coordinatesQuery{
		Lat:   c.Query("lat"),
		Lon:   c.Query("lon"),
		Label: c.Query("label"),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (h *handler) search(c *fiber.Ctx) error {
	q := searchQuery{Query: c.Query("q")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, lang, err := h.lookup(c, func(ctx context.Context, _ string) (weather.Report, error) {
		return h.opts.Service.LookupByText(ctx, q.Query)
	})
	if err != nil {
		return err
	}
	return c.JSON(lookupResponse{Report: report, View: render.Summary(lang, report)})
}

func (h *handler) coordinates(c *fiber.Ctx) error {
	q, err := parseCoordinatesQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	lat, lon, err := q.parse()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, lang, err := h.lookup(c, func(ctx context.Context, lang string) (weather.Report, error) {
		label := q.Label
		if label == "" {
			label = render.Message(lang, render.KeyCurrentLocation)
		}
		return h.opts.Service.LookupByCoordinates(ctx, lat, lon, label)
	})
	if err != nil {
		return err
	}
	return c.JSON(lookupResponse{Report: report, View: render.Summary(lang, report)})
}

func (h *handler) chart(c *fiber.Ctx) error {
	q, err := parseCoordinatesQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	lat, lon, err := q.parse()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	width := c.QueryInt("width", render.DefaultChartWidth)
	height := c.QueryInt("height", render.DefaultChartHeight)
	if width > 2000 || height > 2000 {
		return fiber.NewError(fiber.StatusBadRequest, "width and height must not exceed 2000")
	}

	report, _, err := h.lookup(c, func(ctx context.Context, _ string) (weather.Report, error) {
		return h.opts.Service.LookupByCoordinates(ctx, lat, lon, q.Label)
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.WriteChartPNG(&buf, report.Forecast, width, height); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}

// messages serves the display strings for a client UI.
func (h *handler) messages(c *fiber.Ctx) error {
	lang := h.requestLanguage(c, nil)
	return c.JSON(fiber.Map{
		"language":  lang,
		"languages": render.Languages(),
		"messages":  render.Messages(lang),
	})
}

// lookup runs fn under the lookup timeout, superseding any lookup the same
// client still has in flight, and remembers the resolved location for the
// client on success.
func (h *handler) lookup(c *fiber.Ctx, fn func(ctx context.Context, lang string) (weather.Report, error)) (weather.Report, string, error) {
	clientID := c.Get(ClientIDHeader)
	if clientID != "" {
		if err := validate.Var(clientID, "uuid"); err != nil {
			return weather.Report{}, "", fiber.NewError(fiber.StatusBadRequest, "invalid "+ClientIDHeader+" header")
		}
	}

	prefs := h.loadPreferences(c.UserContext(), clientID)
	lang := h.requestLanguage(c, prefs)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.opts.LookupTimeout)
	defer cancel()
	ctx, done := h.tracker.begin(ctx, clientID)
	defer done()

	report, err := fn(ctx, lang)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return weather.Report{}, lang, fiber.NewError(fiber.StatusConflict, "lookup superseded by a newer request")
		}
		return weather.Report{}, lang, fiber.NewError(statusFor(err), render.ErrorMessage(lang, err))
	}

	if clientID != "" && h.opts.Preferences != nil {
		if err := store.RememberLocation(c.UserContext(), h.opts.Preferences, clientID, report.Location); err != nil {
			h.opts.Logger.Warn("remember location failed", "client", clientID, "error", err)
		}
	}
	return report, lang, nil
}

func (h *handler) loadPreferences(ctx context.Context, clientID string) *store.Preferences {
	if clientID == "" || h.opts.Preferences == nil {
		return nil
	}
	prefs, err := h.opts.Preferences.Get(ctx, clientID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.opts.Logger.Warn("load preferences failed", "client", clientID, "error", err)
		}
		return nil
	}
	return &prefs
}

// requestLanguage picks the lang query parameter, then the client's saved
// language, then the configured default.
func (h *handler) requestLanguage(c *fiber.Ctx, prefs *store.Preferences) string {
	if lang := c.Query("lang"); lang != "" {
		return render.NormalizeLanguage(lang)
	}
	if prefs != nil && prefs.Language != "" {
		return render.NormalizeLanguage(prefs.Language)
	}
	return h.opts.DefaultLanguage
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrInvalidCoordinate):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrTransport), errors.Is(err, weather.ErrMalformedPayload):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
