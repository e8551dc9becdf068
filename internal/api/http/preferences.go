package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/store"
)

// preferencesBody is the writable part of a preferences record.
type preferencesBody struct {
	Language string `json:"language" validate:"omitempty,oneof=en no"`
	Theme    string `json:"theme" validate:"omitempty,oneof=light dark system"`
}

func parsePreferencesBody(c *fiber.Ctx) (preferencesBody, error) {
	var body preferencesBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return body, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validate.Struct(body); err != nil {
		return body, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return body, nil
}

func (h *handler) preferencesStore() (store.Store, error) {
	if h.opts.Preferences == nil {
		return nil, fiber.NewError(fiber.StatusNotImplemented, "preferences are disabled")
	}
	return h.opts.Preferences, nil
}

func (h *handler) createPreferences(c *fiber.Ctx) error {
	st, err := h.preferencesStore()
	if err != nil {
		return err
	}
	body, err := parsePreferencesBody(c)
	if err != nil {
		return err
	}

	prefs, err := st.Save(c.UserContext(), store.Preferences{
		ClientID: uuid.NewString(),
		Language: body.Language,
		Theme:    body.Theme,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(prefs)
}

func (h *handler) getPreferences(c *fiber.Ctx) error {
	st, err := h.preferencesStore()
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := validate.Var(id, "uuid"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	prefs, err := st.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(prefs)
}

// updatePreferences replaces language and theme, keeping the last location.
// Unknown IDs are created.
func (h *handler) updatePreferences(c *fiber.Ctx) error {
	st, err := h.preferencesStore()
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := validate.Var(id, "uuid"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}
	body, err := parsePreferencesBody(c)
	if err != nil {
		return err
	}

	saved, err := st.SetDisplay(c.UserContext(), id, body.Language, body.Theme)
	if err != nil {
		return err
	}
	return c.JSON(saved)
}
