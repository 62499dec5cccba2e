package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/peerlinehq/duocall/pkg/internal/http/exts"
	"github.com/peerlinehq/duocall/pkg/internal/services"
	"github.com/spf13/viper"
)

func remapCoordinatorError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrRoomFull):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidNickname):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrProviderUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, services.ErrProvisioningFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func startCall(c *fiber.Ctx) error {
	var data struct {
		Metadata map[string]any `json:"metadata"`
	}
	// Body is optional on this endpoint.
	_ = c.BodyParser(&data)

	session, err := services.Co.StartCall(c.Context(), data.Metadata)
	if err != nil {
		return remapCoordinatorError(err)
	}

	return c.JSON(fiber.Map{
		"session_id": session.ID,
		"url":        fmt.Sprintf("%s/call/%s", viper.GetString("frontend"), session.ID),
	})
}

func getSession(c *fiber.Ctx) error {
	id := c.Params("sessionId")

	view, err := services.Co.ResolveSession(c.Context(), id)
	if err != nil {
		return remapCoordinatorError(err)
	}

	return c.JSON(view)
}

func joinSession(c *fiber.Ctx) error {
	id := c.Params("sessionId")

	var data struct {
		Nickname string `json:"nickname" validate:"max=64"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	credential, err := services.Co.JoinSession(c.Context(), id, data.Nickname)
	if err != nil {
		return remapCoordinatorError(err)
	}

	return c.JSON(fiber.Map{
		"token":    credential.Token,
		"room":     credential.Room,
		"endpoint": viper.GetString("calling.endpoint"),
	})
}
