package api

import (
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		calls := api.Group("/calls").Name("Calls API")
		{
			calls.Post("/", startCall)
			calls.Get("/:sessionId", getSession)
			calls.Post("/:sessionId/token", joinSession)
		}
	}
}
