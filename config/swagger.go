package config

import (
	"github.com/biosecret/todo-list/docs"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// AddSwaggerRoutes mount Swagger UI tại /swagger và ghi host thực tế vào swagger doc
func AddSwaggerRoutes(app *fiber.App, env *Env) {
	docs.SwaggerInfo.Host = "localhost:" + env.Port

	app.Get("/swagger", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html", fiber.StatusMovedPermanently)
	})
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:        docs.SwaggerInfo.Title,
		DeepLinking:  true,
		DocExpansion: "list",
	}))
}
