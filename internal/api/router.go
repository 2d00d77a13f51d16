package api

import (
	"campus-companion/docs"
	"campus-companion/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	qaHandler *handlers.QAHandler,
	feedbackHandler *handlers.FeedbackHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger - importing the docs package registers the documentation via init()
	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", qaHandler.Home)
	app.Get("/ask", qaHandler.Ask)
	app.Get("/reload", qaHandler.Reload)
	app.Get("/topics", qaHandler.Topics)
	app.Get("/questions/:topic", qaHandler.QuestionsByTopic)

	app.Post("/rate", feedbackHandler.Rate)
	app.Get("/history", feedbackHandler.History)
	app.Get("/popular", feedbackHandler.Popular)
	app.Get("/needs-improvement", feedbackHandler.NeedsImprovement)

	return app
}
