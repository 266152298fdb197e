package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "civex/controllers"
	"civex/middleware"
)

func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public endpoints
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected endpoints
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team-based competitions share one workflow, parameterized per track
	trackControllers := []*controller.TrackController{
		controller.NewTrackController(db, controller.CICSpec{}, log.New(os.Stdout, "CIC: ", log.LstdFlags)),
		controller.NewTrackController(db, controller.SBCSpec{}, log.New(os.Stdout, "SBC: ", log.LstdFlags)),
		controller.NewTrackController(db, controller.FCECSpec{}, log.New(os.Stdout, "FCEC: ", log.LstdFlags)),
	}
	for _, tc := range trackControllers {
		group := api.Group("/" + tc.Spec.Slug())
		group.Get("/", tc.ListTeams)
		group.Get("/:id", tc.GetTeam)
		group.Post("/", tc.CreateTeam)
		group.Put("/:id", tc.UpdateTeam)
		group.Patch("/:id/verify", middleware.AdminOnly(), tc.VerifyTeam)
		group.Patch("/:id/reject", middleware.AdminOnly(), tc.RejectTeam)
		group.Delete("/:id", middleware.AdminOnly(), tc.DeleteTeam)
	}

	// CRAFT registers standalone participants
	craftController := controller.NewCraftController(db, log.New(os.Stdout, "CRAFT: ", log.LstdFlags))
	craft := api.Group("/craft")
	craft.Get("/", craftController.List)
	craft.Get("/:id", craftController.Get)
	craft.Post("/", craftController.Create)
	craft.Put("/:id", craftController.Update)
	craft.Patch("/:id/verify", middleware.AdminOnly(), craftController.Verify)
	craft.Patch("/:id/reject", middleware.AdminOnly(), craftController.Reject)
	craft.Delete("/:id", middleware.AdminOnly(), craftController.Delete)

	// Export view for the committee
	participantController := controller.NewParticipantController(db, log.New(os.Stdout, "PARTICIPANT: ", log.LstdFlags))
	api.Get("/participants/:event", middleware.AdminOnly(), participantController.GetParticipants)
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app)
	SetupAPIRoutes(app, db)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "The requested resource was not found",
		})
	})
}
