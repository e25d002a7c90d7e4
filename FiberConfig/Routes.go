package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"Motorhouse/Controllers"
	"Motorhouse/Sync"
	"Motorhouse/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func SetupRoutes(app *fiber.App, coordinator *Sync.Coordinator) {
	// Initialize handlers
	invoiceController := Controllers.NewInvoiceController(coordinator)
	fleetController := Controllers.NewFleetController(coordinator)
	bookingController := Controllers.NewBookingController(coordinator)
	customerController := Controllers.NewCustomerController(coordinator)
	vhcController := Controllers.NewVHCController(coordinator)
	backupController := Controllers.NewBackupController(coordinator)
	statusController := Controllers.NewStatusController(coordinator)
	reportController := Controllers.NewReportController(coordinator)

	// API group
	api := app.Group("/api", middleware.Verify(1))

	// Invoice routes
	invoices := api.Group("/invoices")
	invoices.Get("/", invoiceController.GetInvoices)
	invoices.Post("/", invoiceController.SaveInvoice)
	invoices.Get("/:id", invoiceController.GetInvoice)
	invoices.Get("/:id/document", invoiceController.GetInvoiceDocument)
	invoices.Patch("/:id/payment", invoiceController.UpdatePaymentStatus)
	invoices.Post("/:id/email", invoiceController.EmailInvoice)
	invoices.Delete("/:id", middleware.Verify(3), invoiceController.DeleteInvoice)

	// Fleet routes
	fleet := api.Group("/fleet")
	fleet.Get("/", fleetController.GetFleet)
	fleet.Post("/", fleetController.SaveVehicle)
	fleet.Post("/:id/loan", fleetController.LoanVehicle)
	fleet.Post("/:id/return", fleetController.ReturnVehicle)
	fleet.Get("/:id/invoice-draft", fleetController.SellVehicle)
	fleet.Delete("/:id", middleware.Verify(3), fleetController.DeleteVehicle)

	// Booking routes
	bookings := api.Group("/bookings")
	bookings.Get("/", bookingController.GetBookings)
	bookings.Post("/", bookingController.SaveBooking)
	bookings.Patch("/:id/status", bookingController.UpdateBookingStatus)
	bookings.Get("/:id/invoice-draft", bookingController.InvoiceFromBooking)
	bookings.Get("/:id/vhc-draft", bookingController.VHCFromBooking)
	bookings.Delete("/:id", middleware.Verify(3), bookingController.DeleteBooking)

	// Customer routes
	customers := api.Group("/customers")
	customers.Get("/", customerController.GetCustomers)
	customers.Post("/", customerController.SaveCustomer)
	customers.Delete("/:id", middleware.Verify(3), customerController.DeleteCustomer)

	// Vehicle health check routes
	vhc := api.Group("/vhc")
	vhc.Get("/", vhcController.GetReports)
	vhc.Get("/new", vhcController.NewReport)
	vhc.Post("/", vhcController.SaveReport)
	vhc.Get("/:id", vhcController.GetReport)
	vhc.Delete("/:id", middleware.Verify(3), vhcController.DeleteReport)

	// Backup and reset routes
	api.Get("/backup", middleware.Verify(3), backupController.Export)
	api.Post("/backup/restore", middleware.Verify(3), backupController.Restore)
	api.Post("/backup/reset", middleware.Verify(3), backupController.HardReset)

	// Connectivity and dashboard routes
	api.Get("/status", statusController.GetStatus)
	api.Post("/status/toggle", statusController.ToggleOffline)
	api.Get("/stats/dashboard", statusController.GetDashboard)

	// Reports
	api.Get("/reports/invoices", reportController.ExportInvoiceBook)
}

func FiberConfig(coordinator *Sync.Coordinator) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*", // Allow all origins
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,  // Max age for preflight requests caching (5 minutes)
	}))

	app.Post("/api/Login", Controllers.Login)
	app.Use("/api/Logout", Controllers.Logout)
	app.Use("/api/User", middleware.Verify(1), Controllers.User)
	app.Post("/api/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)
	app.Get("/api/FetchUsers", middleware.Verify(4), Controllers.FetchUsers)

	SetupRoutes(app, coordinator)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Fatal(app.Listen(":" + port))
}
