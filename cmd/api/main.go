package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"weddinghub/internal/database"
	"weddinghub/internal/domain"
	"weddinghub/internal/gateway"
	"weddinghub/internal/middleware"
	"weddinghub/internal/modules/acknowledgment"
	"weddinghub/internal/modules/audit"
	"weddinghub/internal/modules/booking"
	"weddinghub/internal/modules/commission"
	"weddinghub/internal/modules/escrow"
	"weddinghub/internal/notification"
	jwtsvc "weddinghub/internal/pkg/jwt"
	"weddinghub/internal/repository"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&domain.Vendor{},
		&domain.Booking{},
		&domain.EscrowRelease{},
		&domain.AuditEntry{},
		&domain.Acknowledgment{},
	); err != nil {
		log.Fatal(err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	releaseRepo := repository.NewEscrowReleaseRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	ackRepo := repository.NewAcknowledgmentRepository(db)
	vendorRepo := repository.NewVendorRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)
	hub := notification.NewHub()
	defer hub.Close()

	gw := gateway.NewHTTPGateway(log)
	table := commission.DefaultTable()

	bookingService := booking.NewService(db, bookingRepo, table, gw, vendorRepo, hub, log)
	bookingHandler := booking.NewHandler(bookingService)

	escrowService := escrow.NewService(db, releaseRepo, auditRepo, gw, hub, log)
	escrowHandler := escrow.NewHandler(escrowService)

	auditRecorder := audit.NewRecorder(auditRepo)
	auditHandler := audit.NewHandler(auditRecorder)

	ackService := acknowledgment.NewService(ackRepo, auditRecorder, hub, log)
	ackHandler := acknowledgment.NewHandler(ackService)

	wsHandler := notification.NewWSHandler(hub, j)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/events", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			auditHandler.RegisterRoutes(protected)
			ackHandler.RegisterRoutes(protected)

			escrowOps := protected.Group("/")
			escrowOps.Use(middleware.RequireRole("vendor", "admin"))
			{
				escrowHandler.RegisterRoutes(escrowOps)
			}

			adminOps := protected.Group("/")
			adminOps.Use(middleware.AdminOnly())
			{
				escrowHandler.RegisterAdminRoutes(adminOps)
			}
		}
	}

	addr := ":" + envOrDefault("PORT", "8080")
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
