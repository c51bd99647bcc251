package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/auth"
	"github.com/MohamedWael200/APi-eCommerce/internal/checkout"
	"github.com/MohamedWael200/APi-eCommerce/internal/config"
	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/delivery"
	"github.com/MohamedWael200/APi-eCommerce/internal/payment"
	"github.com/MohamedWael200/APi-eCommerce/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	var mailer auth.Mailer
	var sender report.Sender
	if cfg.SMTP.Host != "" {
		m := auth.NewSMTPMailer(cfg.SMTP)
		mailer, sender = m, m
	} else {
		log.Warn("EMAIL_HOST not set, verification codes will be logged instead of mailed")
		m := &auth.LogMailer{Log: log}
		mailer, sender = m, m
	}

	gateway := payment.NewPayPal(cfg.PayPal)
	checkoutSvc := checkout.NewService(db, gateway, log)

	scheduler, err := report.NewDaily(db, sender, log).Schedule(cfg.Server.ReportSchedule)
	if err != nil {
		log.WithError(err).Fatal("failed to schedule daily report")
	}
	defer scheduler.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestID())
	router.Use(delivery.RequestLogger(log))
	router.Use(delivery.RateLimit(cfg.Server.RateLimitWindow, cfg.Server.RateLimitMax))

	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authorized := delivery.AuthMiddleware(cfg.Auth.JWTSecret, log)

	api := router.Group("/api")
	delivery.NewAuthHandler(db, cfg.Auth, mailer, log).RegisterRoutes(api.Group("/auth"))
	delivery.NewUserHandler(db, log).RegisterRoutes(api, authorized)
	delivery.NewCategoryHandler(db, log).RegisterRoutes(api, authorized)
	delivery.NewProductHandler(db, log).RegisterRoutes(api, authorized)
	delivery.NewCartHandler(db, log).RegisterRoutes(api, authorized)
	delivery.NewCouponHandler(db, log).RegisterRoutes(api, authorized)
	delivery.NewOrderHandler(db, checkoutSvc, log).RegisterRoutes(api, authorized)
	delivery.NewReviewHandler(db, log).RegisterRoutes(api, authorized)
	delivery.NewDashboardHandler(db, log).RegisterRoutes(api, authorized)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
