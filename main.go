package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"order-management-service/handlers"
	"order-management-service/internal/consul"
	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/internal/stores/kafka"
	"order-management-service/internal/stores/postgres"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service startup failed", slog.String("Error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := postgres.OpenDB()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	customersConf, err := customers.NewConf(db)
	if err != nil {
		return err
	}
	productsConf, err := products.NewConf(db)
	if err != nil {
		return err
	}
	ordersConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}

	// Kafka is optional; without a broker the service still serves requests
	// and simply skips event publishing.
	var kafkaConf *kafka.Conf
	if host := os.Getenv("KAFKA_HOST"); host != "" {
		kafkaConf, err = kafka.NewConf(host, os.Getenv("KAFKA_PORT"))
		if err != nil {
			return fmt.Errorf("failed to connect to kafka: %w", err)
		}
		defer kafkaConf.Close()
	} else {
		slog.Warn("KAFKA_HOST not set, order events disabled")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Consul registration is optional as well.
	if os.Getenv("CONSUL_HOST") != "" {
		client, err := consul.NewClient()
		if err != nil {
			return fmt.Errorf("failed to create consul client: %w", err)
		}
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid APP_PORT: %w", err)
		}
		serviceAddress := os.Getenv("SERVICE_ADDRESS")
		if serviceAddress == "" {
			serviceAddress = "localhost"
		}
		if err := consul.RegisterService(client, "order-management", serviceAddress, portNum); err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("Service", "order-management"))
	}

	api := handlers.API(customersConf, productsConf, ordersConf, kafkaConf)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("Port", port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("Signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
