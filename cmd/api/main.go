package main

import (
	"context"
	"os"

	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/server"
)

// @title Schooldesk API
// @version 1.0
// @description Admission intake API: enquiries, admission forms, printable documents and staff review.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// setup functions already logged the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
