package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"paddock/config"
	"paddock/database"
	"paddock/logger"
	"paddock/routers"
	"paddock/utils"
)

func main() {
	config.LoadConfig()
	logger.Log = logger.New(config.AppConfig.ServiceName, config.AppConfig.LogLevel)
	defer logger.Log.Sync()

	database.ConnectDb()
	utils.InitMailer()
	utils.InitIntegrations()

	scheduler := utils.InitializeSchedulers()

	app := routers.NewApp()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logger.Log.Info("shutting down")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			logger.Log.Error("error during shutdown", logger.Error(err))
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}
