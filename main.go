// @title Saxon Scouting API
// @version 1.0
// @description Backend API for FRC scouting data collection and sync
package main

import (
	"github.com/spf13/viper"

	"github.com/ssnnd0/Saxon-Scout/api"
	"github.com/ssnnd0/Saxon-Scout/logging"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service
	service := api.NewServer(config)
	service.Start()
}
