// Package config assembles the application configuration from environment
// variables and an optional .env file.
//
// Defaults are declared as struct tags on the partial config structs owned
// by each package (server, database, logger, archive); a reflection pass
// registers them with Viper so AutomaticEnv picks up overrides like
// SERVER_PORT or DATABASE_HOST.
package config
