// Package config loads environment driven configuration structs.
//
// Every package that needs settings declares a plain struct tagged for
// github.com/caarlos0/env, for example pg.Config or redis.Config, and the
// binary loads each one with Load:
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
// A .env file in the working directory is read once, before the first parse.
// Values already present in the process environment are not overridden.
// Parsed structs are cached per type, so repeated loads are cheap and always
// agree with each other.
package config
