// Package logger provee un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// En controllers/services (con contexto):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("consent.info"))
//	log.Info("consent payload built", logger.UserID(userID))
//
// El middleware de logging inyecta un logger scoped por request (request_id,
// method, path) vía ToContext; From(ctx) cae al singleton si no hay ninguno.
package logger
