// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package logging

import (
	"os"

	"go.uber.org/zap"
)

var Logger *zap.SugaredLogger

func init() {
	cfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(os.Getenv("LOG_LEVEL"))
	if err == nil {
		cfg.Level = level
	}
	if os.Getenv("LOG_FORMAT") == "console" {
		cfg.Encoding = "console"
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	Logger = logger.Sugar()
}
