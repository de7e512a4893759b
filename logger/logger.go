package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ModuleID gắn vào mọi dòng log của ứng dụng
const ModuleID = "todo-list"

// Init cấu hình zerolog toàn cục. debug bật mức debug bất kể level.
func Init(level string, debug bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Str("module", ModuleID).
		Logger()

	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, falling back to info")
	}
}
