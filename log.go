// Logging for rxcore
// 包级别日志，基于zerolog
package rxcore

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var pkgLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).With().Timestamp().Str("component", "rxcore").Logger()
	pkgLogger.Store(&l)
}

// SetLogger 替换包级别日志记录器
func SetLogger(logger zerolog.Logger) {
	pkgLogger.Store(&logger)
}

// Logger 返回当前包级别日志记录器
func Logger() zerolog.Logger {
	return *pkgLogger.Load()
}

func currentLogger() *zerolog.Logger {
	return pkgLogger.Load()
}

// parseLevel 解析日志级别，无法识别时回退到info
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
