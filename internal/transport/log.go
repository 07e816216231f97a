package transport

import "go.uber.org/zap"

func logger() *zap.SugaredLogger {
	return zap.S().Named("transport")
}

// restyLogger resolves the global logger on every call so clients built
// before zap.ReplaceGlobals still log through the installed logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) { logger().Errorf(format, v...) }
func (restyLogger) Warnf(format string, v ...any) { logger().Warnf(format, v...) }
func (restyLogger) Debugf(format string, v ...any) { logger().Debugf(format, v...) }
