package speech

import "go.uber.org/zap"

func logger() *zap.SugaredLogger {
	return zap.S().Named("speech.handler")
}
