package publishers

import "github.com/Adda-Baaj/boticord-go/pkg/boticord"

// Logger receives delivery results. It is the interface the API client
// accepts, so one logger value serves both packages.
type Logger = boticord.Logger

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
