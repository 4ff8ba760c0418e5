package market

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingDoer logs every request at debug level and transport failures at error level.
type LoggingDoer struct {
	Doer
}

// Do implements Doer.
func (ld *LoggingDoer) Do(req *http.Request) (resp *http.Response, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("api request failed", slog.Any("error", err))
		} else {
			log.Debug("api request", slog.Int("status", resp.StatusCode))
		}
	}(time.Now())

	return ld.Doer.Do(req)
}
