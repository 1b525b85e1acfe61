package cmd

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.GreenString("✔")
	redCross   = color.RedString("✘")
)

// BeQuietError signals that the failure was already reported to the user.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

// logError reports err with the request's correlation id and returns a BeQuietError.
func logError(err error, correlation, msg string) error {
	ev := log.Error().Err(err)
	if correlation != "" {
		ev = ev.Str("correlation_id", correlation)
	}
	ev.Msgf("%s %s", redCross, msg)
	return BeQuietError{}
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf(greenCheck+" "+format, args...)
}
