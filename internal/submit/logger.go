package submit

import "github.com/rs/zerolog"

var submitLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	submitLogger = l
}
