package middlewares

import (
	"unicode/utf8"

	"github.com/origami-service/origami/internal"
)

// MaxSourceLength is the longest accepted source parameter, in characters.
const MaxSourceLength = 255

// SourceParamMessage is returned when the source parameter is missing or invalid.
const SourceParamMessage = "The source parameter is required and should be a valid system code"

// RequireSourceParam returns middleware that rejects requests whose
// "source" query parameter is missing, empty or longer than MaxSourceLength.
func RequireSourceParam() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			source := c.Query("source")
			if source == "" || utf8.RuneCountInString(source) > MaxSourceLength {
				return internal.ErrBadRequest(SourceParamMessage)
			}
			return next(c)
		}
	}
}
