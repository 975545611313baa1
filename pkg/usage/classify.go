package usage

import (
	"net/http"

	"github.com/cursorwatch/cursorwatch/pkg/transport"
)

// UserMessage maps a classified fetch error to the string shown to the user.
// Exactly one of these is emitted per failed fetch.
func UserMessage(err error) string {
	switch transport.KindOf(err) {
	case transport.KindTooManyRedirects:
		return "Cursor session token looks invalid or expired. Update the token in settings."
	case transport.KindHTTPStatus:
		switch transport.StatusOf(err) {
		case http.StatusUnauthorized:
			return "Cursor rejected the session token. Update the token in settings."
		case http.StatusForbidden:
			return "This account does not have permission to read usage data."
		case http.StatusNotFound:
			return "Usage endpoint not found. The Cursor API may have changed."
		default:
			return "Could not fetch usage data from Cursor."
		}
	case transport.KindConnection, transport.KindTimeout:
		return "Could not reach Cursor. Check your network connection and proxy settings."
	case transport.KindInvalidFormat, transport.KindInvalidStructure:
		return "Cursor returned an invalid usage response."
	default:
		return "Could not fetch usage data from Cursor."
	}
}
