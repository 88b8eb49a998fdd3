package errors

import (
	"net/http"
)

var (
	ErrChatRoomNotFound  = New(nil, http.StatusNotFound, "chatroom not found")
	ErrResolveInProgress = New(nil, http.StatusConflict, "member resolution already in progress")
	ErrNotLoggedIn       = New(nil, http.StatusUnauthorized, "not logged in")
	ErrSourceUnsupported = New(nil, http.StatusBadRequest, "unsupported source type")
)

func InvalidArg(arg string) *Error {
	return Newf(nil, http.StatusBadRequest, "invalid argument: %s", arg)
}

func SourceFailed(err error) *Error {
	return New(err, http.StatusBadGateway, "fetch contacts failed")
}

func LookupFailed(start, end int, err error) *Error {
	return Newf(err, http.StatusBadGateway, "resolve members [%d, %d) failed", start, end)
}

func LookupMismatch(want, got int) *Error {
	return Newf(nil, http.StatusBadGateway, "member lookup returned %d records for %d ids", got, want)
}

func RequestFailed(method, url string, status int) *Error {
	return Newf(nil, http.StatusBadGateway, "%s %s: unexpected status %d", method, url, status)
}

func DBConnectFailed(path string, err error) *Error {
	return Newf(err, http.StatusInternalServerError, "connect to database %s failed", path)
}

func QueryFailed(query string, err error) *Error {
	return Newf(err, http.StatusInternalServerError, "query failed: %s", query)
}

func ScanRowFailed(err error) *Error {
	return New(err, http.StatusInternalServerError, "scan row failed")
}

func ConfigInvalid(field string, err error) *Error {
	return Newf(err, http.StatusBadRequest, "invalid config: %s", field)
}
