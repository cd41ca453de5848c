package core

import (
	"net/http"
	"strconv"
)

// CodeUnknown is used when upstream reports an error without a code.
const CodeUnknown = "UNKNOWN_ERROR"

// Upstream error codes with a known meaning.
const (
	codeTooManyRequests   = -1003
	codeUnauthorized      = -1002
	codeTimestampOutside  = -1021
	codeInvalidSignature  = -1022
	codeTooManyOrders     = -1015
	codeRejectedNewOrder  = -2010
	codeRejectedCancel    = -2011
	codeNoSuchOrder       = -2013
	codeInvalidAPIKey     = -2014
	codeKeyRejected       = -2015
	codeBadParamRangeLow  = -1100
	codeBadParamRangeHigh = -1199
)

// Categorize maps an HTTP status and upstream code to a Category.
// A recognised upstream code wins over the status class.
func Categorize(statusCode int, code string) Category {
	if n, err := strconv.Atoi(code); err == nil {
		switch n {
		case codeTooManyRequests, codeTooManyOrders:
			return CategoryRateLimit
		case codeUnauthorized, codeTimestampOutside, codeInvalidSignature, codeInvalidAPIKey, codeKeyRejected:
			return CategoryAuthentication
		case codeNoSuchOrder:
			return CategoryNotFound
		case codeRejectedNewOrder, codeRejectedCancel:
			return CategoryRejected
		}
		if n <= codeBadParamRangeLow && n >= codeBadParamRangeHigh {
			return CategoryBadRequest
		}
	}

	switch {
	case statusCode == http.StatusTooManyRequests || statusCode == http.StatusTeapot:
		return CategoryRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return CategoryAuthentication
	case statusCode == http.StatusNotFound:
		return CategoryNotFound
	case statusCode >= 500:
		return CategoryServerError
	case statusCode >= 400:
		return CategoryBadRequest
	default:
		return CategoryUnknown
	}
}
