package types

import "github.com/m-mizutani/goerr/v2"

// Error tags. An error may carry more than one tag, e.g. a non-2xx response
// is tagged with both ErrTagNetwork and ErrTagHTTPStatus.
var (
	ErrTagNetwork        = goerr.NewTag("network")
	ErrTagHTTPStatus     = goerr.NewTag("http_status")
	ErrTagArchiveOpen    = goerr.NewTag("archive_open")
	ErrTagExtract        = goerr.NewTag("extract")
	ErrTagIO             = goerr.NewTag("io")
	ErrTagInvalidConfig  = goerr.NewTag("invalid_config")
	ErrTagInvalidRequest = goerr.NewTag("invalid_request")
	ErrTagForbidden      = goerr.NewTag("forbidden")
)
