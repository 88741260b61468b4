package auth

import "errors"

var (
	LoginFailedErr        = errors.New("login failed")
	RegistrationFailedErr = errors.New("registration failed")
	MissingTokensErr      = errors.New("login response carried no tokens")
	SupersededErr         = errors.New("superseded by a newer session change")
)

// SessionExpiredMessage is recorded when stored tokens no longer yield a user
const SessionExpiredMessage = "Session expired. Please login again."
