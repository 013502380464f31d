package services

import (
	"regexp"

	"github.com/dmitrijs2005/authcore/internal/common"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 20
	passwordMinLength = 4
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateUsername(username string) error {
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return common.ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return common.ErrUsernameCharset
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLength {
		return common.ErrPasswordLength
	}
	return nil
}
