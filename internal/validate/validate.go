// Package validate holds the input rules shared by the registration and
// creation endpoints.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmailFormat    = errors.New("please enter a valid email address")
	ErrMobileFormat   = errors.New("mobile number must include a country code, e.g. +919876543210")
	ErrPasswordLength = errors.New("password must be at least 6 characters")
	ErrPasswordSymbol = errors.New("password must contain at least one special character")
	ErrNameRequired   = errors.New("name is required")
)

const MinPasswordLength = 6

var (
	emailPattern  = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	mobilePattern = regexp.MustCompile(`^\+\d{1,4}\d{7,15}$`)
	symbolPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// NormalizeEmail lowercases and trims an address before it is checked or stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Email(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}

func Mobile(mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return ErrMobileFormat
	}
	return nil
}

func Password(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordLength
	}
	if !symbolPattern.MatchString(password) {
		return ErrPasswordSymbol
	}
	return nil
}

func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}
