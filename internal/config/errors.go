package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrMailFromEmpty error if mail is enabled without a sender address.
	ErrMailFromEmpty = errors.New("toml config mail.from can not be empty when mail is enabled")

	// ErrMailSmarthostEmpty error if mail is enabled without a smarthost.
	ErrMailSmarthostEmpty = errors.New("toml config mail.smarthost can not be empty when mail is enabled")
)
