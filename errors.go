package sockpool

import (
	"errors"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidArgument is wrapped by every error reporting a value that
	// breaks a configuration invariant (negative duration, min > max).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNullArgument is wrapped when a required capability is nil.
	ErrNullArgument = errors.New("null argument")

	// ErrConfigFrozen is wrapped when a frozen configuration is mutated.
	ErrConfigFrozen = errors.New("configuration is frozen")
)

// invalidArgument builds the error returned by a rejected setter and logs the rejection.
func invalidArgument(field string, value any, msg string) error {
	log.WithFields(logrus.Fields{
		"field": field,
		"value": value,
	}).Debug("rejected socket pool configuration value")

	return oops.
		Code("INVALID_ARGUMENT").
		In("sockpool").
		With("field", field).
		With("value", value).
		Wrapf(ErrInvalidArgument, "%s", msg)
}

func nullArgument(field string) error {
	log.WithField("field", field).Debug("rejected nil socket pool configuration value")

	return oops.
		Code("NULL_ARGUMENT").
		In("sockpool").
		With("field", field).
		Wrapf(ErrNullArgument, "%s must not be nil", field)
}

func configFrozen(field string) error {
	return oops.
		Code("CONFIG_FROZEN").
		In("sockpool").
		With("field", field).
		Wrapf(ErrConfigFrozen, "cannot change %s after the configuration was frozen", field)
}
