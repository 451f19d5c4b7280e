/*
 * errors.go, part of mdstats.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package stats

import (
	"errors"
	"fmt"
	"strings"
)

//Sentinel errors. Errors returned by the package wrap one of these
//when the condition applies, so they can be checked with errors.Is.
var (
	ErrUnknownCommand   = errors.New("unknown property command")
	ErrDuplicateCommand = errors.New("command already registered")
	ErrDuplicateName    = errors.New("property name already in use")
	ErrInvalidName      = errors.New("invalid property name")
	ErrHasDependents    = errors.New("property has dependents")
	ErrNotFound         = errors.New("property not found")
	ErrSelection        = errors.New("invalid structure selection")
	ErrStructureLength  = errors.New("mismatched structure count")
	ErrCycle            = errors.New("cyclic property dependency")
	ErrInvalidDep       = errors.New("dependency is invalid")
	ErrZeroDimension    = errors.New("volume has a zero dimension")
	ErrNoDynamic        = errors.New("no molecule dynamic set")
	ErrFormat           = errors.New("malformed series data")
)

//Error is the error type for the package. Besides the message, it
//keeps the trail of functions it went through (the "decoration"), whether it is
//critical, and the error that caused it, if any.
type Error struct {
	message  string
	deco     []string
	critical bool
	cause    error
}

//newError returns an Error with message msg, raised in function fn and caused by cause, which can be nil.
func newError(cause error, fn string, format string, a ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, a...), deco: []string{fn}, cause: cause}
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	if err.cause != nil && !strings.Contains(err.message, err.cause.Error()) {
		return fmt.Sprintf("%s: %s", err.message, err.cause.Error())
	}
	return err.message
}

//Decorate adds dec to the decoration slice of the error,
//and returns the resulting slice. An empty dec just returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }

func (err *Error) Unwrap() error { return err.cause }

//errDecorate decorates err with the caller's name if it is an *Error,
//and returns it.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
