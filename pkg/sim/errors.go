package sim

import "errors"

var (
	// ErrUnknownCommand is returned for a command the machine does not know
	ErrUnknownCommand = errors.New("unknown command")
	// ErrArity is returned when a command gets the wrong number of arguments
	ErrArity = errors.New("wrong number of arguments")
	// ErrSyntax is returned for forms that are not (command symbol...)
	ErrSyntax = errors.New("malformed command")
	// ErrUnbound is returned for a name with no handle, weak or object
	ErrUnbound = errors.New("unbound name")
	// ErrBound is returned when a name is already in use
	ErrBound = errors.New("name already bound")
	// ErrDead is returned when a command needs a live object
	ErrDead = errors.New("object destroyed")
	// ErrExpectation is returned when expect-alive or expect-dead fails
	ErrExpectation = errors.New("expectation failed")
)
