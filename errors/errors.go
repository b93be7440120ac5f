// Package errors is a thin layer over the standard library errors package.
// Every package in cachestore wraps backend and codec failures through Wrap
// so callers can still match the original cause with Is.
package errors

import (
	stdErr "errors"
	"fmt"
	"runtime"
)

// RuntimeFileInfo makes Wrap append the calling function, file and line to the message.
var RuntimeFileInfo = false

func Is(err, target error) bool {
	return stdErr.Is(err, target)
}

// Join returns nil when every given error is nil.
func Join(errs ...error) error {
	return stdErr.Join(errs...)
}

func New(text string) error {
	return stdErr.New(text)
}

func Newf(text string, args ...any) error {
	return fmt.Errorf(text, args...)
}

// Wrap annotates err with a formatted message. A nil err stays nil, so
//
//	return errors.Wrap(backend.SetItem(ctx, k, v), "cannot write %s", k)
//
// is safe on the success path.
func Wrap(err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	if RuntimeFileInfo {
		pc, file, line, ok := runtime.Caller(1)
		if ok {
			msg += " function=%s file=%s line=%d"
			rf := runtime.FuncForPC(pc)
			args = append(args, rf.Name(), file, line)
		}
	}

	msg += ": %w"
	args = append(args, err)

	return fmt.Errorf(msg, args...)
}
