// Package vfs resolves guest paths to file capabilities.
//
// A Resolver either has an opinion about a path (a Result, which may be a
// failure) or has none. Callers treat no opinion as ENOENT; Outcome does that
// conversion so every caller agrees on it.
package vfs

import (
	"io"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// FileIO is the capability a successful resolution hands out. Read returns
// io.EOF at end of file.
type FileIO interface {
	io.ReadWriteCloser
	Path() string
	// Listxattr writes NUL-separated attribute names into buf and returns
	// the byte count. A nil buf returns the size needed.
	Listxattr(buf []byte, options int) (int, error)
	Chmod(mode uint32) error
}

type Result struct {
	File  FileIO
	Flags enum.OpenFlag
	Errno enum.Errno
	// Created is set when O_CREAT made a new file. Its permission bits are
	// the resolver's default until the caller applies the requested mode.
	Created bool
}

func Success(f FileIO, flags enum.OpenFlag) Result {
	return Result{File: f, Flags: flags}
}

func Failure(e enum.Errno) Result {
	return Result{Errno: e}
}

func (r Result) OK() bool {
	return r.Errno == 0 && r.File != nil
}

// Err is the failure as an error, nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return r.Errno
}

type Resolver interface {
	// Resolve returns ok=false when it has no opinion about path.
	Resolve(path string, flags enum.OpenFlag) (res Result, ok bool)
}

type ResolverFunc func(path string, flags enum.OpenFlag) (Result, bool)

func (f ResolverFunc) Resolve(path string, flags enum.OpenFlag) (Result, bool) {
	return f(path, flags)
}

// Outcome turns a possibly absent result into a definite one. No opinion, or
// a failure without an errno, is ENOENT.
func Outcome(res Result, ok bool) Result {
	if !ok || (res.File == nil && res.Errno == 0) {
		return Failure(enum.ENOENT)
	}
	return res
}

// Resolve is Outcome(r.Resolve(path, flags)).
func Resolve(r Resolver, path string, flags enum.OpenFlag) Result {
	return Outcome(r.Resolve(path, flags))
}
