package edfkernel

import "errors"

// ErrFail marks a precondition violation: a malformed call (such as a
// non-positive tick period or mailbox size), use of a closed mailbox, or a
// payload length mismatch. Calls made in the wrong kernel mode return
// ErrStartupOnly or ErrRunningOnly instead.
var ErrFail = errors.New("edfkernel: operation failed")

// ErrDeadlineReached is returned by a blocking call when the calling task's
// own deadline passed while it was parked.
var ErrDeadlineReached = errors.New("edfkernel: deadline reached")

// ErrNotEmpty is returned by Mailbox.NoMessages when the mailbox still holds
// queued messages.
var ErrNotEmpty = errors.New("edfkernel: mailbox not empty")

// ErrStartupOnly marks an operation that is only legal before Run/StartManual.
var ErrStartupOnly = errors.New("edfkernel: operation only legal during kernel start-up")

// ErrRunningOnly marks an operation that is only legal once the kernel is running.
var ErrRunningOnly = errors.New("edfkernel: operation only legal once the kernel is running")
