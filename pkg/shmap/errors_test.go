package shmap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/yndnr/shmap-go/internal/namelock"
	"github.com/yndnr/shmap-go/internal/shm"
)

func TestError_Is(t *testing.T) {
	err := ErrCrypto.WithDetails("bad tag").WithCause(errors.New("boom"))

	if !errors.Is(err, ErrCrypto) {
		t.Error("errors.Is(err, ErrCrypto) = false")
	}
	if errors.Is(err, ErrIO) {
		t.Error("errors.Is(err, ErrIO) = true")
	}
	if GetErrorCode(err) != "SM-CRYP-4010" {
		t.Errorf("GetErrorCode() = %q", GetErrorCode(err))
	}
	if !IsShmapError(err, "") || !IsShmapError(fmt.Errorf("wrapped: %w", err), "SM-CRYP-4010") {
		t.Error("IsShmapError() = false")
	}
	if IsShmapError(errors.New("plain"), "") {
		t.Error("IsShmapError(plain) = true")
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{ErrIO, "[SM-SYS-5000] i/o error"},
		{ErrIO.WithDetails("list"), "[SM-SYS-5000] i/o error: list"},
		{ErrIO.WithCause(errors.New("disk gone")), "[SM-SYS-5000] i/o error: disk gone"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_SentinelsUnchanged(t *testing.T) {
	_ = ErrLock.WithDetails("x").WithCause(errors.New("y"))
	if ErrLock.Details != "" || ErrLock.Cause != nil {
		t.Error("WithDetails/WithCause mutated the sentinel")
	}
}

func TestTranslateErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want *Error
	}{
		{"invalid name", fmt.Errorf("x: %w", shm.ErrNameInvalid), ErrNameInvalid},
		{"not found", shm.ErrNotFound, ErrSegmentNotFound},
		{"lock", fmt.Errorf("%w: timeout", namelock.ErrLock), ErrLock},
		{"open", &shm.OpError{Op: "open", Name: "/a", Err: syscall.EACCES}, ErrSegmentOpen},
		{"truncate", &shm.OpError{Op: "truncate", Name: "/a", Err: syscall.ENOSPC}, ErrSegmentTruncate},
		{"unlink", &shm.OpError{Op: "unlink", Name: "/a", Err: syscall.EPERM}, ErrSegmentUnlink},
		{"map", &shm.OpError{Op: "map", Name: "/a", Err: syscall.ENOMEM}, ErrSegmentMap},
		{"fault", &shm.OpError{Op: "read", Name: "/a", Err: shm.ErrFault}, ErrSegmentOpen},
		{"list", &shm.OpError{Op: "list", Err: os.ErrPermission}, ErrIO},
		{"other", errors.New("weird"), ErrIO},
		{"passthrough", ErrCrypto.WithDetails("kept"), ErrCrypto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateErr(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("translateErr() = %v, want code %s", got, tt.want.Code)
			}
		})
	}

	if translateErr(nil) != nil {
		t.Error("translateErr(nil) != nil")
	}
}

func TestTranslateErr_KeepsCause(t *testing.T) {
	got := translateErr(&shm.OpError{Op: "truncate", Name: "/a", Err: syscall.ENOSPC})
	if !errors.Is(got, syscall.ENOSPC) {
		t.Errorf("cause lost: %v", got)
	}
}

func TestOperations_CancelledContext(t *testing.T) {
	s := newTestStore(t)

	cctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Insert(cctx, "k", "v")
	if !errors.Is(err, ErrLock) {
		t.Fatalf("Insert(cancelled) error = %v, want ErrLock", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Insert(cancelled) error = %v, want context.Canceled in chain", err)
	}
	if !strings.Contains(err.Error(), "SM-LOCK-5000") {
		t.Errorf("Error() = %q, want lock code", err.Error())
	}
}
