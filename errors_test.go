package gridreduce

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Invalid Arg Error",
			err:      NewInvalidArgError("Realloc", "group count must be at least 1, got 0"),
			wantType: ErrTypeInvalidArg,
			wantOp:   "Realloc",
			wantMsg:  "group count must be at least 1, got 0",
			checkFn:  IsInvalidArgError,
		},
		{
			name:     "Invalid Device Error",
			err:      ErrInvalidDevice,
			wantType: ErrTypeDevice,
			wantOp:   "SetDevice",
			wantMsg:  "invalid device ID",
			checkFn:  IsDeviceError,
		},
		{
			name:     "Execution Error",
			err:      ErrQueueClosed,
			wantType: ErrTypeExecution,
			wantOp:   "Submit",
			wantMsg:  "queue is closed",
			checkFn:  IsExecutionError,
		},
		{
			name:     "Memory Error",
			err:      NewMemoryError("NewBuffer", "out of memory", nil),
			wantType: ErrTypeMemory,
			wantOp:   "NewBuffer",
			wantMsg:  "out of memory",
			checkFn:  IsMemoryError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e *Error
			if !errors.As(tt.err, &e) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}
			if e.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", e.Type, tt.wantType)
			}
			if e.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", e.Op, tt.wantOp)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("check function returned false for %v", tt.err)
			}
			if !strings.Contains(tt.err.Error(), tt.wantType.String()) {
				t.Errorf("Error() = %q does not name the type %q", tt.err.Error(), tt.wantType)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewExecutionError("ParallelReduce", "kernel panicked", cause)

	if errors.Cause(errors.Unwrap(err)) != cause {
		t.Errorf("Unwrap did not return the cause")
	}
	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Errorf("Error() = %q does not mention the cause", err.Error())
	}

	wrapped := errors.Wrap(err, "launch")
	if !IsExecutionError(wrapped) {
		t.Errorf("IsExecutionError does not see through wrapping")
	}
	if IsInvalidArgError(wrapped) {
		t.Errorf("execution error reported as invalid argument")
	}
	if IsInvalidArgError(nil) || IsInvalidArgError(cause) {
		t.Errorf("plain errors reported as invalid argument")
	}
}
