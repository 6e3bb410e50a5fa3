// Copyright (c) 2017 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"strings"
	"testing"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrInternal, "ErrInternal"},
		{ErrInvalidIndex, "ErrInvalidIndex"},
		{ErrNotEnoughSignatures, "ErrNotEnoughSignatures"},
		{ErrEvalFalse, "ErrEvalFalse"},
		{ErrTooManyOperations, "ErrTooManyOperations"},
		{ErrDisabledOpcode, "ErrDisabledOpcode"},
		{ErrSigHighS, "ErrSigHighS"},
		{ErrUnsatisfiedLockTime, "ErrUnsatisfiedLockTime"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	for c := ErrInternal; c < numErrorCodes; c++ {
		if strings.HasPrefix(c.String(), "Unknown") {
			t.Errorf("error code %d has no string", int(c))
		}
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
		}
	}
}

// TestError tests the error output for the Error type and matching through
// wrapping.
func TestError(t *testing.T) {
	t.Parallel()

	err := scriptError(ErrEvalFalse, "false stack entry")
	if err.Error() != "false stack entry" {
		t.Fatalf("Error: got %q", err.Error())
	}

	wrapped := fmt.Errorf("input 3: %w", err)
	if !IsErrorCode(wrapped, ErrEvalFalse) {
		t.Fatal("IsErrorCode did not see through wrapping")
	}
	if IsErrorCode(wrapped, ErrVerify) {
		t.Fatal("IsErrorCode matched the wrong code")
	}
	if IsErrorCode(fmt.Errorf("plain"), ErrEvalFalse) {
		t.Fatal("IsErrorCode matched a foreign error")
	}
}

// TestFailureReasons ensures every code maps onto one of the documented
// reasons and spot checks the classification.
func TestFailureReasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ErrorCode
		want FailureReason
	}{
		{ErrInvalidStackOperation, ReasonStackUnderflow},
		{ErrUnbalancedConditional, ReasonUnbalancedConditional},
		{ErrDisabledOpcode, ReasonDisabledOpcode},
		{ErrUnsatisfiedLockTime, ReasonLockTime},
		{ErrNegativeLockTime, ReasonLockTime},
		{ErrNullFail, ReasonSignature},
		{ErrSigHighS, ReasonSignature},
		{ErrTooManyOperations, ReasonResourceLimit},
		{ErrStackOverflow, ReasonResourceLimit},
		{ErrElementTooBig, ReasonResourceLimit},
		{ErrEvalFalse, ReasonEvalFalse},
		{ErrCleanStack, ReasonEvalFalse},
		{ErrMalformedPush, ReasonEncoding},
		{ErrInvalidFlags, ReasonOther},
	}
	for _, test := range tests {
		if got := test.code.Reason(); got != test.want {
			t.Errorf("%v: got reason %v, want %v", test.code, got,
				test.want)
		}
	}

	for c := ErrInternal; c < numErrorCodes; c++ {
		r := c.Reason()
		if r == ReasonNone || strings.HasPrefix(r.String(), "Unknown") {
			t.Errorf("%v maps to unusable reason %v", c, r)
		}
	}
}
