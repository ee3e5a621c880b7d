package validation

import (
	"context"
	"errors"
	"testing"
)

type fakeNetError struct {
	msg     string
	timeout bool
}

func (e *fakeNetError) Error() string   { return e.msg }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return e.timeout }

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		err    error
		expect ErrorKind
	}{
		{&fakeNetError{msg: "i/o timeout", timeout: true}, KindTimeout},
		{context.DeadlineExceeded, KindTimeout},
		{&fakeNetError{msg: "connection refused"}, KindUpstreamDown},
		{&fakeNetError{msg: "connection reset by peer"}, KindUpstreamDown},
		{errors.New("no such host"), KindUpstreamDown},
	}

	for _, tt := range tests {
		if got := classifyTransport(tt.err); got != tt.expect {
			t.Errorf("classifyTransport(%q) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}

func TestErrorKindRetryable(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		expect bool
	}{
		{KindTimeout, true},
		{KindUpstreamDown, false},
		{KindBadRequest, false},
		{KindBadResponse, false},
	}

	for _, tt := range tests {
		if got := tt.kind.Retryable(); got != tt.expect {
			t.Errorf("%v.Retryable() = %v, want %v", tt.kind, got, tt.expect)
		}
	}
}
