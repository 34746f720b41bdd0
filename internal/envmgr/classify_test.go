// SPDX-License-Identifier: MPL-2.0

package envmgr

import (
	"context"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		ctxErr error
		want   FailureKind
	}{
		{
			name:   "http error",
			output: "CondaHTTPError: HTTP 000 CONNECTION FAILED for url",
			want:   FailureNetwork,
		},
		{
			name:   "connection refused",
			output: "error: Connection refused by host",
			want:   FailureNetwork,
		},
		{
			name:   "packages not found",
			output: "PackagesNotFoundError: The following packages are not available",
			want:   FailurePackageNotFound,
		},
		{
			name:   "libmamba nothing provides",
			output: "error libmamba nothing provides requested nosuchpkg",
			want:   FailurePackageNotFound,
		},
		{
			name:   "bad spec",
			output: "CondaValueError: invalid package specification",
			want:   FailureConfig,
		},
		{
			name:   "network outranks resolution fallout",
			output: "ConnectionError: ...\nPackagesNotFoundError: ...",
			want:   FailureNetwork,
		},
		{
			name:   "canceled context wins over output",
			output: "PackagesNotFoundError",
			ctxErr: context.Canceled,
			want:   FailureInterrupted,
		},
		{
			name:   "unrecognized output",
			output: "something exploded",
			want:   FailureUnknown,
		},
		{
			name: "empty output",
			want: FailureUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyFailure(tt.output, tt.ctxErr); got != tt.want {
				t.Errorf("classifyFailure() = %q, want %q", got, tt.want)
			}
		})
	}
}
