// SPDX-License-Identifier: MPL-2.0

package envmgr

import (
	"context"
	"errors"
	"strings"
)

// failureSignature maps a substring of package manager output to a
// FailureKind. Signatures are checked in order; first match wins.
type failureSignature struct {
	needle string
	kind   FailureKind
}

// failureSignatures covers the conda/mamba/micromamba error vocabulary.
// Network problems come first: a download failure often drags a resolution
// error behind it, and the network cause is the actionable one.
var failureSignatures = []failureSignature{
	{needle: "CondaHTTPError", kind: FailureNetwork},
	{needle: "ConnectionError", kind: FailureNetwork},
	{needle: "Could not connect", kind: FailureNetwork},
	{needle: "Connection refused", kind: FailureNetwork},
	{needle: "Temporary failure in name resolution", kind: FailureNetwork},
	{needle: "Download error", kind: FailureNetwork},
	{needle: "timed out", kind: FailureNetwork},
	{needle: "SSLError", kind: FailureNetwork},
	{needle: "PackagesNotFoundError", kind: FailurePackageNotFound},
	{needle: "ResolvePackageNotFound", kind: FailurePackageNotFound},
	{needle: "nothing provides", kind: FailurePackageNotFound},
	{needle: "UnsatisfiableError", kind: FailurePackageNotFound},
	{needle: "CondaValueError", kind: FailureConfig},
	{needle: "EnvironmentFileNotFound", kind: FailureConfig},
	{needle: "SpecNotFound", kind: FailureConfig},
	{needle: "could not parse", kind: FailureConfig},
	{needle: "invalid yaml", kind: FailureConfig},
}

// classifyFailure derives a FailureKind from a failed subprocess. A canceled
// context always means interrupted, regardless of what the process printed
// before it died.
func classifyFailure(output string, ctxErr error) FailureKind {
	if errors.Is(ctxErr, context.Canceled) || errors.Is(ctxErr, context.DeadlineExceeded) {
		return FailureInterrupted
	}
	lower := strings.ToLower(output)
	for _, sig := range failureSignatures {
		if strings.Contains(lower, strings.ToLower(sig.needle)) {
			return sig.kind
		}
	}
	return FailureUnknown
}
