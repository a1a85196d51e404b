// Package errors derives low-cardinality labels from errors for logs and metrics.
package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"strings"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/apiclient"
	apperrors "github.com/Currypiekers/bestattungssoftware-portfolio/internal/errors"
)

// Classify returns a short label for err.
//
// Application errors use their code. HTTP rejections collapse to their status class
// (http_4xx, http_5xx). Cancellation, timeouts and dial failures get fixed labels.
// Anything else is named after its innermost concrete type, e.g. "errors_errorstring".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.GetCode(err) != "":
		return string(apperrors.GetCode(err))
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	if status := apiclient.StatusCode(err); status > 0 {
		return fmt.Sprintf("http_%dxx", status/100)
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if goerrors.As(err, &opErr) {
		return "network"
	}

	return typeLabel(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// typeLabel turns "*errors.errorString" into "errors_errorstring".
func typeLabel(err error) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, ".", "_"))
}
