package entity

import (
	"errors"
	"fmt"
)

// UpstreamErrorKind classifies a failed call to the analytics API.
type UpstreamErrorKind string

const (
	// UpstreamTransport is a network failure reaching the upstream API.
	UpstreamTransport UpstreamErrorKind = "transport"
	// UpstreamTimeout is a request that exceeded its deadline.
	UpstreamTimeout UpstreamErrorKind = "timeout"
	// UpstreamStatus is a non-2xx HTTP status returned by the upstream API.
	UpstreamStatus UpstreamErrorKind = "status"
	// UpstreamMalformed is a 2xx response whose body is not valid JSON.
	UpstreamMalformed UpstreamErrorKind = "malformed"
)

// UpstreamError is returned by the analytics client for every failed request.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	Endpoint   string
	StatusCode int    // set for UpstreamStatus
	Body       string // raw upstream body, set for UpstreamStatus and UpstreamMalformed
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case UpstreamStatus:
		return fmt.Sprintf("error from analytics API (%s): status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	case UpstreamMalformed:
		return fmt.Sprintf("bad gateway: analytics API (%s) returned a non-JSON response", e.Endpoint)
	case UpstreamTimeout:
		return fmt.Sprintf("request to analytics API (%s) timed out", e.Endpoint)
	default:
		if e.Err != nil {
			return fmt.Sprintf("request to analytics API (%s) failed: %v", e.Endpoint, e.Err)
		}
		return fmt.Sprintf("request to analytics API (%s) failed", e.Endpoint)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidWalletAddress is returned when the requested address is empty or malformed.
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	// ErrInvalidNFTReference is returned when a contract address or token id is missing.
	ErrInvalidNFTReference = errors.New("invalid NFT reference")
	// ErrUnsupportedBlockchain is returned for a blockchain identifier that is not configured.
	ErrUnsupportedBlockchain = errors.New("unsupported blockchain")
	// ErrNarrativeFailed wraps any failure of the narrative-generation call.
	ErrNarrativeFailed = errors.New("failed to generate AI report")
	// ErrReportFailed wraps unexpected failures inside the report pipeline.
	ErrReportFailed = errors.New("unexpected server error while generating report")
	// ErrNFTInsightUnavailable is returned when every NFT lookup failed.
	ErrNFTInsightUnavailable = errors.New("no NFT data available")
)
