// Package errors provides structured, coded errors for beanmachine services.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	CodeInvalidRate          Code = "INVALID_RATE"
	CodeInvalidRowCount      Code = "INVALID_ROW_COUNT"
	CodeInvalidBatchSize     Code = "INVALID_BATCH_SIZE"
	CodeInvalidPolicy        Code = "INVALID_POLICY"

	// Input errors
	CodeUnknownInput Code = "UNKNOWN_INPUT"
	CodeInvalidSteps Code = "INVALID_STEPS"

	// Journal errors
	CodeInvalidFilter    Code = "INVALID_FILTER"
	CodeInvalidPageToken Code = "INVALID_PAGE_TOKEN"
	CodeNotFound         Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidConfiguration,
		CodeInvalidRate,
		CodeInvalidRowCount,
		CodeInvalidBatchSize,
		CodeInvalidPolicy,
		CodeUnknownInput,
		CodeInvalidSteps,
		CodeInvalidFilter,
		CodeInvalidPageToken:
		return codes.InvalidArgument

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
