// Package qerr defines the QUIC transport error codes the demultiplexer
// needs to close or reject connections with, modeled on
// quic-go/quic-go/internal/qerr.
package qerr

import "fmt"

// TransportErrorCode is a QUIC transport error code (RFC 9000 §20.1).
type TransportErrorCode uint64

const (
	NoError                 TransportErrorCode = 0x0
	InternalError           TransportErrorCode = 0x1
	ConnectionRefused       TransportErrorCode = 0x2
	FlowControlError        TransportErrorCode = 0x3
	StreamLimitError        TransportErrorCode = 0x4
	StreamStateError        TransportErrorCode = 0x5
	FinalSizeError          TransportErrorCode = 0x6
	FrameEncodingError      TransportErrorCode = 0x7
	TransportParameterError TransportErrorCode = 0x8
	ConnectionIDLimitError  TransportErrorCode = 0x9
	ProtocolViolation       TransportErrorCode = 0xa
	InvalidToken            TransportErrorCode = 0xb
	ApplicationError        TransportErrorCode = 0xc
	CryptoBufferExceeded    TransportErrorCode = 0xd

	// ServerBusy is not a distinct wire value: servers signal "too busy to
	// accept this connection" with CONNECTION_REFUSED, which is what
	// ngtcp2 (and the Node.js QUIC implementation this core is modeled on)
	// call NGTCP2_SERVER_BUSY. Kept as a separate name so call sites read
	// as intent rather than a bare error-code constant.
	ServerBusy = ConnectionRefused
)

func (e TransportErrorCode) String() string {
	switch e {
	case NoError:
		return "NO_ERROR"
	case InternalError:
		return "INTERNAL_ERROR"
	case ConnectionRefused:
		return "CONNECTION_REFUSED"
	case FlowControlError:
		return "FLOW_CONTROL_ERROR"
	case StreamLimitError:
		return "STREAM_LIMIT_ERROR"
	case StreamStateError:
		return "STREAM_STATE_ERROR"
	case FinalSizeError:
		return "FINAL_SIZE_ERROR"
	case FrameEncodingError:
		return "FRAME_ENCODING_ERROR"
	case TransportParameterError:
		return "TRANSPORT_PARAMETER_ERROR"
	case ConnectionIDLimitError:
		return "CONNECTION_ID_LIMIT_ERROR"
	case ProtocolViolation:
		return "PROTOCOL_VIOLATION"
	case InvalidToken:
		return "INVALID_TOKEN"
	case ApplicationError:
		return "APPLICATION_ERROR"
	case CryptoBufferExceeded:
		return "CRYPTO_BUFFER_EXCEEDED"
	default:
		return fmt.Sprintf("unknown error code: %#x", uint64(e))
	}
}

func (e TransportErrorCode) Error() string { return e.String() }

// TransportError is a QUIC CONNECTION_CLOSE with a transport error code,
// used here only to mark a freshly-created session for immediate closure
// (spec §4.7.2, "AdmissionRejected").
type TransportError struct {
	ErrorCode    TransportErrorCode
	ErrorMessage string
}

func (e *TransportError) Error() string {
	if e.ErrorMessage == "" {
		return e.ErrorCode.String()
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.ErrorMessage)
}

func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}
