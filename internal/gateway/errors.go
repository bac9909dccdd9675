package gateway

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrUnreachable marks connectivity failures: the collaborator never
// answered. Match with errors.Is. Distinct from RemoteError, which means the
// collaborator answered and said no.
var ErrUnreachable = errors.New("cannot reach server")

// TransportError wraps the underlying network failure for one endpoint.
// errors.Is(err, ErrUnreachable) holds for every TransportError.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s unreachable: %v", ErrUnreachable, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUnreachable }

// RemoteError is a rejection from a collaborator. Message is the server's
// reason verbatim; nothing in this service invents rejection reasons.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote rejected with status %d", e.Status)
}

// UserMessage translates err into the message shown to the user: the remote
// reason verbatim for rejections, a generic connectivity message otherwise.
func UserMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Error()
	}
	if errors.Is(err, ErrUnreachable) {
		return ErrUnreachable.Error()
	}
	return err.Error()
}
