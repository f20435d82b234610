package assist

import "context"

// TurnStream is one open bidirectional exchange with the remote assistant.
// Send and Recv may be used concurrently; Recv returns io.EOF when the server
// closes the response stream.
type TurnStream interface {
	Send(req Request) error
	// CloseSend half-closes the outbound side once all audio has been sent.
	CloseSend() error
	Recv() (*Response, error)
}

// Endpoint opens turn streams against the remote assistant service.
type Endpoint interface {
	OpenTurn(ctx context.Context) (TurnStream, error)
}
