/*
	Package wsrpc implements a typed message layer for bidirectional RPC
	over websockets (or any frame-based transport).

	Every message carries a type tag, used to select decoders and
	handlers, and a correlation identifier, used to match a reply to the
	request that caused it. A Registry holds an ordered list of decoders
	tried in order against each inbound frame, and one encoder per
	outbound message type.

	Client is the application-facing endpoint. Call sends a request and
	blocks until the matching reply arrives; Notify sends without
	correlation; On subscribes a handler to unsolicited messages of one
	type. The transport is a collaborator: the ws subpackages provide
	websocket-backed implementations, and Pipe provides an in-memory
	pair for tests.
*/
package wsrpc
