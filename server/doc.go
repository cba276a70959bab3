// Package server accepts protocol connections on the loopback interface and
// runs one dispatcher loop per connection.
//
// Each connection is served by its own goroutine, which holds a reference
// to the shared library handle for as long as it runs. Requests on one
// connection are handled strictly in order; connections are independent of
// each other. Config.MaxConns bounds the number of connections served at
// once; the default of zero leaves it unbounded.
//
// Cancelling the context passed to Serve closes the listener and every open
// connection. Serve returns once all workers have exited, which includes
// waiting for native calls that are still running.
package server
