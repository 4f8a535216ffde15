// Package ygggo_session provides a resilient, single-connection MySQL session for Go.
//
// # Overview
//
// A Session owns exactly one server connection. The connection lives on a
// dedicated actor goroutine; callers talk to it by sending commands, and
// results come back as callbacks. No Session method blocks on the network.
//
// # Key Features
//
// ## Connection Lifecycle
//   - Explicit Connect, Disconnect and Close
//   - Bounded connect retries with a per-attempt timeout
//   - Automatic recovery with linearly growing delays when a query proves
//     the connection is gone
//   - Heartbeat pings at half the server wait_timeout
//   - Epoch counter and TxGuard to detect a connection swapped under an
//     open transaction
//
// ## Queries
//   - Run, Execute, FetchOne and Fetch with positional parameters
//   - Raw mode that sends statement text verbatim
//   - Optional per-session prepared statement cache with LRU eviction
//   - Rows decoded into a small tagged Value set, in column order
//
// ## Callbacks
//   - Delivered through a Dispatcher; by default the session's own
//     TaskQueue, drained by Poll on the host goroutine
//   - Failures reach the request's ErrorObserver before its callback
//
// ## Observability
//   - Structured logging with log/slog
//   - OpenTelemetry tracing spans per query
//   - OpenTelemetry metrics for queries, connects, reconnects and pings
//
// # Quick Start
//
//	opts, err := ygggo_session.OptionsFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	s, err := ygggo_session.Open(ctx, opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.Connect(func(err error) {
//		if err != nil {
//			log.Printf("connect: %v", err)
//		}
//	})
//	s.Fetch("SELECT id, name FROM users WHERE age > ?",
//		ygggo_session.WithArgs(18),
//		ygggo_session.WithCallback(func(o ygggo_session.Outcome, err error) {
//			for _, row := range o.Rows {
//				fmt.Println(row)
//			}
//		}),
//	)
//
//	for running {
//		s.Poll()
//		// ... the rest of the host loop
//	}
//
// # Configuration
//
// ConnectionOptions can be built in code, from a mysql:// URI, from a
// driver DSN, from viper (OptionsFromViper) or from YGGGO_SESSION_*
// environment variables (OptionsFromEnv):
//
//	YGGGO_SESSION_URI=mysql://user:pass@db:3306/app
//	YGGGO_SESSION_HOST=localhost
//	YGGGO_SESSION_PORT=3306
//	YGGGO_SESSION_USER=app
//	YGGGO_SESSION_PASSWORD=secret
//	YGGGO_SESSION_DATABASE=app
//	YGGGO_SESSION_STATEMENT_CACHE_CAPACITY=64
//
// # Errors
//
// Every failure delivered to a callback is an *Error carrying the MySQL
// error code and SQLSTATE when the server supplied them. The sentinels
// ErrNotOpen, ErrConnectTimeout and ErrUnsupportedType work with errors.Is.
//
// # Testing
//
// WithDialer accepts any Dialer, so tests can hand the session a sqlmock
// database instead of a server.
package ygggo_session
