// Package sender posts telemetry batches to an ingestion service.
//
// A Sender owns the service endpoint and a reference to the queue it
// drains. Send posts one JSON-encoded batch and, when delivery fails
// transiently, returns the batch to the queue for a later attempt. A
// batch the service rejects as malformed (HTTP 400) is dropped instead,
// since retrying identical bytes cannot succeed.
//
// # Usage
//
// Create a sender and attach the queue it drains:
//
//	s := sender.New("https://ingest.example.com/v2/track",
//	    sender.WithHTTPClient(httpClient),
//	    sender.WithLogger(logger),
//	)
//	s.SetQueue(q)
//
//	s.Send(ctx, items)
//
// Send never reports an error to the caller; failed batches reappear on
// the queue and are retried by whatever drains it.
//
// # Custom Transports
//
// Provide an HTTPClient implementation to route requests through a
// custom transport or a test double.
package sender
