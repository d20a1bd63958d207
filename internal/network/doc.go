// Package network carries protocol frames over TLS.
//
// Every connection is owned by one Serve goroutine that runs read turns
// (OnReadable) until the connection is closing, plus one writer goroutine
// that flushes queued frames (OnWritable). A read turn pulls what the TLS
// layer has decrypted, appends it to the connection's accumulation buffer
// and hands every complete frame to the role's sink in arrival order;
// partial frames stay buffered for the next turn. The accumulation buffer
// is only ever touched by the Serve goroutine.
//
// Two connection kinds share that core:
//
//   - ServerConn hands frames to a Dispatcher, which routes them to
//     instruction handlers.
//   - ClientConn queues frames for Await, a bounded poll used by request /
//     response exchanges.
//
// Transport and framing faults never leave this package: they close the
// affected connection and are logged.
package network
