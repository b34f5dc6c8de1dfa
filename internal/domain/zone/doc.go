// Package zone contains the security zone state machine.
//
// A Machine turns polled binary sensor readings into four stable outputs
// (Surveillance, Detection, Intrusion, Alarm) using a recency window, an
// optional intrusion confirmation delay and the alarm on/off delays.
// The package has no I/O: callers poll the sensor hub, pass the readings and
// the current time in, and persist or publish the returned Changes.
package zone
