// Package influxdb records zone output transitions as InfluxDB points.
//
// Writes go through the non-blocking batching WriteAPI; asynchronous write
// errors are reported through a callback.
package influxdb
