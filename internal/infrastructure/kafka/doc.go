// Package kafka streams zone transition events to a Kafka topic, keyed by zone.
package kafka
