// Package mqtt publishes zone outputs to an MQTT broker.
//
// Each output has a retained state topic carrying ON or OFF, every change is
// also published as a JSON event, and the broker announces the controller
// offline through the last will on the availability topic.
//
// Topics:
//
//	<prefix>/<zone>/<output>      retained ON|OFF
//	<prefix>/<zone>/events        JSON zone.Event
//	<prefix>/<zone>/availability  retained online|offline
package mqtt
