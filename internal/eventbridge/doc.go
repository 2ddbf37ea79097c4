// Package eventbridge forwards event-anchor emissions to a message broker.
//
// Every emission is published as a JSON message
//
//	{"card": "<card id>", "event": "<event id>", "value": ..., "ts": "<RFC3339Nano>"}
//
// on the topic <prefix>/<card id>/<event id>.
package eventbridge
