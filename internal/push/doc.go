// Package push maintains the persistent websocket connection over which the
// hub delivers asynchronous notifications: assistant status transitions,
// chat messages, and out-of-cadence state refresh requests.
package push
