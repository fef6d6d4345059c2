// Package events is the notification bus of netctl.
//
// The control layer publishes an Event after each successful mutation; the
// REST event stream and tests subscribe to it. Delivery policy is drop-newest
// per subscriber: each subscription has a bounded queue and an event that does
// not fit is discarded for that subscriber and counted, so a slow subscriber
// can never stall a mutating operation.
package events
