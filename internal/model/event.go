// Package model defines the core domain types used throughout the application.
package model

// Source identifies where an inbound message event originated.
type Source string

// Event sources.
const (
	SourceSMS          Source = "SMS"
	SourceNotification Source = "Notification"
)

// MessageEvent is a normalized inbound message, ready for the pipeline.
type MessageEvent struct {
	Source      Source
	PackageName string
	From        string
	Body        string
	Timestamp   int64 // epoch millis
}
