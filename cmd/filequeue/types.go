package main

import "filequeue"

// ActorStatus is the lifecycle state of one actor.
type ActorStatus struct {
	Name  string          `json:"name"`
	State filequeue.State `json:"state"`
}

// QueueStatus is a snapshot of the shared queue.
type QueueStatus struct {
	Length   int `json:"length"`
	Capacity int `json:"capacity"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Running     bool          `json:"running"`
	Queue       QueueStatus   `json:"queue"`
	Actors      []ActorStatus `json:"actors"`
	Generated   uint64        `json:"generated"`
	Processed   uint64        `json:"processed"`
	FeedClients int           `json:"feed_clients"`
}
