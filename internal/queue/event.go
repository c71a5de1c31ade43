// Package queue defines message payloads exchanged over the message broker.
package queue

// ImageCleanupEvent is published when a recipe photo has been superseded by
// an update or its recipe has been deleted. The stored image is no longer
// referenced and should be removed from the image host. Deletion is
// best-effort: the publishing request has already succeeded by the time
// this event exists.
type ImageCleanupEvent struct {
    RecipeID    uint64 `json:"recipe_id"`
    DeleteRef   string `json:"delete_ref"`
    Reason      string `json:"reason"` // "updated" | "deleted" | "failed"
    RequestedAt string `json:"requested_at"`
}
