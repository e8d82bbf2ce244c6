package controller

import (
	"encoding/json"
	"io"
	"log"

	"github.com/gin-gonic/gin"
)

// sseEvent is the wire shape of one change notification.
type sseEvent struct {
	Type  string      `json:"type"`
	JobID string      `json:"job_id"`
	Job   interface{} `json:"job,omitempty"`
}

// StreamEvents serves the session's local change feed as server-sent
// events. The stream stays open until the client disconnects or the
// session is disposed.
func (ct *Controller) StreamEvents(c *gin.Context) {
	sess, owner, ok := ct.session(c)
	if !ok {
		return
	}

	changes, cancel := sess.Jobs.Changes()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false

		case change, open := <-changes:
			if !open {
				return false
			}

			payload, err := json.Marshal(sseEvent{
				Type:  string(change.Type),
				JobID: change.JobID.String(),
				Job:   change.Job,
			})
			if err != nil {
				log.Printf("controller: dropping change event for user %s: %v", owner, err)
				return true
			}

			c.SSEvent("change", string(payload))
			return true
		}
	})
}
