// Package report renders panel snapshots into the fixed-order text summary
// delivered to the messaging channel.
package report

import (
	"time"

	"github.com/ternarybob/specula/internal/models"
	"github.com/ternarybob/specula/internal/signals"
)

// Report is the immutable outcome of one panel run: the snapshot it was
// computed from, the evaluation, the recommended action and the rendered
// text, stamped with a report ID.
type Report struct {
	ID         string             `json:"id"`
	Generated  time.Time          `json:"generated"`
	Snapshot   models.Snapshot    `json:"snapshot"`
	Evaluation signals.Evaluation `json:"evaluation"`
	Advice     signals.Advice     `json:"advice"`
	Text       string             `json:"text"`
}
