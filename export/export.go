// Package export pushes generated posts to content-hosting destinations as
// drafts: Notion (REST pages API) and WordPress (XML-RPC).
package export

import "errors"

// Destination identifiers.
const (
	DestinationNotion    = "notion"
	DestinationWordPress = "wordpress"
)

// ErrExport marks a failed export: missing credentials, network fault, or a
// remote rejection. The cause is preserved in the wrapped error.
var ErrExport = errors.New("export failed")

// Result identifies the created draft.
type Result struct {
	Destination string `json:"destination"`
	URL         string `json:"url"`
}
