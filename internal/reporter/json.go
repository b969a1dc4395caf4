package reporter

import "encoding/json"

// JSON renders r as the stable machine-readable document from spec: map
// keys sort lexically (encoding/json's behavior for map[string]T), and
// empty/false-by-default fields are omitted via struct tags.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
