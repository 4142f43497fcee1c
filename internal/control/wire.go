package control

import (
	"encoding/json"
	"fmt"

	"github.com/hankthetank27/edlgen/internal/recsession"
)

// wireEditRequest decodes the flat {"req_type":"event", ...} body shape
// /start, /log, and /end all accept. Embedding recsession.EditRequest
// promotes its json tags so the remaining fields decode directly onto it.
type wireEditRequest struct {
	ReqType string `json:"req_type"`
	recsession.EditRequest
}

// wireSourceRequest decodes the {"req_type":"source", ...} body /select-src
// accepts.
type wireSourceRequest struct {
	ReqType string `json:"req_type"`
	recsession.SourceTapeRequest
}

func decodeEditRequest(body []byte) (recsession.EditRequest, error) {
	var w wireEditRequest
	if err := json.Unmarshal(body, &w); err != nil {
		return recsession.EditRequest{}, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if w.ReqType != "event" {
		return recsession.EditRequest{}, fmt.Errorf("unexpected request type: expected event, got %q", w.ReqType)
	}
	return w.EditRequest, nil
}

func decodeSourceRequest(body []byte) (recsession.SourceTapeRequest, error) {
	var w wireSourceRequest
	if err := json.Unmarshal(body, &w); err != nil {
		return recsession.SourceTapeRequest{}, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if w.ReqType != "source" {
		return recsession.SourceTapeRequest{}, fmt.Errorf("unexpected request type: expected source, got %q", w.ReqType)
	}
	return w.SourceTapeRequest, nil
}
