package control

import (
	"errors"

	"github.com/hankthetank27/edlgen/internal/recsession"
)

var errMissingBody = errors.New("request does not contain a body")

// route dispatches one parsed request to its handler by (method, path).
// Only genuine failures (malformed body, internal session errors) are
// returned as an error; every recognized outcome, including a 202
// no-op or the 418 kill route, is a nil-error response.
func route(req request, session *recsession.Session) (response, error) {
	switch {
	case req.method == "POST" && req.path == "/start":
		return handleStart(req, session)
	case req.method == "POST" && req.path == "/log":
		return handleLog(req, session)
	case req.method == "POST" && req.path == "/end":
		return handleEnd(req, session)
	case req.method == "POST" && req.path == "/select-src":
		return handleSelectSrc(req, session)
	case req.method == "GET" && req.path == "/edl-recording-state":
		return jsonResponse(200, recsession.Response{RecordingState: session.State()})
	case req.method == "GET" && req.path == "/SIGKILL":
		return killResponse(), nil
	default:
		return notFoundResponse(), nil
	}
}

func handleStart(req request, session *recsession.Session) (response, error) {
	editReq, err := decodeEdit(req)
	if err != nil {
		return response{}, err
	}
	resp, status, err := session.Start(editReq)
	if err != nil {
		return response{}, err
	}
	return jsonResponse(status, resp)
}

func handleLog(req request, session *recsession.Session) (response, error) {
	editReq, err := decodeEdit(req)
	if err != nil {
		return response{}, err
	}
	resp, status, err := session.Log(editReq)
	if err != nil {
		return response{}, err
	}
	return jsonResponse(status, resp)
}

func handleEnd(req request, session *recsession.Session) (response, error) {
	editReq, err := decodeEdit(req)
	if err != nil {
		return response{}, err
	}
	resp, status, err := session.End(editReq)
	if err != nil {
		return response{}, err
	}
	return jsonResponse(status, resp)
}

func handleSelectSrc(req request, session *recsession.Session) (response, error) {
	if req.body == nil {
		return response{}, errMissingBody
	}
	srcReq, err := decodeSourceRequest(req.body)
	if err != nil {
		return response{}, err
	}
	return jsonResponse(200, session.SelectSrc(srcReq))
}

func decodeEdit(req request) (recsession.EditRequest, error) {
	if req.body == nil {
		return recsession.EditRequest{}, errMissingBody
	}
	return decodeEditRequest(req.body)
}
