package control

import (
	"encoding/json"
	"fmt"
)

// response is a fully-rendered reply, ready to be written to the wire.
type response struct {
	status int
	body   []byte
}

func statusLine(status int) string {
	switch status {
	case 200:
		return "200 OK"
	case 202:
		return "202 ACCEPTED"
	case 404:
		return "404 NOT FOUND"
	case 418:
		return "418 I'M A TEAPOT"
	case 500:
		return "500 INTERNAL SERVER ERROR"
	default:
		return fmt.Sprintf("%d UNKNOWN", status)
	}
}

// render serializes the response in the exact wire format the control
// plane promises: a status line, a Content-Type/Content-Length pair, and
// the JSON body, separated by CRLF.
func (r response) render() []byte {
	return []byte(fmt.Sprintf(
		"HTTP/1.1 %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
		statusLine(r.status), len(r.body), r.body,
	))
}

func jsonResponse(status int, v any) (response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return response{}, fmt.Errorf("could not serialize response body: %w", err)
	}
	return response{status: status, body: body}, nil
}

func textResponse(status int, message string) response {
	body, _ := json.Marshal(message)
	return response{status: status, body: body}
}

func notFoundResponse() response { return textResponse(404, "Command not found") }
func killResponse() response     { return textResponse(418, "Exiting...") }
func serverErrResponse() response {
	return textResponse(500, "Failed to parse request")
}
