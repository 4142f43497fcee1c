package control

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/hankthetank27/edlgen/internal/edl"
	"github.com/hankthetank27/edlgen/internal/recsession"
	"github.com/hankthetank27/edlgen/internal/timecode"
	"github.com/stretchr/testify/require"
)

// blockingDecoder never produces a frame; every receive blocks until the
// test deadline, which is all the routing tests below need.
type blockingDecoder struct{}

func (blockingDecoder) DecodeOn()  {}
func (blockingDecoder) DecodeOff() {}
func (blockingDecoder) Recv() (timecode.TC, error) {
	select {}
}
func (blockingDecoder) RecvTimeout(d time.Duration) (timecode.TC, error) {
	time.Sleep(d)
	return timecode.TC{}, errors.New("no signal")
}

func newTestSession(t *testing.T) *recsession.Session {
	t.Helper()
	return recsession.New(t.TempDir(), "test-title", edl.NonDropFrame, blockingDecoder{}, nil)
}

func rawRequest(method, path, body string) request {
	return request{method: method, path: path, body: []byte(body)}
}

func TestRouteEdlRecordingState(t *testing.T) {
	session := newTestSession(t)
	res, err := route(rawRequest("GET", "/edl-recording-state", ""), session)
	require.NoError(t, err)
	require.Equal(t, 200, res.status)
	require.Contains(t, string(res.body), `"stopped"`)
}

func TestRouteSigkillReturnsTeapot(t *testing.T) {
	session := newTestSession(t)
	res, err := route(rawRequest("GET", "/SIGKILL", ""), session)
	require.NoError(t, err)
	require.Equal(t, 418, res.status)
}

func TestRouteUnknownPathReturnsNotFound(t *testing.T) {
	session := newTestSession(t)
	res, err := route(rawRequest("GET", "/nonexistent", ""), session)
	require.NoError(t, err)
	require.Equal(t, 404, res.status)
}

func TestRouteStartWithMalformedBodyErrors(t *testing.T) {
	session := newTestSession(t)
	_, err := route(rawRequest("POST", "/start", "not-json"), session)
	require.Error(t, err)
}

func TestRouteStartWithWrongReqTypeErrors(t *testing.T) {
	session := newTestSession(t)
	_, err := route(rawRequest("POST", "/start", `{"req_type":"source"}`), session)
	require.Error(t, err)
}

func TestRouteSelectSrcRoundTrips(t *testing.T) {
	session := newTestSession(t)
	res, err := route(rawRequest("POST", "/select-src", `{"req_type":"source","source_tape":"AX"}`), session)
	require.NoError(t, err)
	require.Equal(t, 200, res.status)
	require.Contains(t, string(res.body), `"stopped"`)
}

func TestRouteStartTimesOutToWaiting(t *testing.T) {
	session := newTestSession(t)
	res, err := route(rawRequest("POST", "/start", `{"req_type":"event","edit_type":"cut"}`), session)
	require.NoError(t, err)
	require.Equal(t, 202, res.status)
	require.Contains(t, string(res.body), `"waiting"`)
}

func TestResponseRenderIsWireFormatted(t *testing.T) {
	res := textResponse(200, "hi")
	rendered := string(res.render())
	require.True(t, strings.HasPrefix(rendered, "HTTP/1.1 200 OK\r\n"))
	require.Contains(t, rendered, "Content-Type: application/json\r\n")
	require.Contains(t, rendered, "Content-Length: 4\r\n")
	require.True(t, strings.HasSuffix(rendered, `"hi"`))
}

func TestListenServesAndShutsDownCleanly(t *testing.T) {
	session := newTestSession(t)
	srv := New(freePort(t), nil)
	stop, stopped := NewShutdownChannels()

	listenErr := make(chan error, 1)
	go func() { listenErr <- srv.Listen(session, stop, stopped) }()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", srv.Addr(), 50*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	_, err = conn.Write([]byte("GET /edl-recording-state HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)
	status, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, status, "200 OK")
	conn.Close()

	require.NoError(t, Shutdown(srv.Addr(), stop, stopped))
	require.NoError(t, <-listenErr)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
