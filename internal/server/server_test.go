package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/gravitas-015/hexcore/hex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/hexspiral/internal/config"
	"github.com/gravitas-games/hexspiral/internal/network"
	"github.com/gravitas-games/hexspiral/internal/service"
	"github.com/gravitas-games/hexspiral/internal/spiral"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, secret string) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.JWT.Secret = secret
	cfg.JWT.Issuer = "hexspiral"
	cfg.Limits.MaxRing = 50
	cfg.Limits.MaxBatch = 10

	srv := New(cfg, service.New(cfg.Limits.MaxRing, cfg.Limits.MaxBatch), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.cancel()
	})
	return srv, ts
}

func signToken(t *testing.T, secret, issuer, subject string) string {
	t.Helper()
	claims := Claims{
		Name: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func getJSON(t *testing.T, url string, header http.Header, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, "")
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSpiralEndpoint(t *testing.T) {
	_, ts := newTestServer(t, "")

	var cell spiral.Cell
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/spiral/45", nil, &cell))
	assert.Equal(t, spiral.Cell{Index: 45, Cube: hex.Cube{Q: 4, R: 0, S: -4}}, cell)

	var e network.ErrorPayload
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/spiral/-1", nil, &e))
	assert.Equal(t, "invalid_index", e.Code)

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, ts.URL+"/v1/spiral/100000", nil, &e))
	assert.Equal(t, network.ErrCodeOutOfRange, e.Code)
}

func TestCubeEndpoint(t *testing.T) {
	_, ts := newTestServer(t, "")

	var cell spiral.Cell
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/cube?q=0&r=-2&s=2", nil, &cell))
	assert.Equal(t, uint64(7), cell.Index)

	var e network.ErrorPayload
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/cube?q=1&r=1&s=1", nil, &e))
	assert.Equal(t, network.ErrCodeMalformedCube, e.Code)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/cube?q=1&r=1", nil, &e))
	assert.Equal(t, "invalid_cube", e.Code)
}

func TestRingEndpoint(t *testing.T) {
	_, ts := newTestServer(t, "")

	var ring network.RingResultPayload
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/rings/1", nil, &ring))
	require.Len(t, ring.Cells, 6)
	assert.Equal(t, hex.Cube{Q: 0, R: -1, S: 1}, ring.Cells[0].Cube)
}

func TestBatchEndpoint(t *testing.T) {
	_, ts := newTestServer(t, "")

	body, _ := json.Marshal(BatchRequest{
		Indices: []uint64{0, 1, 4, 7, 45},
		Cubes:   []hex.Cube{{Q: 4, R: 0, S: -4}},
	})
	resp, err := http.Post(ts.URL+"/v1/batch", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out BatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.ToCube, 5)
	assert.Equal(t, hex.Cube{Q: 0, R: 1, S: -1}, out.ToCube[2].Cube)
	require.Len(t, out.ToSpiral, 1)
	assert.Equal(t, uint64(45), out.ToSpiral[0].Index)

	big, _ := json.Marshal(BatchRequest{Indices: make([]uint64, 11)})
	resp2, err := http.Post(ts.URL+"/v1/batch", "application/json", bytes.NewReader(big))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp2.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t, testSecret)

	assert.Equal(t, http.StatusUnauthorized, getJSON(t, ts.URL+"/v1/spiral/1", nil, nil))

	bad := http.Header{"Authorization": {"Bearer " + signToken(t, "other", "hexspiral", "u1")}}
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, ts.URL+"/v1/spiral/1", bad, nil))

	wrongIssuer := http.Header{"Authorization": {"Bearer " + signToken(t, testSecret, "elsewhere", "u1")}}
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, ts.URL+"/v1/spiral/1", wrongIssuer, nil))

	good := http.Header{"Authorization": {"Bearer " + signToken(t, testSecret, "hexspiral", "u1")}}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/spiral/1", good, nil))

	tok := signToken(t, testSecret, "hexspiral", "u1")
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/spiral/1?token="+tok, nil, nil))

	// health stays public
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", nil, nil))
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	assert.Equal(t, "q", extractToken(r))

	r.Header.Set("Authorization", "Bearer b")
	assert.Equal(t, "b", extractToken(r))

	r.Header.Set("Sec-WebSocket-Protocol", "access_token, p")
	assert.Equal(t, "p", extractToken(r))
}

func dialWS(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

type rawServerMessage struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg interface{}) rawServerMessage {
	t.Helper()
	require.NoError(t, ws.WriteJSON(msg))
	return readWS(t, ws)
}

func readWS(t *testing.T, ws *websocket.Conn) rawServerMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out rawServerMessage
	require.NoError(t, ws.ReadJSON(&out))
	return out
}

func TestWebSocketConversions(t *testing.T) {
	srv, ts := newTestServer(t, "")
	ws := dialWS(t, ts, nil)

	welcome := readWS(t, ws)
	require.Equal(t, network.MsgTypeWelcome, welcome.Type)
	var wp network.WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	assert.NotEmpty(t, wp.ConnectionID)
	assert.Equal(t, uint64(50), wp.MaxRing)

	reply := roundTrip(t, ws, map[string]interface{}{
		"id": "a", "type": network.MsgTypeToCube, "payload": network.ToCubePayload{Index: 45},
	})
	assert.Equal(t, "a", reply.ID)
	require.Equal(t, network.MsgTypeCube, reply.Type)
	var cell spiral.Cell
	require.NoError(t, json.Unmarshal(reply.Payload, &cell))
	assert.Equal(t, hex.Cube{Q: 4, R: 0, S: -4}, cell.Cube)

	reply = roundTrip(t, ws, map[string]interface{}{
		"id": "b", "type": network.MsgTypeToSpiral, "payload": network.ToSpiralPayload{Cube: hex.Cube{Q: 0, R: 1, S: -1}},
	})
	require.Equal(t, network.MsgTypeSpiral, reply.Type)
	require.NoError(t, json.Unmarshal(reply.Payload, &cell))
	assert.Equal(t, uint64(4), cell.Index)

	reply = roundTrip(t, ws, map[string]interface{}{
		"id": "c", "type": network.MsgTypeToSpiral, "payload": network.ToSpiralPayload{Cube: hex.Cube{Q: 1, R: 1, S: 1}},
	})
	require.Equal(t, network.MsgTypeError, reply.Type)
	var e network.ErrorPayload
	require.NoError(t, json.Unmarshal(reply.Payload, &e))
	assert.Equal(t, network.ErrCodeMalformedCube, e.Code)

	reply = roundTrip(t, ws, map[string]interface{}{"type": network.MsgTypeRing, "payload": network.RingPayload{Ring: 2}})
	require.Equal(t, network.MsgTypeRingResult, reply.Type)
	var ring network.RingResultPayload
	require.NoError(t, json.Unmarshal(reply.Payload, &ring))
	assert.Len(t, ring.Cells, 12)

	reply = roundTrip(t, ws, map[string]interface{}{"type": network.MsgTypePing})
	assert.Equal(t, network.MsgTypePong, reply.Type)

	reply = roundTrip(t, ws, map[string]interface{}{"type": "teleport"})
	require.Equal(t, network.MsgTypeError, reply.Type)
	require.NoError(t, json.Unmarshal(reply.Payload, &e))
	assert.Equal(t, network.ErrCodeUnknownType, e.Code)

	assert.Equal(t, 1, srv.session.Status().Connections)
	assert.GreaterOrEqual(t, srv.session.Status().ConversionsServed, int64(3))
}

func TestWebSocketRequiresToken(t *testing.T) {
	_, ts := newTestServer(t, testSecret)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{"Sec-WebSocket-Protocol": {"access_token, " + signToken(t, testSecret, "hexspiral", "u1")}}
	ws := dialWS(t, ts, header)
	assert.Equal(t, network.MsgTypeWelcome, readWS(t, ws).Type)
}
