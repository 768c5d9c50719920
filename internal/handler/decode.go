// Package handler implements the /decode WebSocket endpoint: the
// browser sends one BMP file as a binary message and receives the image
// descriptor, one RGBA row per binary frame in display order, and a
// final status message.
package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/okiselev/bmp-html5/internal/bmp"
	"github.com/okiselev/bmp-html5/internal/config"
	"github.com/okiselev/bmp-html5/internal/logging"
)

const (
	webSocketReadBufferSize  = 8192
	webSocketWriteBufferSize = 8192 * 2
)

// imageInfo is the first message sent after a successful header parse.
type imageInfo struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	TopDown     bool   `json:"topDown"`
	BitCount    int    `json:"bitCount"`
	Variant     string `json:"variant"`
	Compression string `json:"compression"`
	PaletteSize int    `json:"paletteSize"`
}

// decodeStatus is the final message of a session.
type decodeStatus struct {
	Done      bool   `json:"done"`
	Rows      int    `json:"rows"`
	Truncated bool   `json:"truncated,omitempty"`
	RowErrors int    `json:"rowErrors,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Decode upgrades the connection and runs one decode session on it.
func Decode(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  webSocketReadBufferSize,
		WriteBufferSize: webSocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isAllowedOrigin(r.Header.Get("Origin"))
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("upgrade websocket: %v", err)

		return
	}

	defer func() {
		if err = wsConn.Close(); err != nil {
			logging.Warn("close websocket: %v", err)
		}
	}()

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		// Fallback for tests that call the handler directly.
		if cfg, err = config.Load(); err != nil {
			logging.Error("load config: %v", err)

			return
		}
	}

	wsConn.SetReadLimit(cfg.Decode.MaxUploadBytes)

	msgType, payload, err := wsConn.ReadMessage()
	if err != nil {
		logging.Warn("read bitmap payload: %v", err)

		return
	}
	if msgType != websocket.BinaryMessage {
		reportFailure(wsConn, fmt.Errorf("expected a binary bitmap payload"))

		return
	}

	decodeSession(wsConn, payload, cfg)
}

// decodeSession decodes one in-memory BMP payload onto the socket.
func decodeSession(wsConn *websocket.Conn, payload []byte, cfg *config.Config) {
	dec, err := bmp.NewDecoder(bytes.NewReader(payload))
	if err != nil {
		reportFailure(wsConn, err)

		return
	}

	desc := dec.Descriptor()
	if desc.Width <= 0 || int(desc.Width) > cfg.Decode.MaxWidth || desc.Rows() > cfg.Decode.MaxHeight {
		reportFailure(wsConn, fmt.Errorf("image dimensions %dx%d out of bounds", desc.Width, desc.Rows()))

		return
	}

	info := imageInfo{
		Width:       int(desc.Width),
		Height:      desc.Rows(),
		TopDown:     desc.TopDown(),
		BitCount:    int(desc.BitCount),
		Variant:     desc.Variant.String(),
		Compression: bmp.CompressionName(desc.Compression),
	}
	if table := dec.ColorTable(); table != nil {
		info.PaletteSize = table.Len()
	}
	if err = wsConn.WriteJSON(info); err != nil {
		logging.Warn("send image info: %v", err)

		return
	}

	sink := newCanvasSink(wsConn, int(desc.Width), dec.ColorTable())
	result, err := dec.Decode(sink)
	if err != nil {
		reportFailure(wsConn, err)

		return
	}

	status := decodeStatus{
		Done:      true,
		Rows:      desc.Rows(),
		Truncated: result.Truncated,
		RowErrors: len(result.RowErrors),
	}
	if err = wsConn.WriteJSON(status); err != nil {
		logging.Warn("send decode status: %v", err)
	}
}

func reportFailure(wsConn *websocket.Conn, cause error) {
	logging.Warn("decode session: %v", cause)

	if err := wsConn.WriteJSON(decodeStatus{Error: cause.Error()}); err != nil {
		logging.Warn("send decode error: %v", err)
	}
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	normalized := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	normalized = strings.TrimSuffix(normalized, "/")

	// Always allow localhost-style origins for development.
	if strings.HasPrefix(normalized, "localhost") || strings.HasPrefix(normalized, "127.0.0.1") {
		return true
	}

	var allowed []string
	if cfg := config.GetGlobalConfig(); cfg != nil {
		allowed = cfg.Security.AllowedOrigins
	} else if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowed = strings.Split(env, ",")
	}

	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		entry = strings.TrimPrefix(strings.TrimPrefix(entry, "http://"), "https://")
		if entry != "" && strings.TrimSuffix(entry, "/") == normalized {
			return true
		}
	}

	return false
}
