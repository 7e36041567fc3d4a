package telnetlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/uSpike/telnetio"
)

type sink struct{}

func (sink) Send([]byte) {}

func TestAttachLogsReceivedDataAndSends(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := telnetio.NewEngine(telnetio.RoleServer, sink{})
	Attach(e, logger, slog.LevelDebug)

	e.ReceiveData([]byte("hello"))
	e.SendCommand(telnetio.AYT, nil)

	out := buf.String()
	if !strings.Contains(out, "Received data") {
		t.Errorf("expected a received-data log line, got: %s", out)
	}
	if !strings.Contains(out, "Sent bytes") {
		t.Errorf("expected a sent-bytes log line, got: %s", out)
	}
}

func TestAttachLevelNoneDisablesLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelNone}))

	e := telnetio.NewEngine(telnetio.RoleServer, sink{})
	Attach(e, logger, LevelNone)

	e.ReceiveData([]byte("hello"))

	if buf.Len() != 0 {
		t.Errorf("expected no log output, got: %s", buf.String())
	}
}

func TestAttachLogsNegotiationReplies(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := telnetio.NewEngine(telnetio.RoleServer, sink{})
	Attach(e, logger, slog.LevelDebug)

	e.ReceiveData([]byte{telnetio.IAC, telnetio.DO, telnetio.ECHO})

	out := buf.String()
	if !strings.Contains(out, "Received command") {
		t.Errorf("expected a received-command log line, got: %s", out)
	}
	if !strings.Contains(out, "Sent bytes") {
		t.Errorf("expected the WILL reply to be logged as a send, got: %s", out)
	}
}
