package applog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestInfoWritesToItsLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := infoLog
	infoLog = log.New(&buf, "[info] ", 0)
	defer func() { infoLog = orig }()

	Info("starting %s", "analyzer")

	if got := buf.String(); !strings.Contains(got, "[info]") || !strings.Contains(got, "starting analyzer") {
		t.Errorf("Info output = %q, missing expected prefix/message", got)
	}
}

func TestErrorWritesToItsLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := errorLog
	errorLog = log.New(&buf, "[error] ", 0)
	defer func() { errorLog = orig }()

	Error("fatal: %v", "disk full")

	if got := buf.String(); !strings.Contains(got, "[error]") || !strings.Contains(got, "disk full") {
		t.Errorf("Error output = %q, missing expected prefix/message", got)
	}
}
