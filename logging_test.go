package trirast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger("trirast", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.Infof("loaded %d sets", 2)
	assert.Contains(t, out.String(), "[trirast] INFO: loaded 2 sets")

	l.Warnf("slow")
	l.Errorf("broken")
	assert.Contains(t, errOut.String(), "[trirast] WARN: slow")
	assert.Contains(t, errOut.String(), "[trirast] ERROR: broken")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 3)
	assert.Contains(t, out.String(), "DEBUG: shown 3")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger("", false, &out, &out)
	l.Infof("plain")
	assert.Contains(t, out.String(), " INFO: plain")
	assert.NotContains(t, out.String(), "[")
}

func TestNopLogger(t *testing.T) {
	l := orNop(nil)
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	assert.NotPanics(t, func() { l.Errorf("ignored %v", 1) })
}
