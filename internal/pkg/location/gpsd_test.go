package location

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGPSD accepts one connection, waits for WATCH, then writes lines.
func fakeGPSD(t *testing.T, lines []string, hold bool) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		conn.Write([]byte(`{"class":"VERSION","release":"3.25","proto_major":3,"proto_minor":15}` + "\n"))
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		for _, l := range lines {
			conn.Write([]byte(l + "\n"))
		}
		if hold {
			time.Sleep(2 * time.Second)
		}
	}()

	return ln.Addr().String()
}

func TestGPSDSource_FirstUsableFix(t *testing.T) {
	addr := fakeGPSD(t, []string{
		`{"class":"DEVICES","devices":[]}`,
		`{"class":"WATCH","enable":true,"json":true}`,
		`{"class":"TPV","mode":1}`,
		`not json`,
		`{"class":"TPV","mode":3,"time":"2026-03-02T09:00:00.000Z","lat":40.7128,"lon":-74.006,"eph":4.5}`,
	}, false)

	fix, err := NewGPSDSource(addr).Fix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40.7128, fix.Latitude)
	assert.Equal(t, -74.006, fix.Longitude)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), fix.SampledAt)
	require.NotNil(t, fix.AccuracyMeters)
	assert.Equal(t, 4.5, *fix.AccuracyMeters)
	assert.Equal(t, "gpsd", fix.Source)
}

func TestGPSDSource_AccuracyFromEpxEpy(t *testing.T) {
	addr := fakeGPSD(t, []string{
		`{"class":"TPV","mode":2,"lat":1.5,"lon":2.5,"epx":3,"epy":7}`,
	}, false)

	fix, err := NewGPSDSource(addr).Fix(context.Background())
	require.NoError(t, err)
	require.NotNil(t, fix.AccuracyMeters)
	assert.Equal(t, 7.0, *fix.AccuracyMeters)
}

func TestGPSDSource_ClosedWithoutFix(t *testing.T) {
	addr := fakeGPSD(t, []string{`{"class":"TPV","mode":1}`}, false)

	_, err := NewGPSDSource(addr).Fix(context.Background())
	assert.Error(t, err)
}

func TestGPSDSource_ContextTimeout(t *testing.T) {
	addr := fakeGPSD(t, []string{`{"class":"TPV","mode":1}`}, true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewGPSDSource(addr).Fix(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGPSDSource_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewGPSDSource(addr).Fix(context.Background())
	assert.Error(t, err)
}
