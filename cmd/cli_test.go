// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eqlab/internal/audio"
	"eqlab/internal/equalizer"
	"eqlab/internal/pipeline"
	"eqlab/internal/signalio"
	"eqlab/internal/transport/udp"
	"eqlab/pkg/utils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTone(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	sig := audio.Signal{
		Samples:    utils.GenerateSineWave(11025, 44100, 440, 0.5),
		SampleRate: 44100,
	}
	if err := signalio.Save(path, sig); err != nil {
		t.Fatalf("Save(%s) error: %v", path, err)
	}
	return path
}

func TestBandsCommand(t *testing.T) {
	out, err := run(t, "bands")
	if err != nil {
		t.Fatalf("bands error: %v", err)
	}
	for _, want := range []string{"63 Hz", "1000 Hz", "16000 Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("bands output missing %q:\n%s", want, out)
		}
	}
}

func TestResponseCommandJSON(t *testing.T) {
	out, err := run(t, "response", "--json", "--points", "4411",
		"--gains", "0,0,0,0,6,0,0,0,0")
	if err != nil {
		t.Fatalf("response error: %v", err)
	}

	var resp equalizer.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode response JSON: %v", err)
	}
	if len(resp.Frequencies) != 4411 {
		t.Fatalf("got %d points, want 4411", len(resp.Frequencies))
	}
	if mag, _ := resp.At(1000); math.Abs(mag-6) > 0.01 {
		t.Errorf("magnitude at 1 kHz = %.3f dB, want 6", mag)
	}
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, "tone.wav")
	out := filepath.Join(dir, "out.wav")

	stdout, err := run(t, "process", in, out, "--gains", "0,0,3,0,0,0,0,0,0", "--compress", "--target-db", "-3")
	if err != nil {
		t.Fatalf("process error: %v", err)
	}
	if !strings.Contains(stdout, "Peak out:") {
		t.Errorf("summary missing peak line:\n%s", stdout)
	}

	sig, err := signalio.Load(out, 0)
	if err != nil {
		t.Fatalf("Load(out) error: %v", err)
	}
	if peak := audio.PeakDB(sig.Samples); math.Abs(peak+3) > 0.05 {
		t.Errorf("output peak = %.3f dBFS, want -3", peak)
	}
}

func TestProcessCommandErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, "tone.wav")

	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"Wrong gain count", []string{"process", in, filepath.Join(dir, "a.wav"), "--gains", "1,2,3"}, "gains"},
		{"Non-positive Q", []string{"process", in, filepath.Join(dir, "b.wav"), "--q=-1"}, "q"},
		{"Missing input", []string{"process", filepath.Join(dir, "nope.wav"), filepath.Join(dir, "c.wav")}, "input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			var verr *pipeline.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}

	if _, err := run(t, "process", in); err == nil {
		t.Error("expected argument count error")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeTone(t, dir, "a.wav")
	b := writeTone(t, dir, "b.wav")
	outDir := filepath.Join(dir, "out")

	stdout, err := run(t, "batch", outDir, a, b, "-j", "2")
	if err != nil {
		t.Fatalf("batch error: %v", err)
	}
	for _, name := range []string{"a.wav", "b.wav"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if !strings.Contains(stdout, "2 files") {
		t.Errorf("batch summary missing:\n%s", stdout)
	}
}

func TestBatchOutputPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/music/song.flac", filepath.Join("out", "song.wav")},
		{"take.2.mp3", filepath.Join("out", "take.2.wav")},
		{"noext", filepath.Join("out", "noext.wav")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := batchOutputPath("out", tt.in); got != tt.want {
				t.Errorf("batchOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	in := writeTone(t, t.TempDir(), "tone.wav")

	out, err := run(t, "analyze", in, "--json", "--ws-address", "127.0.0.1:0", "--wait", "0")
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}

	var report pipeline.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", report.SampleRate)
	}
	if len(report.Bands) != 9 {
		t.Errorf("got %d band energies, want 9", len(report.Bands))
	}
	if report.Spectrogram.NumFrames() == 0 {
		t.Error("empty spectrogram")
	}
}

func TestAnalyzeCommandStreamsUDP(t *testing.T) {
	in := writeTone(t, t.TempDir(), "tone.wav")

	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error: %v", err)
	}
	defer listener.Close()

	t.Setenv("ENV_UDP_SEND_INTERVAL", "1ms")
	if _, err := run(t, "analyze", in, "--udp", "--udp-target", listener.LocalAddr().String()); err != nil {
		t.Fatalf("analyze error: %v", err)
	}

	buf := make([]byte, 65536)
	listener.SetReadDeadline(time.Now().Add(time.Second))
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP() error: %v", err)
	}
	p, err := udp.DecodePacket(buf[:n])
	if err != nil {
		t.Fatalf("DecodePacket() error: %v", err)
	}
	if p.Sequence != 1 || len(p.Values) != 2048/2+1 {
		t.Errorf("first packet seq=%d values=%d, want seq 1 with 1025 values", p.Sequence, len(p.Values))
	}
}

func TestUnknownLogLevel(t *testing.T) {
	if _, err := run(t, "bands", "--log-level", "chatty"); err == nil {
		t.Error("expected unknown log level error")
	}
}
