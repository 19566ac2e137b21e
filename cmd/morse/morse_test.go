package morse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/gigurra/keyer/cmd/morse/config"
	"github.com/gigurra/keyer/cmd/morse/keyer"
	"github.com/spf13/cobra"
)

const ms = time.Millisecond

// isolate keeps the user's config file and KEYER_* variables out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"KEYER_WPM", "KEYER_SIDETONE_HZ", "KEYER_WORD_GAP", "KEYER_VOLUME"} {
		t.Setenv(k, "")
	}
}

type fakeBackend struct {
	clock  *keyer.VirtualClock
	rec    *keyer.Recorder
	closed bool
}

func newFakeBackend() *fakeBackend {
	clock := keyer.NewVirtualClock(time.Unix(0, 0))
	return &fakeBackend{clock: clock, rec: keyer.NewRecorder(clock)}
}

func (f *fakeBackend) open(cfg config.Config, stderr io.Writer) (backend, error) {
	return backend{tone: f.rec, clock: f.clock, close: func() { f.closed = true }}, nil
}

func sendParams(text ...string) *SendParams {
	return &SendParams{Text: text, WPM: 12, Freq: 600, WordGap: "compat", Poll: "1ms", Volume: 0.5}
}

func TestRunSend_Text(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	var stdout, stderr bytes.Buffer

	exit := RunSend(context.Background(), sendParams("sos"), nil, fake.open, strings.NewReader(""), &stdout, &stderr)
	if exit != 0 {
		t.Fatalf("RunSend() = %d, stderr: %s", exit, stderr.String())
	}
	if got, want := stdout.String(), "... --- ... \n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if n := len(fake.rec.Pulses()); n != 9 {
		t.Errorf("pulses = %d, want 9", n)
	}
	if got := fake.clock.Elapsed(); got != 3000*ms {
		t.Errorf("elapsed = %v, want 3s", got)
	}
	if !fake.closed {
		t.Errorf("backend not closed")
	}
}

func TestRunSend_Response(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	params := sendParams()
	params.Response = "ok"
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), params, nil, fake.open, strings.NewReader(""), &stdout, &stderr); exit != 0 {
		t.Fatalf("RunSend() = %d, stderr: %s", exit, stderr.String())
	}
	if got, want := stdout.String(), "/ .-. \n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunSend_UnknownResponse(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	params := sendParams()
	params.Response = "maybe"
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), params, nil, fake.open, strings.NewReader(""), &stdout, &stderr); exit != 1 {
		t.Errorf("RunSend() = %d, want 1", exit)
	}
	if !strings.Contains(stderr.String(), "unknown response") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if len(fake.rec.Events()) != 0 {
		t.Errorf("tone keyed for an unknown response")
	}
}

func TestRunSend_Clipboard(t *testing.T) {
	isolate(t)
	orig := clipboardReadAll
	t.Cleanup(func() { clipboardReadAll = orig })
	clipboardReadAll = func() (string, error) { return "e\r\n\nt", nil }

	fake := newFakeBackend()
	params := sendParams()
	params.Clip = true
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), params, nil, fake.open, strings.NewReader("ignored"), &stdout, &stderr); exit != 0 {
		t.Fatalf("RunSend() = %d, stderr: %s", exit, stderr.String())
	}
	if got, want := stdout.String(), ". \n- \n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunSend_ClipboardError(t *testing.T) {
	isolate(t)
	orig := clipboardReadAll
	t.Cleanup(func() { clipboardReadAll = orig })
	clipboardReadAll = func() (string, error) { return "", errors.New("no clipboard") }

	params := sendParams()
	params.Clip = true
	var stdout, stderr bytes.Buffer
	if exit := RunSend(context.Background(), params, nil, newFakeBackend().open, strings.NewReader(""), &stdout, &stderr); exit != 1 {
		t.Errorf("RunSend() = %d, want 1", exit)
	}
	if !strings.Contains(stderr.String(), "no clipboard") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunSend_Stdin(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), sendParams(), nil, fake.open, strings.NewReader("e\nt\n"), &stdout, &stderr); exit != 0 {
		t.Fatalf("RunSend() = %d, stderr: %s", exit, stderr.String())
	}
	if got, want := stdout.String(), ". \n- \n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunSend_Interrupted(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer

	if exit := RunSend(ctx, sendParams("SOS"), nil, fake.open, strings.NewReader(""), &stdout, &stderr); exit != 130 {
		t.Errorf("RunSend() = %d, want 130", exit)
	}
	if len(fake.rec.Events()) != 0 {
		t.Errorf("tone keyed after cancel")
	}
}

func TestRunSend_BadSpeed(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	params := sendParams("E")
	params.WPM = 100
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), params, nil, fake.open, strings.NewReader(""), &stdout, &stderr); exit != 1 {
		t.Errorf("RunSend() = %d, want 1", exit)
	}
	if !strings.Contains(stderr.String(), "invalid config") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunSend_BackendError(t *testing.T) {
	isolate(t)
	failing := func(config.Config, io.Writer) (backend, error) {
		return backend{}, errors.New("no device")
	}
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), sendParams("E"), nil, failing, strings.NewReader(""), &stdout, &stderr); exit != 1 {
		t.Errorf("RunSend() = %d, want 1", exit)
	}
	if !strings.Contains(stderr.String(), "no device") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunSend_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "keyer.toml")
	if err := os.WriteFile(path, []byte("wpm = 20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fake := newFakeBackend()
	params := sendParams("E")
	params.Config = path
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), params, nil, fake.open, strings.NewReader(""), &stdout, &stderr); exit != 0 {
		t.Fatalf("RunSend() = %d, stderr: %s", exit, stderr.String())
	}
	pulses := fake.rec.Pulses()
	if len(pulses) != 1 || pulses[0].Duration() != 60*ms {
		t.Errorf("pulses = %+v, want one 60ms dit", pulses)
	}
}

func TestResolve_Precedence(t *testing.T) {
	isolate(t)
	t.Setenv("KEYER_WPM", "30")
	k := keying{WPM: 20, Freq: 600, WordGap: "compat", Poll: "1ms", Volume: 0.5}

	cfg, err := k.resolve(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.WPM != 30 {
		t.Errorf("default flag: WPM = %d, want env value 30", cfg.WPM)
	}

	cfg, err = k.resolve(map[string]bool{config.FlagWPM: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.WPM != 20 {
		t.Errorf("explicit flag: WPM = %d, want 20", cfg.WPM)
	}
}

func TestResolve_BadWordGap(t *testing.T) {
	isolate(t)
	k := keying{WPM: 15, Freq: 600, WordGap: "wide", Poll: "1ms", Volume: 0.5}
	if _, err := k.resolve(nil); !errors.Is(err, keyer.ErrUnknownWordGap) {
		t.Errorf("resolve() = %v, want ErrUnknownWordGap", err)
	}
}

func TestResolve_FreqOutOfRange(t *testing.T) {
	isolate(t)
	for _, freq := range []int{-1, 0, 50, 5000, 1<<32 + 600} {
		k := keying{WPM: 15, Freq: freq, WordGap: "compat", Poll: "1ms", Volume: 0.5}
		if _, err := k.resolve(map[string]bool{config.FlagFreq: true}); !errors.Is(err, config.ErrInvalid) {
			t.Errorf("resolve(freq=%d) = %v, want ErrInvalid", freq, err)
		}
	}
}

func TestRunSend_FreqWraparound(t *testing.T) {
	isolate(t)
	fake := newFakeBackend()
	params := sendParams("E")
	params.Freq = 1<<32 + 600
	var stdout, stderr bytes.Buffer

	if exit := RunSend(context.Background(), params, map[string]bool{config.FlagFreq: true}, fake.open, strings.NewReader(""), &stdout, &stderr); exit != 1 {
		t.Errorf("RunSend() = %d, want 1", exit)
	}
	if len(fake.rec.Events()) != 0 {
		t.Errorf("tone keyed with an out of range frequency")
	}
}

func TestChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Int("wpm", 15, "")
	cmd.Flags().Int("freq", 600, "")
	if err := cmd.ParseFlags([]string{"--wpm", "20"}); err != nil {
		t.Fatal(err)
	}
	changed := changedFlags(cmd)
	if !changed["wpm"] || changed["freq"] {
		t.Errorf("changed = %v", changed)
	}
}

func TestVerbosity(t *testing.T) {
	if verbosity(false, false) != 0 || verbosity(true, false) != 1 || verbosity(false, true) != 2 || verbosity(true, true) != 2 {
		t.Errorf("verbosity levels off")
	}
}

func TestRunLines(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		convert func(string) string
		want    string
	}{
		{"encode args", []string{"sos", "k"}, "", code.Encode, "... --- ... / -.-\n"},
		{"decode args", []string{"...", "---", "..."}, "", code.Decode, "SOS\n"},
		{"encode stdin", nil, "e\nt\n", code.Encode, ".\n-\n"},
		{"decode stdin", nil, "-.- / .-.\n", code.Decode, "K R\n"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		if exit := RunLines(tt.args, tt.convert, strings.NewReader(tt.stdin), &stdout, &stderr); exit != 0 {
			t.Errorf("%s: RunLines() = %d", tt.name, exit)
		}
		if stdout.String() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, stdout.String(), tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	RenderTable(&out, "", false)
	s := out.String()
	for _, want := range []string{"PATTERN", "11111100", "(pause)", "* (AR)", "# (error)", "00000000"} {
		if !strings.Contains(s, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestRenderTable_Filter(t *testing.T) {
	var out bytes.Buffer
	RenderTable(&out, "e", false)
	s := out.String()
	if !strings.Contains(s, "11111100") {
		t.Errorf("filtered table missing E:\n%s", s)
	}
	if strings.Contains(s, "11111101") {
		t.Errorf("filtered table contains T:\n%s", s)
	}
}

func TestBinaryField_Unstyled(t *testing.T) {
	for _, e := range code.Entries() {
		if got := binaryField(e.Pattern, false); got != e.Pattern.Binary() {
			t.Errorf("binaryField(%q) = %q, want %q", e.Char, got, e.Pattern.Binary())
		}
	}
	if got := binaryField(code.SpacePattern, true); got != "11101111" {
		t.Errorf("styled space = %q, want plain bits", got)
	}
}

func timelineConfig() config.Config {
	cfg := config.Default()
	cfg.WPM = 12
	return cfg
}

func TestSimulate_Word(t *testing.T) {
	segments, total, err := Simulate("E E", timelineConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []Segment{
		{Char: 'E', On: true, Start: 0, End: 100 * ms},
		{Char: 'E', On: false, Start: 100 * ms, End: 400 * ms},
		{Char: ' ', On: false, Start: 400 * ms, End: 1000 * ms},
		{Char: 'E', On: true, Start: 1000 * ms, End: 1100 * ms},
		{Char: 'E', On: false, Start: 1100 * ms, End: 1400 * ms},
	}
	if len(segments) != len(want) {
		t.Fatalf("segments = %+v", segments)
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segments[i], want[i])
		}
	}
	if total != 1400*ms {
		t.Errorf("total = %v, want 1.4s", total)
	}
}

func TestSimulate_MatchesMessageDuration(t *testing.T) {
	cfg := timelineConfig()
	timing, _ := cfg.Timing()
	for _, text := range []string{"SOS", "CQ CQ", " * K", "0#"} {
		segments, total, err := Simulate(text, cfg)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if want := keyer.MessageDuration(text, timing); total != want {
			t.Errorf("%q: total = %v, want %v", text, total, want)
		}
		var sum time.Duration
		for _, s := range segments {
			sum += s.Duration()
		}
		if sum != total {
			t.Errorf("%q: segments cover %v of %v", text, sum, total)
		}
	}
}

func TestRunTimeline(t *testing.T) {
	isolate(t)
	params := &TimelineParams{Text: []string{"e"}, WPM: 12, Freq: 600, WordGap: "compat"}
	var stdout, stderr bytes.Buffer

	if exit := RunTimeline(params, nil, &stdout, &stderr); exit != 0 {
		t.Fatalf("RunTimeline() = %d, stderr: %s", exit, stderr.String())
	}
	s := stdout.String()
	for _, want := range []string{"TONE", "on", "off", "400"} {
		if !strings.Contains(strings.ToUpper(s), strings.ToUpper(want)) {
			t.Errorf("timeline missing %q:\n%s", want, s)
		}
	}
}

func TestRunConfig_Write(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "keyer", "config.toml")
	params := &ConfigParams{WPM: 25, Freq: 700, WordGap: "canonical", Poll: "1ms", Volume: 0.3, Config: path, Write: true}
	var stdout, stderr bytes.Buffer

	if exit := RunConfig(params, nil, &stdout, &stderr); exit != 0 {
		t.Fatalf("RunConfig() = %d, stderr: %s", exit, stderr.String())
	}
	if !strings.Contains(stdout.String(), "wpm = 25") {
		t.Errorf("stdout = %q", stdout.String())
	}

	fc, found, err := config.LoadFile(path)
	if err != nil || !found {
		t.Fatalf("LoadFile() = %v, found %v", err, found)
	}
	if fc.WPM != 25 || fc.SidetoneHz != 700 || fc.WordGap != "canonical" {
		t.Errorf("saved = %+v", fc)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveModel_QueuesTypedKeys(t *testing.T) {
	queue := make(chan rune, 8)
	var m tea.Model = newLiveModel(config.Default(), queue)

	m, _ = m.Update(runes("cq"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m, _ = m.Update(runes("@"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	close(queue)

	var got []rune
	for c := range queue {
		got = append(got, c)
	}
	if string(got) != "CQ  " {
		t.Errorf("queued %q, want %q", string(got), "CQ  ")
	}
	if lm := m.(liveModel); string(lm.typed) != "CQ  " || lm.sent != 0 {
		t.Errorf("model = %+v", lm)
	}
}

func TestLiveModel_Sent(t *testing.T) {
	queue := make(chan rune, 8)
	var m tea.Model = newLiveModel(config.Default(), queue)
	m, _ = m.Update(runes("K"))
	m, _ = m.Update(sentMsg{c: 'K'})
	m, _ = m.Update(sentMsg{c: 'K'})
	if lm := m.(liveModel); lm.sent != 1 {
		t.Errorf("sent = %d, want 1", lm.sent)
	}
	if !strings.Contains(m.View(), "K") {
		t.Errorf("view missing sent text:\n%s", m.View())
	}
}

func TestLiveModel_DropsWhenFull(t *testing.T) {
	queue := make(chan rune, 1)
	var m tea.Model = newLiveModel(config.Default(), queue)
	m, _ = m.Update(runes("EE"))
	if lm := m.(liveModel); string(lm.typed) != "E" {
		t.Errorf("typed = %q, want only what fit", string(lm.typed))
	}
}

func TestLiveModel_Quit(t *testing.T) {
	m := newLiveModel(config.Default(), make(chan rune, 1))
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("%v: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: command is not quit", k)
		}
	}
}

func TestLiveModel_ViewShowsNext(t *testing.T) {
	m := newLiveModel(config.Default(), make(chan rune, 4))
	m = m.enqueue('S')
	if v := m.View(); !strings.Contains(v, "...") || !strings.Contains(v, "15 wpm") {
		t.Errorf("view = %s", v)
	}
}
