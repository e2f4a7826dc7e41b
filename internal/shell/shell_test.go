package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/unitsctl/internal/rpc"
	"pkt.systems/unitsctl/internal/rpc/rpctest"
)

func seededBackend() *rpctest.Backend {
	return &rpctest.Backend{
		Drivers: []rpc.DriverDetail{{Name: "upi_alice", Version: "0.1.0"}, {Name: "bank_bob", Version: "1.0.0"}},
		Mappings: []rpc.PathMapping{
			{Path: "/acc/alice/upi", DriverName: "upi_alice", DriverVersion: "0.1.0", AccountInfo: `{"name":"Alice","meta":"{\"tier\":1}"}`},
			{Path: "/acc/bob/bank", DriverName: "bank_bob", DriverVersion: "1.0.0", AccountInfo: "plain text"},
		},
	}
}

type session struct {
	sh       *Shell
	out, err *bytes.Buffer
}

func newSession(t *testing.T, b *rpctest.Backend, input string, opts ...Option) session {
	t.Helper()
	client := rpctest.Start(t, b)
	var out, errOut bytes.Buffer
	return session{sh: New(client, strings.NewReader(input), &out, &errOut, opts...), out: &out, err: &errOut}
}

func (s session) exec(t *testing.T, line string) {
	t.Helper()
	require.False(t, s.sh.Exec(context.Background(), line), "unexpected exit on %q", line)
}

func TestNavigation(t *testing.T) {
	s := newSession(t, seededBackend(), "")
	assert.Equal(t, "/", s.sh.Cwd())

	s.exec(t, "cd acc")
	assert.Equal(t, "/acc/", s.sh.Cwd())
	s.exec(t, "ls")
	assert.Equal(t, "alice/upi\tupi_alice@0.1.0\nbob/bank\tbank_bob@1.0.0\n", s.out.String())

	s.out.Reset()
	s.exec(t, "cd alice")
	s.exec(t, "pwd")
	s.exec(t, "ls")
	assert.Equal(t, "/acc/alice/\nupi\tupi_alice@0.1.0\n", s.out.String())

	s.exec(t, "cd ..")
	assert.Equal(t, "/acc/", s.sh.Cwd())
	s.exec(t, "cd /nope")
	assert.Equal(t, "/acc/", s.sh.Cwd())
	assert.Equal(t, "cd: no such file or directory: /nope\n", s.err.String())

	s.exec(t, "cd")
	assert.Equal(t, "/", s.sh.Cwd())
}

func TestStatAndCat(t *testing.T) {
	s := newSession(t, seededBackend(), "")
	s.exec(t, "cd /acc/alice")

	s.exec(t, "stat upi")
	assert.Equal(t, "path: /acc/alice/upi\ndriver: upi_alice\nversion: 0.1.0\n", s.out.String())

	s.out.Reset()
	s.exec(t, "cat upi")
	assert.Equal(t, "{\n  \"name\": \"Alice\",\n  \"meta\": {\n    \"tier\": 1\n  }\n}\n", s.out.String())

	s.out.Reset()
	s.exec(t, "cat /acc/bob/bank")
	assert.Equal(t, "\"plain text\"\n", s.out.String())

	s.exec(t, "stat missing")
	s.exec(t, "cat missing")
	assert.Equal(t,
		"stat: cannot stat 'missing': No such file or directory\ncat: cannot read 'missing': No such file or directory\n",
		s.err.String())
}

func TestDriverCommands(t *testing.T) {
	b := seededBackend()
	files := map[string][]byte{"/tmp/wallet.wasm": []byte("\x00asm")}
	readFile := func(name string) ([]byte, error) {
		if data, ok := files[name]; ok {
			return data, nil
		}
		return nil, errors.New("no such file")
	}
	s := newSession(t, b, "", WithReadFile(readFile))

	s.exec(t, "insdriver wallet 2.0.0 file:///tmp/wallet.wasm")
	s.exec(t, "lsdriver")
	s.exec(t, "rmdriver bank_bob 1.0.0")
	assert.Equal(t, strings.Join([]string{
		"The driver wallet@2.0.0 has been loaded",
		"upi_alice@0.1.0",
		"bank_bob@1.0.0",
		"wallet@2.0.0",
		"The driver bank_bob@1.0.0 has been unloaded",
		"",
	}, "\n"), s.out.String())

	s.exec(t, "insdriver wallet 2.0.0 /tmp/wallet.wasm")
	s.exec(t, "insdriver other 1 file:///missing")
	errs := strings.Split(strings.TrimSpace(s.err.String()), "\n")
	require.Len(t, errs, 2)
	assert.Equal(t, "insdriver: invalid path: /tmp/wallet.wasm", errs[0])
	assert.Contains(t, errs[1], "no such file")
}

func TestLinkReadsAccountInfo(t *testing.T) {
	b := seededBackend()
	s := newSession(t, b, "{\n  \"amount\": 5\n}\n.\n")

	s.exec(t, "link upi_alice 0.1.0 /acc/alice/wallet")
	assert.Equal(t, "The bind action has been completed: upi_alice@0.1.0 -> /acc/alice/wallet\n", s.out.String())

	_, mappings := b.Snapshot()
	require.Len(t, mappings, 3)
	assert.Equal(t, "{\n  \"amount\": 5\n}", mappings[2].AccountInfo)

	s.exec(t, "link nope 1 /acc/alice/x")
	assert.Contains(t, s.err.String(), "link: ")
}

func TestUnknownCommandAndHelp(t *testing.T) {
	s := newSession(t, seededBackend(), "")
	s.exec(t, "frobnicate now")
	assert.Equal(t, "shell: command not found: frobnicate\n", s.err.String())

	s.exec(t, "help")
	assert.True(t, strings.HasPrefix(s.out.String(), "Available commands:\n"))
	s.exec(t, "   ")
}

func TestRunStopsOnExitAndEOF(t *testing.T) {
	s := newSession(t, seededBackend(), "pwd\nexit\npwd\n")
	require.NoError(t, s.sh.Run(context.Background()))
	assert.Equal(t, 1, strings.Count(s.out.String(), "/\n"))
	assert.Contains(t, s.out.String(), "/$ ")

	eof := newSession(t, seededBackend(), "clear\n")
	require.NoError(t, eof.sh.Run(context.Background()))
	assert.Contains(t, eof.out.String(), clearScreen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, newSession(t, seededBackend(), "").sh.Run(ctx), context.Canceled)
}
