package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"golang.org/x/tools/txtar"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"aheui": func() int { return dispatch(os.Args[1:]) },
	}))
}

// scenarios are expressed as in-memory txtar archives (program source,
// stdin, and the testscript commands that drive the CLI binary against
// them) and materialized into a scratch directory per test, rather than
// checked in as a separate testdata tree.
var scenarios = map[string]string{
	"echo": `
stdin input.txt
exec aheui run program.aheui
stdout '^A$'

-- program.aheui --
밯맣희
-- input.txt --
A
`,
	"readint": `
stdin input.txt
exec aheui run program.aheui
stdout '^42$'

-- program.aheui --
방망희
-- input.txt --
42
`,
	"arithmetic-parity": `
exec aheui run program.aheui
stdout '^11$'
cp stdout traced.out
exec aheui run -no-trace program.aheui
stdout '^11$'
cp stdout interpreted.out
cmp traced.out interpreted.out

-- program.aheui --
밙밦다망희
`,
}

func writeScenarios(t *testing.T, dir string) {
	t.Helper()
	for name, src := range scenarios {
		archive := txtar.Parse([]byte(src))
		path := filepath.Join(dir, name+".txtar")
		if err := os.WriteFile(path, txtar.Format(archive), 0o644); err != nil {
			t.Fatalf("writing scenario %s: %v", name, err)
		}
	}
}

func TestCLIEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeScenarios(t, dir)
	testscript.Run(t, testscript.Params{Dir: dir})
}
