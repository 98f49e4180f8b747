package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"

	"github.com/mithrel/medic/internal/present"
	"github.com/mithrel/medic/internal/present/format"
	"github.com/mithrel/medic/pkg/api"
)

const defaultPager = "less -FRSX"

type exchangeStreamWriter interface {
	WriteExchanges([]api.Exchange) error
	Close() error
}

// withPager pipes write's output through $PAGER when out is a terminal.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}

// terminalWidth returns the width of out when it is a terminal, else 0.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func newExchangeStreamWriter(w io.Writer, opts present.Options) exchangeStreamWriter {
	switch opts.Mode {
	case present.ModeJSON:
		return format.NewJSONStreamWriter(w, opts.JSONIndent)
	case present.ModeNDJSON:
		return format.NewNDJSONStreamWriter(w)
	default:
		return format.NewPlainStreamWriter(w, opts.Headers, opts.Now)
	}
}

// streamHistory lists every page of q into sw, stopping on an empty or
// repeated cursor.
func streamHistory(ctx context.Context, store interface {
	List(context.Context, api.ListQuery) ([]api.Exchange, api.Page, error)
}, q api.ListQuery, sw exchangeStreamWriter) error {
	for {
		items, page, err := store.List(ctx, q)
		if err != nil {
			return err
		}
		if err := sw.WriteExchanges(items); err != nil {
			return err
		}
		if len(items) == 0 || page.Next == "" || page.Next == q.Cursor {
			break
		}
		q.Cursor = page.Next
	}
	return sw.Close()
}
