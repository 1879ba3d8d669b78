package cli

import (
	"fmt"
	"io"

	"github.com/bnema/sitectl/internal/adapters/in/cli/ui/styles"
)

var cliWriteLine = func(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

func cliRenderMuted(msg string) string {
	return styles.Theme.Muted.Render(msg)
}

func cliRenderMeta(label, value string) string {
	return styles.Theme.Bold.Render(label) + " " + styles.Theme.Muted.Render(value)
}

func cliRenderSuccess(msg string) string {
	return styles.RenderSuccess(msg)
}

func cliRenderWarning(msg string) string {
	return styles.RenderWarning(msg)
}

func cliRenderInfo(msg string) string {
	return styles.RenderInfo(msg)
}

// forwardOutput copies an external command's streams to the command's writers.
func forwardOutput(stdout, stderr io.Writer, out, errOut []byte) {
	if len(out) > 0 {
		_, _ = stdout.Write(out)
	}
	if len(errOut) > 0 {
		_, _ = stderr.Write(errOut)
	}
}
