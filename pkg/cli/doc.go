/*
Package cli provides terminal helpers for the talos-tui command.

Status output:

A Printer renders a state snapshot either as colored text or as JSON.
Colors are used only when the output is a terminal:

	printer := cli.NewPrinter(os.Stdout, cli.FormatText)
	view := cli.NewStatusView(string(coord.State()), store.Snapshot(time.Now(), 5*time.Second), cli.DefaultRecentEvents)
	screen.Draw(printer.RenderStatus(view))

A Screen redraws frames in place on a terminal and drops repeated frames
elsewhere, so piping the output to a file produces a change log.

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

Errors:

ConfigError and CommandError carry the process exit code through ExitCode.
*/
package cli
