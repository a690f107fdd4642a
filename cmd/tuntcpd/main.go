// Command tuntcpd runs the passive-open TCP core over a TUN device. The
// device name and mode are hard-coded per spec §6 — the only flag is the log
// verbosity.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/tuntcp/tuntcp/pkg/tcpcore"
	"github.com/tuntcp/tuntcp/pkg/tun"
)

const (
	nicName = "tun0"
	framed  = false
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	verbose := flag.Bool("v", false, "enable debug-level logging")
	flag.Parse()

	log := newLogger(*verbose)

	dev, err := tun.Open(nicName, framed)
	if err != nil {
		return fmt.Errorf("tuntcpd: open %s: %w", nicName, err)
	}
	defer dev.Close()

	log.Info("listening", "device", nicName, "framed", framed)

	d := tcpcore.NewDemux(dev, log)
	if err := d.Run(); err != nil {
		return fmt.Errorf("tuntcpd: %w", err)
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}
